package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mateovidal/routewave-backend/api/routes"
	internalauth "github.com/mateovidal/routewave-backend/internal/auth"
	"github.com/mateovidal/routewave-backend/internal/orders"
	"github.com/mateovidal/routewave-backend/internal/realtime"
	"github.com/mateovidal/routewave-backend/internal/tracking"
	"github.com/mateovidal/routewave-backend/internal/users"
	"github.com/mateovidal/routewave-backend/pkg/auth/session"
	"github.com/mateovidal/routewave-backend/pkg/clock"
	"github.com/mateovidal/routewave-backend/pkg/config"
	"github.com/mateovidal/routewave-backend/pkg/db"
	"github.com/mateovidal/routewave-backend/pkg/logger"
	"github.com/mateovidal/routewave-backend/pkg/metrics"
	"github.com/mateovidal/routewave-backend/pkg/migrate"
	"github.com/mateovidal/routewave-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	realtimeMetrics := metrics.NewRealtimeMetrics(registry)

	hub := realtime.NewHub(logg, realtimeMetrics)
	clk := clock.System()

	usersRepo := users.NewRepository(dbClient.DB())

	authService, err := internalauth.NewService(usersRepo, sessionManager, cfg.JWT, cfg.Password, clk)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	numberGen := orders.NewNumberGenerator(redisClient, clk)
	ordersService, err := orders.NewService(ordersRepo, usersRepo, dbClient, hub, clk, numberGen)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	trackingRepo := tracking.NewRepository(dbClient.DB())
	trackingService, err := tracking.NewService(trackingRepo, ordersRepo, hub, clk)
	if err != nil {
		logg.Error(context.Background(), "failed to create tracking service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Sessions:        sessionManager,
			AuthService:     authService,
			OrdersService:   ordersService,
			TrackingService: trackingService,
			Hub:             hub,
			RealtimeMetrics: realtimeMetrics,
			PromRegistry:    registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
