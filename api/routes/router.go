package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mateovidal/routewave-backend/api/controllers"
	"github.com/mateovidal/routewave-backend/api/middleware"
	"github.com/mateovidal/routewave-backend/internal/auth"
	"github.com/mateovidal/routewave-backend/internal/orders"
	"github.com/mateovidal/routewave-backend/internal/realtime"
	"github.com/mateovidal/routewave-backend/internal/tracking"
	"github.com/mateovidal/routewave-backend/pkg/auth/session"
	"github.com/mateovidal/routewave-backend/pkg/config"
	"github.com/mateovidal/routewave-backend/pkg/db"
	"github.com/mateovidal/routewave-backend/pkg/enums"
	"github.com/mateovidal/routewave-backend/pkg/logger"
	"github.com/mateovidal/routewave-backend/pkg/metrics"
	"github.com/mateovidal/routewave-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              *db.Client
	Redis           *redis.Client
	Sessions        *session.Manager
	AuthService     auth.Service
	OrdersService   orders.Service
	TrackingService tracking.Service
	Hub             *realtime.Hub
	RealtimeMetrics *metrics.RealtimeMetrics
	PromRegistry    *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.With(middleware.RequireRole(string(enums.ActorRoleVendor), logg)).
				Post("/", controllers.CreateOrder(deps.OrdersService, logg))

			r.With(middleware.RequireRole(string(enums.ActorRoleVendor), logg)).
				Get("/vendor", controllers.ListOrders(deps.OrdersService, logg))
			r.With(middleware.RequireRole(string(enums.ActorRoleDelivery), logg)).
				Get("/delivery", controllers.ListOrders(deps.OrdersService, logg))
			r.With(middleware.RequireRole(string(enums.ActorRoleCustomer), logg)).
				Get("/customer", controllers.ListOrders(deps.OrdersService, logg))

			r.Get("/{orderId}", controllers.GetOrder(deps.OrdersService, logg))
			r.With(middleware.RequireRole(string(enums.ActorRoleVendor), logg)).
				Put("/{orderId}/assign", controllers.AssignOrder(deps.OrdersService, logg))
			r.Put("/{orderId}/status", controllers.UpdateOrderStatus(deps.OrdersService, logg))
		})

		r.Route("/api/v1/tracking/{orderId}", func(r chi.Router) {
			r.With(middleware.RequireRole(string(enums.ActorRoleDelivery), logg)).
				Post("/", controllers.ReportLocation(deps.TrackingService, logg))
			r.Get("/latest", controllers.LatestLocation(deps.TrackingService, logg))
			r.Get("/history", controllers.LocationHistory(deps.TrackingService, logg))
		})
	})

	r.Get("/ws", controllers.Websocket(cfg, deps.Sessions, deps.Hub, deps.TrackingService, logg, deps.RealtimeMetrics))

	return r
}
