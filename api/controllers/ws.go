package controllers

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/mateovidal/routewave-backend/api/responses"
	"github.com/mateovidal/routewave-backend/internal/realtime"
	pkgAuth "github.com/mateovidal/routewave-backend/pkg/auth"
	"github.com/mateovidal/routewave-backend/pkg/auth/session"
	"github.com/mateovidal/routewave-backend/pkg/config"
	pkgerrors "github.com/mateovidal/routewave-backend/pkg/errors"
	"github.com/mateovidal/routewave-backend/pkg/logger"
	"github.com/mateovidal/routewave-backend/pkg/metrics"
)

// Websocket upgrades the connection and hands it to the realtime hub.
// Browsers cannot set headers on websocket dials, so the access token rides
// in the `token` query parameter with the Authorization header as fallback.
func Websocket(
	cfg *config.Config,
	verifier session.AccessSessionChecker,
	hub *realtime.Hub,
	sink realtime.LocationSink,
	logg *logger.Logger,
	m *metrics.RealtimeMetrics,
) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.CORS.AllowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.URL.Query().Get("token"))
		if token == "" {
			token = bearerToken(r)
		}
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		claims, err := pkgAuth.ParseAccessToken(cfg.JWT, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}

		if verifier != nil {
			ok, err := verifier.HasSession(r.Context(), claims.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
				return
			}
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
				return
			}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "realtime.upgrade.failed")
			}
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{
				"user_id":    claims.UserID.String(),
				"actor_role": string(claims.Role),
			})
			logg.Info(ctx, "realtime.connection.opened")
		}

		client := realtime.NewClient(hub, conn, sink, cfg.Realtime, logg, m, claims.UserID, claims.Role)
		client.Run(ctx)

		if logg != nil {
			logg.Info(ctx, "realtime.connection.closed")
		}
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, candidate := range allowed {
			if candidate == "*" || strings.EqualFold(candidate, origin) {
				return true
			}
		}
		return false
	}
}
