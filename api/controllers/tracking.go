package controllers

import (
	"net/http"
	"time"

	"github.com/mateovidal/routewave-backend/api/responses"
	"github.com/mateovidal/routewave-backend/api/validators"
	"github.com/mateovidal/routewave-backend/internal/tracking"
	"github.com/mateovidal/routewave-backend/pkg/logger"
)

type reportLocationRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
	// Milliseconds since epoch; zero means the server stamps receipt time.
	Timestamp int64 `json:"timestamp" validate:"omitempty,min=0"`
}

// ReportLocation ingests a courier position over REST. The websocket stream
// feeds the same service path.
func ReportLocation(svc tracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reportLocationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var at time.Time
		if body.Timestamp > 0 {
			at = time.UnixMilli(body.Timestamp).UTC()
		}

		sample, err := svc.Report(r.Context(), orderID, partnerID, body.Lat, body.Lng, at)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, NewLocationView(sample))
	}
}

// LatestLocation returns the most recent position reported for the order.
func LatestLocation(svc tracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sample, err := svc.Latest(r.Context(), orderID, actorID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, NewLocationView(sample))
	}
}

// LocationHistory returns the order's full position trail, oldest first.
func LocationHistory(svc tracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		samples, err := svc.History(r.Context(), orderID, actorID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, NewLocationViews(samples))
	}
}
