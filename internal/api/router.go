package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cityevents/internal/api/middleware"
	"cityevents/pkg/factory"
)

// NewRouter registers every handler and wraps the mux with request id and
// metrics middleware.
func NewRouter(f factory.Factory) http.Handler {
	log := f.GetLogger()
	users := f.GetUserService()
	events := f.GetEventService()

	mux := http.NewServeMux()

	NewUserHandler(users, events, log).RegisterRoutes(mux)
	NewEventHandler(events, users, log, f.GetClock()).RegisterRoutes(mux)
	NewHealthHandler(f, log).RegisterRoutes(mux)

	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.RequestIDMiddleware(middleware.MetricsMiddleware(mux))
}
