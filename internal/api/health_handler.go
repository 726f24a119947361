package api

import (
	"net/http"
	"time"

	"cityevents/pkg/factory"
	"cityevents/pkg/logger"
)

const version = "1.0.0"

type HealthHandler struct {
	factory factory.Factory
	logger  logger.Logger
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services"`
	Version   string                 `json:"version"`
}

func NewHealthHandler(factory factory.Factory, logger logger.Logger) *HealthHandler {
	return &HealthHandler{
		factory: factory,
		logger:  logger,
	}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	services := map[string]interface{}{
		"storage": map[string]interface{}{
			"status":  "healthy",
			"backend": h.factory.GetSnapshotter().Backend(),
		},
		"users": map[string]interface{}{
			"status": "healthy",
			"count":  h.factory.GetUserService().Count(),
		},
		"events": map[string]interface{}{
			"status": "healthy",
			"count":  h.factory.GetEventService().Count(),
		},
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  services,
		Version:   version,
	})
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
}
