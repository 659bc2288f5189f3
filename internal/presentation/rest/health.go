package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// HealthHandler serves liveness and readiness probes over HTTP.
type HealthHandler struct {
	dbCheck func(ctx context.Context) error
}

// NewHealthHandler creates a health check handler. dbCheck may be nil.
func NewHealthHandler(dbCheck func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{dbCheck: dbCheck}
}

// RegisterRoutes attaches health-check routes to the router.
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/healthz", h.liveness).Methods(http.MethodGet)
	router.HandleFunc("/readyz", h.readiness).Methods(http.MethodGet)
}

func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "agriloan",
	})
}

func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.dbCheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.dbCheck(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"service": "agriloan",
	})
}
