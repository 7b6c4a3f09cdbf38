package transport

import (
	"context"
	"net/http"
	"time"

	"smart-store/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger checks that the catalog table answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports database pool health
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// KeepAliveResponse reports the outcome of a keepalive ping
type KeepAliveResponse struct {
	Status    string `json:"status"`
	CheckedAt string `json:"checked_at"`
	Error     string `json:"error,omitempty"`
}

// HealthHandler serves liveness and keepalive probes
type HealthHandler struct {
	db      HealthChecker
	catalog Pinger
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. db may be nil.
func NewHealthHandler(db HealthChecker, catalog Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers the probe routes
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/keepalive", h.KeepAlive)
}

// Health reports process and database status
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{"status": "ok"}
	if h.db != nil {
		db := h.db.Health(r.Context())
		body["database"] = db
		if db["status"] == "down" {
			body["status"] = "degraded"
			middleware.RespondWithJSON(w, http.StatusServiceUnavailable, body)
			return
		}
	}
	middleware.RespondWithJSON(w, http.StatusOK, body)
}

// KeepAlive touches the products table so an idle hosted database is not
// paused. An external scheduler calls it periodically.
func (h *HealthHandler) KeepAlive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := KeepAliveResponse{CheckedAt: time.Now().UTC().Format(time.RFC3339)}

	if err := h.catalog.Ping(ctx); err != nil {
		h.logger.Error("Keepalive ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Error = err.Error()
		middleware.RespondWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	h.logger.Debug("Keepalive ping succeeded")
	resp.Status = "ok"
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}
