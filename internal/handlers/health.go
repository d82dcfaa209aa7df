package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/moralknight/outreach-server/internal/mailer"
	"github.com/moralknight/outreach-server/internal/models"
)

var startTime = time.Now()

// HealthHandler provides health check endpoints
type HealthHandler struct {
	mailer *mailer.SMTPMailer
	logger *zap.SugaredLogger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(m *mailer.SMTPMailer, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{mailer: m, logger: logger}
}

// Check handles GET /api/v1/health (liveness probe)
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:  "ok",
		Version: "1.2.0",
		Uptime:  time.Since(startTime).String(),
	})
}

// Ready handles GET /api/v1/health/ready (readiness probe). The server is
// not ready when the mail transport lacks credentials: it could accept
// submissions but never deliver them.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.mailer.Configured() {
		respondJSON(w, http.StatusServiceUnavailable, models.HealthStatus{
			Status:  "not ready",
			Version: "1.2.0",
			Mailer:  "not configured",
		})
		return
	}

	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:  "ready",
		Version: "1.2.0",
		Uptime:  time.Since(startTime).String(),
		Mailer:  "configured",
	})
}
