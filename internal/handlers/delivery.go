package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/moralknight/outreach-server/internal/services"
)

// DeliveryHandler exposes the in-memory delivery log to staff. Partial
// delivery failures are invisible to submitters by design, so this is the
// one place operators can see them besides the logs.
type DeliveryHandler struct {
	svc    *services.DeliveryLogService
	logger *zap.SugaredLogger
}

// NewDeliveryHandler creates a new delivery log handler
func NewDeliveryHandler(svc *services.DeliveryLogService, logger *zap.SugaredLogger) *DeliveryHandler {
	return &DeliveryHandler{svc: svc, logger: logger}
}

// Recent handles GET /api/v1/delivery/recent?limit=N
func (h *DeliveryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	respondJSON(w, http.StatusOK, h.svc.FetchRecent(limit))
}
