package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moralknight/outreach-server/internal/models"
)

// maxDeliveryEvents bounds the in-memory delivery log. There is no durable
// store by design; the log exists so operators can see partial delivery
// failures that are deliberately hidden from submitters.
const maxDeliveryEvents = 512

// DeliveryLogService keeps a bounded, PII-free record of submission
// outcomes for the staff endpoints.
type DeliveryLogService struct {
	mu     sync.RWMutex
	events []models.DeliveryEvent
	logger *zap.SugaredLogger
}

// NewDeliveryLogService creates a new delivery log service
func NewDeliveryLogService(logger *zap.SugaredLogger) *DeliveryLogService {
	return &DeliveryLogService{
		events: make([]models.DeliveryEvent, 0, 64),
		logger: logger,
	}
}

// Record appends a delivery event, evicting the oldest entries past the cap.
func (s *DeliveryLogService) Record(event models.DeliveryEvent) {
	event.ID = uuid.New()
	event.CreatedAt = time.Now()

	s.mu.Lock()
	s.events = append(s.events, event)
	if len(s.events) > maxDeliveryEvents {
		s.events = s.events[len(s.events)-maxDeliveryEvents:]
	}
	s.mu.Unlock()

	s.logger.Infow("Delivery recorded",
		"report_id", event.ReportID,
		"form_type", event.FormType,
		"admin_delivered", event.AdminDelivered,
		"confirmation_delivered", event.ConfirmDelivered,
		"confirmation_skipped", event.ConfirmSkipped,
	)
}

// FetchRecent returns the most recent delivery events, newest first.
func (s *DeliveryLogService) FetchRecent(limit int) []models.DeliveryEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]models.DeliveryEvent, 0, limit)
	for i := len(s.events) - 1; i >= len(s.events)-limit; i-- {
		out = append(out, s.events[i])
	}
	return out
}
