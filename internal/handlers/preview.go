package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/moralknight/outreach-server/internal/models"
	"github.com/moralknight/outreach-server/internal/services"
	"github.com/moralknight/outreach-server/internal/templates"
)

// PreviewHandler renders the email templates with sample data so staff can
// check copy and layout without sending real mail.
type PreviewHandler struct {
	logger *zap.SugaredLogger
}

// NewPreviewHandler creates a new preview handler
func NewPreviewHandler(logger *zap.SugaredLogger) *PreviewHandler {
	return &PreviewHandler{logger: logger}
}

// Render handles GET /api/v1/preview?formType=contact|report&audience=admin|submitter
func (h *PreviewHandler) Render(w http.ResponseWriter, r *http.Request) {
	formType := models.FormType(r.URL.Query().Get("formType"))
	if formType == "" {
		formType = models.FormContact
	}
	if !formType.Valid() {
		respondError(w, http.StatusBadRequest, "unknown formType", "INVALID_FORM_TYPE")
		return
	}
	forSubmitter := r.URL.Query().Get("audience") == "submitter"

	sample := &models.SubmissionPayload{
		FormType:       formType,
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		Organisation:   "Gemeente Voorbeeld",
		Newsletter:     true,
		PrivacyConsent: true,
	}
	if formType == models.FormReport {
		sample.AISystem = "Fraudedetectie-algoritme"
		sample.Description = "Voorbeeldomschrijving van een misstand.\nTweede regel."
	} else {
		sample.Message = "Dit is een voorbeeldbericht via het contactformulier."
	}

	html, err := templates.Render(sample, forSubmitter, "MK-2026-TEST", services.DateLabel(time.Now()))
	if err != nil {
		h.logger.Errorw("Failed to render preview", "error", err)
		respondError(w, http.StatusInternalServerError, "render failed", "INTERNAL_ERROR")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}
