// Package handlers contains HTTP request handlers for the outreach API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moralknight/outreach-server/internal/forms"
	"github.com/moralknight/outreach-server/internal/mailer"
	"github.com/moralknight/outreach-server/internal/models"
	"github.com/moralknight/outreach-server/internal/services"
)

// User-facing copy. The site is Dutch.
const (
	msgThanks        = "Bedankt voor uw bericht!"
	msgInvalidBody   = "Ongeldige aanvraag"
	msgMissingFields = "Ontbrekende verplichte velden"
	msgInvalidEmail  = "Ongeldig e-mailadres"
	msgFileTooLarge  = "Bestand is te groot (maximaal 3 MB)"
	msgFileFailed    = "Het bijgevoegde bestand kon niet worden verwerkt"
	msgSendFailed    = "E-mail verzenden mislukt. Probeer het later opnieuw."
	msgInternalError = "Er is een interne serverfout opgetreden."
)

// ContactHandler handles form submission endpoints
type ContactHandler struct {
	notifier *services.Notifier
	logger   *zap.SugaredLogger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(notifier *services.Notifier, logger *zap.SugaredLogger) *ContactHandler {
	return &ContactHandler{notifier: notifier, logger: logger}
}

// submissionRequest is the JSON wire shape. Besides the nested attachment
// object, the browser may send the file as top-level base64 fields.
type submissionRequest struct {
	models.SubmissionPayload
	File     string `json:"file,omitempty"`
	FileName string `json:"fileName,omitempty"`
	FileType string `json:"fileType,omitempty"`
}

// Submit handles POST /api/v1/contact for both form variants.
// One request maps to exactly one notification attempt; there is no queue.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	submissionID := uuid.New()
	r.Body = http.MaxBytesReader(w, r.Body, forms.MaxRequestSize)

	payload, loadAttachment, err := h.parse(r)
	if err != nil {
		h.logger.Warnw("Rejected unparseable submission", "submission_id", submissionID, "error", err)
		respondError(w, http.StatusBadRequest, msgInvalidBody, "INVALID_BODY")
		return
	}

	forms.Sanitize(payload)

	// Honeypot: answer spam with a plain success so automated senders get
	// no signal of detection. This check comes before any other rejection;
	// the attachment is not decoded and no email is sent.
	if forms.IsSpam(payload) {
		h.logger.Warnw("Honeypot triggered, silent rejection", "submission_id", submissionID)
		respondJSON(w, http.StatusOK, models.APIResponse{Success: true, Message: msgThanks})
		return
	}

	if !payload.FormType.Valid() {
		respondError(w, http.StatusBadRequest, msgInvalidBody, "INVALID_FORM_TYPE")
		return
	}

	att, err := loadAttachment()
	if err != nil {
		h.logger.Warnw("Rejected submission attachment", "submission_id", submissionID, "error", err)
		if errors.Is(err, forms.ErrAttachmentTooLarge) {
			respondError(w, http.StatusBadRequest, msgFileTooLarge, "FILE_TOO_LARGE")
			return
		}
		respondError(w, http.StatusBadRequest, msgFileFailed, "FILE_UNREADABLE")
		return
	}
	payload.Attachment = att

	// Server-side re-validation; client validation is never trusted.
	if verrs := forms.Validate(payload); len(verrs) > 0 {
		h.logger.Warnw("Submission failed validation",
			"submission_id", submissionID,
			"form_type", payload.FormType,
			"fields", fieldNames(verrs),
		)
		// A malformed address wins over other field errors, matching how
		// the site reports it.
		if verrs["email"] != "" && payload.Email != "" {
			respondError(w, http.StatusBadRequest, msgInvalidEmail, "INVALID_EMAIL")
			return
		}
		respondError(w, http.StatusBadRequest, msgMissingFields, "MISSING_FIELDS")
		return
	}

	record, err := h.notifier.Dispatch(r.Context(), payload)
	if err != nil {
		// No raw transport detail crosses the API boundary.
		if errors.Is(err, mailer.ErrNotConfigured) {
			h.logger.Errorw("Mail transport not configured", "submission_id", submissionID)
			respondError(w, http.StatusInternalServerError, msgInternalError, "INTERNAL_ERROR")
			return
		}
		h.logger.Errorw("Failed to dispatch submission",
			"submission_id", submissionID,
			"form_type", payload.FormType,
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, msgSendFailed, "SEND_FAILED")
		return
	}

	h.logger.Infow("Submission accepted",
		"submission_id", submissionID,
		"form_type", payload.FormType,
		"report_id", record.ReportID,
	)
	respondJSON(w, http.StatusOK, models.APIResponse{
		Success:  true,
		Message:  msgThanks,
		ReportID: record.ReportID,
	})
}

// attachmentLoader defers attachment decoding until after the honeypot
// check, so spam requests never have their file read.
type attachmentLoader func() (*models.Attachment, error)

// parse reads the request body as either multipart/form-data or JSON. Only
// the scalar fields are read here; the returned loader yields the attachment.
func (h *ContactHandler) parse(r *http.Request) (*models.SubmissionPayload, attachmentLoader, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return h.parseMultipart(r)
	}

	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, err
	}
	payload := req.SubmissionPayload
	load := func() (*models.Attachment, error) {
		if payload.Attachment != nil {
			return payload.Attachment, forms.CheckAttachment(payload.Attachment)
		}
		return forms.DecodeBase64Attachment(req.File, req.FileName, req.FileType)
	}
	return &payload, load, nil
}

func (h *ContactHandler) parseMultipart(r *http.Request) (*models.SubmissionPayload, attachmentLoader, error) {
	if err := r.ParseMultipartForm(forms.MaxRequestSize); err != nil {
		return nil, nil, err
	}

	payload := &models.SubmissionPayload{
		FormType:       models.FormType(r.FormValue("formType")),
		Name:           r.FormValue("name"),
		Email:          r.FormValue("email"),
		Organisation:   r.FormValue("organisation"),
		Message:        r.FormValue("message"),
		AISystem:       r.FormValue("aiSystem"),
		Description:    r.FormValue("description"),
		Newsletter:     parseBool(r.FormValue("newsletter")),
		PrivacyConsent: parseBool(r.FormValue("privacyConsent")),
		IsAnonymous:    parseBool(r.FormValue("isAnonymous")),
		Website:        r.FormValue("_website"),
	}

	load := func() (*models.Attachment, error) {
		file, header, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return forms.ReadMultipartAttachment(file, header)
	}
	return payload, load, nil
}

// parseBool accepts the checkbox encodings browsers actually send.
func parseBool(s string) bool {
	if s == "on" {
		return true
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func fieldNames(verrs models.ValidationErrors) []string {
	names := make([]string, 0, len(verrs))
	for name := range verrs {
		names = append(names, name)
	}
	return names
}

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with a failure
func respondError(w http.ResponseWriter, status int, message, code string) {
	respondJSON(w, status, models.APIResponse{Success: false, Message: message, Error: code})
}
