// Package formstate implements the client-side form controller as a
// reusable state machine: field edits, touched/error tracking, draft
// autosave and restore, anonymous-mode field suppression, and the submit
// lifecycle with a double-submit guard.
//
// The draft store is injected rather than reached through a package-level
// singleton so tests can isolate state between runs.
package formstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/moralknight/outreach-server/internal/forms"
	"github.com/moralknight/outreach-server/internal/models"
)

// State is the lifecycle state of one form instance.
type State string

const (
	// StateEditing accepts field mutation and validation.
	StateEditing State = "editing"
	// StateSubmitting is in flight; all further mutation is inert.
	StateSubmitting State = "submitting"
	// StateSuccess is terminal until an explicit Reset.
	StateSuccess State = "success"
)

// ErrSubmitInFlight is returned when Submit is called while a submission is
// already running.
var ErrSubmitInFlight = errors.New("submission already in flight")

// ErrValidationFailed is returned when whole-form validation blocks a
// submit. Field messages are available via Errors.
var ErrValidationFailed = errors.New("form validation failed")

// DraftStore is the key-value persistence behind draft autosave.
type DraftStore interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string)
}

// Submitter delivers a finished payload to the API.
type Submitter interface {
	Submit(ctx context.Context, p *models.SubmissionPayload) (*models.ReportRecord, error)
}

// Controller drives a single form instance.
type Controller struct {
	store     DraftStore
	submitter Submitter

	draft     models.SubmissionPayload
	errs      models.ValidationErrors
	touched   map[string]bool
	state     State
	submitErr string
	record    *models.ReportRecord
}

// NewController creates a controller for the given form type, rehydrating a
// previously persisted draft when one exists.
func NewController(formType models.FormType, store DraftStore, submitter Submitter) *Controller {
	c := &Controller{
		store:     store,
		submitter: submitter,
		draft:     models.SubmissionPayload{FormType: formType},
		errs:      make(models.ValidationErrors),
		touched:   make(map[string]bool),
		state:     StateEditing,
	}
	c.restore()
	return c
}

// draftKey matches the keys the site uses in session storage.
func (c *Controller) draftKey() string {
	if c.draft.FormType == models.FormReport {
		return "report_form_data"
	}
	return "contact_form_data"
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Draft returns a copy of the in-progress form state.
func (c *Controller) Draft() models.SubmissionPayload { return c.draft }

// Record returns the report record of a successful submission, or nil.
func (c *Controller) Record() *models.ReportRecord { return c.record }

// SubmissionError returns the current submission-level error message, or "".
func (c *Controller) SubmissionError() string { return c.submitErr }

// Errors returns the field errors that should currently be visible: only
// touched fields show theirs, so blur-time feedback stays per field until a
// submit marks everything touched at once.
func (c *Controller) Errors() models.ValidationErrors {
	visible := make(models.ValidationErrors)
	for field, msg := range c.errs {
		if c.touched[field] {
			visible[field] = msg
		}
	}
	return visible
}

// SetField updates a text field, clears its error, and persists the draft.
// Inert while a submission is in flight.
func (c *Controller) SetField(field, value string) {
	if c.state == StateSubmitting {
		return
	}
	switch field {
	case "name":
		c.draft.Name = value
	case "email":
		c.draft.Email = value
	case "organisation":
		c.draft.Organisation = value
	case "message":
		c.draft.Message = value
	case "aiSystem":
		c.draft.AISystem = value
	case "description":
		c.draft.Description = value
	case "_website":
		c.draft.Website = value
	default:
		return
	}
	c.fieldChanged(field)
}

// SetNewsletter updates the newsletter opt-in.
func (c *Controller) SetNewsletter(v bool) {
	if c.state == StateSubmitting {
		return
	}
	c.draft.Newsletter = v
	c.fieldChanged("newsletter")
}

// SetPrivacyConsent updates the privacy consent checkbox.
func (c *Controller) SetPrivacyConsent(v bool) {
	if c.state == StateSubmitting {
		return
	}
	c.draft.PrivacyConsent = v
	c.fieldChanged("privacyConsent")
}

// SetAnonymous toggles anonymous mode on a report form. Switching it on
// exempts name and email from validation immediately and drops any errors
// already shown for them; their requirement returns on the next blur or
// submit after switching off.
func (c *Controller) SetAnonymous(v bool) {
	if c.state == StateSubmitting || c.draft.FormType != models.FormReport {
		return
	}
	c.draft.IsAnonymous = v
	if v {
		delete(c.errs, "name")
		delete(c.errs, "email")
	}
	c.fieldChanged("isAnonymous")
}

// AttachFile sets the report attachment. Files over the ceiling are
// rejected before any upload with a field-level error; the rest of the form
// keeps its values and the file slot stays empty.
func (c *Controller) AttachFile(att *models.Attachment) error {
	if c.state == StateSubmitting {
		return nil
	}
	if att != nil {
		if err := forms.CheckAttachment(att); err != nil {
			c.errs["file"] = fmt.Sprintf("Bestand is te groot (maximaal %d MB)", forms.MaxAttachmentSize>>20)
			c.touched["file"] = true
			return err
		}
	}
	c.draft.Attachment = att
	delete(c.errs, "file")
	c.persist()
	return nil
}

// Blur marks a field touched and validates it, surfacing its error.
func (c *Controller) Blur(field string) {
	if c.state == StateSubmitting {
		return
	}
	c.touched[field] = true
	if msg := forms.ValidateField(&c.draft, field); msg != "" {
		c.errs[field] = msg
	} else {
		delete(c.errs, field)
	}
}

// Submit runs whole-form validation and, if it passes, delivers the payload
// through the injected submitter. On validation failure every required
// field is marked touched so all errors surface at once and no request is
// made. On transport failure the controller returns to editing with a
// submission-level error and the entered data intact.
func (c *Controller) Submit(ctx context.Context) error {
	if c.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	if c.state == StateSuccess {
		return nil
	}

	payload := c.draft
	forms.Sanitize(&payload)
	if verrs := forms.Validate(&payload); len(verrs) > 0 {
		for field, msg := range verrs {
			c.errs[field] = msg
			c.touched[field] = true
		}
		return ErrValidationFailed
	}

	c.state = StateSubmitting
	c.submitErr = ""

	record, err := c.submitter.Submit(ctx, &payload)
	if err != nil {
		c.state = StateEditing
		c.submitErr = "Er ging iets mis, probeer het later nogmaals"
		return err
	}

	c.state = StateSuccess
	c.record = record
	c.store.Delete(c.draftKey())
	return nil
}

// Reset returns a successful or errored form to a clean editing state.
func (c *Controller) Reset() {
	c.draft = models.SubmissionPayload{FormType: c.draft.FormType}
	c.errs = make(models.ValidationErrors)
	c.touched = make(map[string]bool)
	c.state = StateEditing
	c.submitErr = ""
	c.record = nil
	c.store.Delete(c.draftKey())
}

func (c *Controller) fieldChanged(field string) {
	delete(c.errs, field)
	c.submitErr = ""
	c.persist()
}

// persist writes the draft minus everything that must never touch storage:
// the attachment binary, the honeypot field, and, while anonymous mode is
// on, the identifying fields.
func (c *Controller) persist() {
	saved := c.draft
	saved.Attachment = nil
	saved.Website = ""
	if saved.IsAnonymous {
		saved.Name = ""
		saved.Email = ""
	}
	data, err := json.Marshal(saved)
	if err != nil {
		return
	}
	// Best effort: a full or unavailable store must never break editing.
	_ = c.store.Set(c.draftKey(), data)
}

// restore rehydrates a persisted draft, dropping anything corrupted.
func (c *Controller) restore() {
	data, ok := c.store.Get(c.draftKey())
	if !ok {
		return
	}
	var saved models.SubmissionPayload
	if err := json.Unmarshal(data, &saved); err != nil {
		c.store.Delete(c.draftKey())
		return
	}
	saved.FormType = c.draft.FormType
	saved.Attachment = nil
	saved.Website = ""
	c.draft = saved
}
