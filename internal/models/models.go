// Package models defines the data structures used across the application.
// These map to the public form API and the outgoing email pipeline.
package models

import (
	"time"

	"github.com/google/uuid"
)

// FormType discriminates the two form variants the site serves.
type FormType string

const (
	// FormContact is the general contact form.
	FormContact FormType = "contact"
	// FormReport is the misconduct report form (meldpunt).
	FormReport FormType = "report"
)

// Valid reports whether t is a known form type.
func (t FormType) Valid() bool {
	return t == FormContact || t == FormReport
}

// SubmissionPayload is the wire format of a form submission as received by
// the API. Both form variants share the struct; the validator decides which
// fields are required for which variant.
type SubmissionPayload struct {
	FormType     FormType `json:"formType"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Organisation string   `json:"organisation,omitempty"`

	// Contact variant
	Message string `json:"message,omitempty"`

	// Report variant
	AISystem    string `json:"aiSystem,omitempty"`
	Description string `json:"description,omitempty"`
	IsAnonymous bool   `json:"isAnonymous,omitempty"`

	Newsletter     bool `json:"newsletter,omitempty"`
	PrivacyConsent bool `json:"privacyConsent"`

	// Honeypot field. Hidden from human users; any non-empty value flags
	// the submission as spam.
	Website string `json:"_website,omitempty"`

	Attachment *Attachment `json:"attachment,omitempty"`
}

// Attachment is a single uploaded file carried through to the outgoing
// emails. Data holds the raw bytes regardless of whether the file arrived
// base64-encoded in a JSON body or as a multipart part.
type Attachment struct {
	Filename    string `json:"fileName"`
	ContentType string `json:"fileType"`
	Data        []byte `json:"file"`
}

// ValidationErrors maps field names to human-readable error messages.
// Fields that are not part of the active form mode never appear.
type ValidationErrors map[string]string

// EmailMessage is a fully composed outgoing email, ready for the mail
// transport. One submission produces one or two of these.
type EmailMessage struct {
	Recipient   string
	ReplyTo     string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// ReportRecord is the only durable reference produced by a submission.
// There is no server-side lookup table; the record lives in the emails.
type ReportRecord struct {
	ReportID   string    `json:"reportId"`
	FormType   FormType  `json:"formType"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// DeliveryEvent records the outcome of a single submission for the
// operator-facing delivery log. It carries no submitter PII.
type DeliveryEvent struct {
	ID               uuid.UUID `json:"id"`
	ReportID         string    `json:"report_id"`
	FormType         FormType  `json:"form_type"`
	AdminDelivered   bool      `json:"admin_delivered"`
	ConfirmDelivered bool      `json:"confirmation_delivered"`
	ConfirmSkipped   bool      `json:"confirmation_skipped"`
	Detail           string    `json:"detail,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// APIResponse is the uniform response body for the submission endpoint.
type APIResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	ReportID string `json:"reportId,omitempty"`
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Mailer  string `json:"mailer,omitempty"`
}
