// Package forms contains the pure form logic shared by the API endpoint and
// the client form controller: sanitization, field and whole-form validation,
// the honeypot spam check, and attachment handling.
package forms

import (
	"regexp"
	"strings"

	"github.com/moralknight/outreach-server/internal/models"
)

// emailRegex is deliberately permissive: local@domain.tld, no exotic RFC
// edge cases. It rejects strings without an @ or without a dotted domain.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like a usable email address.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// Sanitize trims all free-text fields and lowercases the email address.
// Called before validation on both client and server.
func Sanitize(p *models.SubmissionPayload) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Organisation = strings.TrimSpace(p.Organisation)
	p.Message = strings.TrimSpace(p.Message)
	p.AISystem = strings.TrimSpace(p.AISystem)
	p.Description = strings.TrimSpace(p.Description)
}

// ValidateField validates a single field of the payload and returns an
// empty string when the field is acceptable. Anonymous report mode exempts
// name and email entirely.
func ValidateField(p *models.SubmissionPayload, field string) string {
	anonymous := p.FormType == models.FormReport && p.IsAnonymous

	switch field {
	case "name":
		if anonymous {
			return ""
		}
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return "Naam is verplicht"
		}
		if p.FormType == models.FormContact && len([]rune(name)) < 2 {
			return "Naam moet minimaal 2 tekens bevatten"
		}
	case "email":
		if anonymous {
			return ""
		}
		email := strings.TrimSpace(p.Email)
		if email == "" {
			return "Email is verplicht"
		}
		if !ValidEmail(email) {
			return "Voer een geldig emailadres in"
		}
	case "message":
		if p.FormType != models.FormContact {
			return ""
		}
		msg := strings.TrimSpace(p.Message)
		if msg == "" {
			return "Bericht is verplicht"
		}
		if len([]rune(msg)) < 10 {
			return "Bericht moet minimaal 10 tekens bevatten"
		}
	case "aiSystem":
		if p.FormType != models.FormReport {
			return ""
		}
		if strings.TrimSpace(p.AISystem) == "" {
			return "Publieke instantie of AI systeem is verplicht"
		}
	case "description":
		if p.FormType != models.FormReport {
			return ""
		}
		if strings.TrimSpace(p.Description) == "" {
			return "Omschrijving is verplicht"
		}
	case "privacyConsent":
		if !p.PrivacyConsent {
			return "U moet akkoord gaan met de privacyverklaring"
		}
	}
	return ""
}

// fieldsFor lists the validated fields of a form variant in the order
// errors should surface.
func fieldsFor(t models.FormType) []string {
	if t == models.FormReport {
		return []string{"name", "email", "aiSystem", "description", "privacyConsent"}
	}
	return []string{"name", "email", "message", "privacyConsent"}
}

// Validate runs whole-form validation and returns one message per failing
// field. An empty result means the form may be submitted.
func Validate(p *models.SubmissionPayload) models.ValidationErrors {
	errs := make(models.ValidationErrors)
	for _, field := range fieldsFor(p.FormType) {
		if msg := ValidateField(p, field); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}
