package forms

import (
	"strings"

	"github.com/moralknight/outreach-server/internal/models"
)

// IsSpam reports whether the hidden honeypot field was filled in. The field
// is invisible to human users and excluded from tab order, so any value
// means an automated submitter.
//
// Callers must answer spam with a normal success response: the honeypot
// works because bots receive no signal of detection.
func IsSpam(p *models.SubmissionPayload) bool {
	return strings.TrimSpace(p.Website) != ""
}
