package forms

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moralknight/outreach-server/internal/models"
)

func validContact() *models.SubmissionPayload {
	return &models.SubmissionPayload{
		FormType:       models.FormContact,
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		Message:        "Hello, I have a question.",
		PrivacyConsent: true,
	}
}

func validReport() *models.SubmissionPayload {
	return &models.SubmissionPayload{
		FormType:       models.FormReport,
		Name:           "Jan Jansen",
		Email:          "jan@example.com",
		AISystem:       "Fraudedetectie-algoritme",
		Description:    "Algorithm X denied my benefits unfairly",
		PrivacyConsent: true,
	}
}

func TestValidate_ContactHappyPath(t *testing.T) {
	require.Empty(t, Validate(validContact()))
}

func TestValidate_Contact(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(p *models.SubmissionPayload)
		wantErrs []string
	}{
		{
			name:     "empty name",
			mutate:   func(p *models.SubmissionPayload) { p.Name = "" },
			wantErrs: []string{"name"},
		},
		{
			name:     "single character name",
			mutate:   func(p *models.SubmissionPayload) { p.Name = "J" },
			wantErrs: []string{"name"},
		},
		{
			name:     "email without at sign",
			mutate:   func(p *models.SubmissionPayload) { p.Email = "janeexample.com" },
			wantErrs: []string{"email"},
		},
		{
			name:     "email without dotted domain",
			mutate:   func(p *models.SubmissionPayload) { p.Email = "jane@example" },
			wantErrs: []string{"email"},
		},
		{
			name:     "message under ten characters",
			mutate:   func(p *models.SubmissionPayload) { p.Message = "Hi there" },
			wantErrs: []string{"message"},
		},
		{
			name:     "message is only whitespace",
			mutate:   func(p *models.SubmissionPayload) { p.Message = "           " },
			wantErrs: []string{"message"},
		},
		{
			name:     "no privacy consent",
			mutate:   func(p *models.SubmissionPayload) { p.PrivacyConsent = false },
			wantErrs: []string{"privacyConsent"},
		},
		{
			name: "everything missing",
			mutate: func(p *models.SubmissionPayload) {
				*p = models.SubmissionPayload{FormType: models.FormContact}
			},
			wantErrs: []string{"name", "email", "message", "privacyConsent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validContact()
			tt.mutate(p)
			errs := Validate(p)
			require.Len(t, errs, len(tt.wantErrs))
			for _, field := range tt.wantErrs {
				require.NotEmpty(t, errs[field], "expected error for %q", field)
			}
		})
	}
}

func TestValidate_Report(t *testing.T) {
	require.Empty(t, Validate(validReport()))

	p := validReport()
	p.AISystem = "  "
	p.Description = ""
	errs := Validate(p)
	require.Len(t, errs, 2)
	require.Contains(t, errs, "aiSystem")
	require.Contains(t, errs, "description")

	// Report names only need to be non-empty, unlike contact.
	p = validReport()
	p.Name = "J"
	require.Empty(t, Validate(p))
}

func TestValidate_AnonymousReportNeverRequiresIdentity(t *testing.T) {
	p := &models.SubmissionPayload{
		FormType:       models.FormReport,
		IsAnonymous:    true,
		AISystem:       "Algorithm X",
		Description:    "Algorithm X denied my benefits unfairly",
		PrivacyConsent: true,
	}
	require.Empty(t, Validate(p))
	require.Empty(t, ValidateField(p, "name"))
	require.Empty(t, ValidateField(p, "email"))

	// Even a garbage email is ignored while anonymous.
	p.Email = "not-an-email"
	require.Empty(t, ValidateField(p, "email"))

	// Consent still blocks anonymous submissions unconditionally.
	p.PrivacyConsent = false
	errs := Validate(p)
	require.Len(t, errs, 1)
	require.Contains(t, errs, "privacyConsent")
}

func TestValidateField_ContactIgnoresReportFields(t *testing.T) {
	p := validContact()
	require.Empty(t, ValidateField(p, "aiSystem"))
	require.Empty(t, ValidateField(p, "description"))
}

func TestSanitize(t *testing.T) {
	p := &models.SubmissionPayload{
		Name:        "  Jane Doe ",
		Email:       " Jane@Example.COM ",
		Message:     "  hello  ",
		AISystem:    " SyRI ",
		Description: " text ",
	}
	Sanitize(p)
	require.Equal(t, "Jane Doe", p.Name)
	require.Equal(t, "jane@example.com", p.Email)
	require.Equal(t, "hello", p.Message)
	require.Equal(t, "SyRI", p.AISystem)
	require.Equal(t, "text", p.Description)
}

func TestIsSpam(t *testing.T) {
	p := validContact()
	require.False(t, IsSpam(p))

	p.Website = "https://spam.example"
	require.True(t, IsSpam(p))

	// Whitespace-only is still empty.
	p.Website = "   "
	require.False(t, IsSpam(p))
}
