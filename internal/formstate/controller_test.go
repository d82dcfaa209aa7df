package formstate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moralknight/outreach-server/internal/forms"
	"github.com/moralknight/outreach-server/internal/models"
)

// mockSubmitter counts calls and returns a canned result.
type mockSubmitter struct {
	calls  int
	err    error
	record *models.ReportRecord
	last   *models.SubmissionPayload
}

func (m *mockSubmitter) Submit(_ context.Context, p *models.SubmissionPayload) (*models.ReportRecord, error) {
	m.calls++
	m.last = p
	if m.err != nil {
		return nil, m.err
	}
	if m.record != nil {
		return m.record, nil
	}
	return &models.ReportRecord{ReportID: "MK-2026-TEST", FormType: p.FormType}, nil
}

func fillContact(c *Controller) {
	c.SetField("name", "Jane Doe")
	c.SetField("email", "jane@example.com")
	c.SetField("message", "Hello, I have a question.")
	c.SetPrivacyConsent(true)
}

func TestController_DraftAutosaveRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	c := NewController(models.FormContact, store, &mockSubmitter{})

	c.SetField("name", "Jane Doe")
	c.SetField("organisation", "Gemeente Voorbeeld")
	c.SetField("_website", "should never persist")
	require.NoError(t, c.AttachFile(&models.Attachment{Filename: "x.png", ContentType: "image/png", Data: []byte("img")}))

	// A fresh controller over the same store sees the edits.
	reloaded := NewController(models.FormContact, store, &mockSubmitter{})
	draft := reloaded.Draft()
	require.Equal(t, "Jane Doe", draft.Name)
	require.Equal(t, "Gemeente Voorbeeld", draft.Organisation)

	// The file and honeypot fields never reach storage.
	require.Nil(t, draft.Attachment)
	require.Empty(t, draft.Website)

	raw, ok := store.Get("contact_form_data")
	require.True(t, ok)
	var onDisk map[string]any
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.NotContains(t, onDisk, "attachment")
	require.NotContains(t, onDisk, "_website")
}

func TestController_AnonymousDraftDropsIdentity(t *testing.T) {
	store := NewMemoryStore()
	c := NewController(models.FormReport, store, &mockSubmitter{})

	c.SetField("name", "Jan Jansen")
	c.SetField("email", "jan@example.com")
	c.SetAnonymous(true)

	raw, ok := store.Get("report_form_data")
	require.True(t, ok)
	require.NotContains(t, string(raw), "Jan Jansen")
	require.NotContains(t, string(raw), "jan@example.com")
}

func TestController_BlurShowsOnlyTouchedErrors(t *testing.T) {
	c := NewController(models.FormContact, NewMemoryStore(), &mockSubmitter{})

	c.SetField("email", "not-an-email")
	require.Empty(t, c.Errors(), "errors stay hidden until blur")

	c.Blur("email")
	errs := c.Errors()
	require.Contains(t, errs, "email")
	require.NotContains(t, errs, "name", "untouched fields show nothing")

	// Editing the field clears its error again.
	c.SetField("email", "jane@example.com")
	c.Blur("email")
	require.Empty(t, c.Errors())
}

func TestController_SubmitBlockedWithoutConsent(t *testing.T) {
	sub := &mockSubmitter{}
	c := NewController(models.FormContact, NewMemoryStore(), sub)

	fillContact(c)
	c.SetPrivacyConsent(false)

	err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrValidationFailed)
	require.Equal(t, StateEditing, c.State())
	require.Equal(t, 0, sub.calls, "no request leaves the client")

	// Submit marks every required field touched so all errors surface.
	require.Contains(t, c.Errors(), "privacyConsent")
}

func TestController_SubmitValidationTouchesAllFields(t *testing.T) {
	sub := &mockSubmitter{}
	c := NewController(models.FormContact, NewMemoryStore(), sub)

	require.ErrorIs(t, c.Submit(context.Background()), ErrValidationFailed)
	errs := c.Errors()
	require.Contains(t, errs, "name")
	require.Contains(t, errs, "email")
	require.Contains(t, errs, "message")
	require.Contains(t, errs, "privacyConsent")
	require.Equal(t, 0, sub.calls)
}

func TestController_SuccessfulSubmitClearsDraft(t *testing.T) {
	store := NewMemoryStore()
	sub := &mockSubmitter{}
	c := NewController(models.FormContact, store, sub)

	fillContact(c)
	_, hadDraft := store.Get("contact_form_data")
	require.True(t, hadDraft)

	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, StateSuccess, c.State())
	require.Equal(t, 1, sub.calls)
	require.Equal(t, "MK-2026-TEST", c.Record().ReportID)

	_, stillThere := store.Get("contact_form_data")
	require.False(t, stillThere, "draft is cleared on success")

	// Success is terminal until an explicit reset.
	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, 1, sub.calls)

	c.Reset()
	require.Equal(t, StateEditing, c.State())
	require.Empty(t, c.Draft().Name)
	require.Nil(t, c.Record())
}

func TestController_FailedSubmitKeepsDataAndSurfacesError(t *testing.T) {
	sub := &mockSubmitter{err: errors.New("server unreachable")}
	c := NewController(models.FormContact, NewMemoryStore(), sub)

	fillContact(c)
	require.Error(t, c.Submit(context.Background()))
	require.Equal(t, StateEditing, c.State())
	require.NotEmpty(t, c.SubmissionError())
	require.Equal(t, "Jane Doe", c.Draft().Name, "entered data survives a failed submit")

	// Editing any field dismisses the submission-level error.
	c.SetField("message", "Hello again, I still have a question.")
	require.Empty(t, c.SubmissionError())
}

func TestController_AnonymousToggleExemptsIdentity(t *testing.T) {
	sub := &mockSubmitter{}
	c := NewController(models.FormReport, NewMemoryStore(), sub)

	c.SetField("aiSystem", "Algorithm X")
	c.SetField("description", "Algorithm X denied my benefits unfairly")
	c.SetPrivacyConsent(true)

	c.Blur("name")
	c.Blur("email")
	require.Contains(t, c.Errors(), "name")
	require.Contains(t, c.Errors(), "email")

	// Switching anonymous on drops the identity errors immediately.
	c.SetAnonymous(true)
	require.NotContains(t, c.Errors(), "name")
	require.NotContains(t, c.Errors(), "email")

	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, 1, sub.calls)
	require.True(t, sub.last.IsAnonymous)

	// Switching it off re-enables the requirement on the next blur.
	c.Reset()
	c.SetAnonymous(false)
	c.Blur("name")
	require.Contains(t, c.Errors(), "name")
}

func TestController_OversizeFileRejectedClientSide(t *testing.T) {
	sub := &mockSubmitter{}
	c := NewController(models.FormReport, NewMemoryStore(), sub)

	c.SetField("name", "Jan Jansen")
	c.SetField("description", "Omschrijving van de misstand")

	big := &models.Attachment{
		Filename:    "groot.pdf",
		ContentType: "application/pdf",
		Data:        make([]byte, 5<<20), // 5 MB against a 3 MB limit
	}
	err := c.AttachFile(big)
	require.ErrorIs(t, err, forms.ErrAttachmentTooLarge)

	// The file slot stays empty, the rest of the form is untouched, and
	// the user sees a size error.
	draft := c.Draft()
	require.Nil(t, draft.Attachment)
	require.Equal(t, "Jan Jansen", draft.Name)
	require.Equal(t, "Omschrijving van de misstand", draft.Description)
	require.Contains(t, c.Errors(), "file")
	require.Equal(t, 0, sub.calls)

	// A file within the limit replaces the error.
	ok := &models.Attachment{Filename: "klein.png", ContentType: "image/png", Data: []byte("img")}
	require.NoError(t, c.AttachFile(ok))
	require.NotContains(t, c.Errors(), "file")
	require.NotNil(t, c.Draft().Attachment)
}

func TestController_DoubleSubmitGuard(t *testing.T) {
	// A submitter that tries to re-enter Submit while in flight.
	store := NewMemoryStore()
	var c *Controller
	var reentrant error
	sub := &reentrantSubmitter{fn: func() {
		reentrant = c.Submit(context.Background())
	}}
	c = NewController(models.FormContact, store, sub)

	fillContact(c)
	require.NoError(t, c.Submit(context.Background()))
	require.ErrorIs(t, reentrant, ErrSubmitInFlight)
	require.Equal(t, 1, sub.calls)
}

func TestController_MutationInertWhileSubmitting(t *testing.T) {
	var c *Controller
	sub := &reentrantSubmitter{fn: func() {
		c.SetField("name", "Changed Mid-Flight")
		c.SetPrivacyConsent(false)
	}}
	c = NewController(models.FormContact, NewMemoryStore(), sub)

	fillContact(c)
	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, "Jane Doe", c.Draft().Name)
	require.True(t, c.Draft().PrivacyConsent)
}

func TestController_CorruptedDraftIsDropped(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set("contact_form_data", []byte("{corrupt")))

	c := NewController(models.FormContact, store, &mockSubmitter{})
	require.Empty(t, c.Draft().Name)

	_, still := store.Get("contact_form_data")
	require.False(t, still, "corrupted drafts are cleared")
}

// reentrantSubmitter invokes a callback during Submit, standing in for UI
// events arriving while the request is in flight.
type reentrantSubmitter struct {
	calls int
	fn    func()
}

func (s *reentrantSubmitter) Submit(_ context.Context, p *models.SubmissionPayload) (*models.ReportRecord, error) {
	s.calls++
	if s.fn != nil {
		s.fn()
	}
	return &models.ReportRecord{ReportID: "MK-2026-TEST", FormType: p.FormType}, nil
}
