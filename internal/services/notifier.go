// Package services contains business logic layers.
// Services are called by handlers and drive the mail transport.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/moralknight/outreach-server/internal/config"
	"github.com/moralknight/outreach-server/internal/mailer"
	"github.com/moralknight/outreach-server/internal/models"
	"github.com/moralknight/outreach-server/internal/templates"
)

// Notifier turns a validated submission into outgoing email: an admin
// notification (always) and a submitter confirmation (only when an address
// was given and the submission is not anonymous).
type Notifier struct {
	mailer   mailer.Mailer
	cfg      config.SMTP
	delivery *DeliveryLogService
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewNotifier creates a new notifier service.
func NewNotifier(m mailer.Mailer, cfg config.SMTP, delivery *DeliveryLogService, logger *zap.SugaredLogger) *Notifier {
	return &Notifier{mailer: m, cfg: cfg, delivery: delivery, logger: logger, now: time.Now}
}

// Dispatch sends the emails for one submission and returns the report
// record carrying the reference code.
//
// The reference code is generated before any delivery attempt so it can be
// returned to the user even when the confirmation email later fails. The
// two sends run concurrently and are joined all-settled: a failed admin
// notification fails the whole operation (that mail must reach staff), a
// failed confirmation is logged and absorbed (the submission itself was
// actioned; the confirmation is a courtesy).
func (n *Notifier) Dispatch(ctx context.Context, p *models.SubmissionPayload) (*models.ReportRecord, error) {
	receivedAt := n.now()
	reportID, err := GenerateReportID(receivedAt)
	if err != nil {
		return nil, err
	}
	record := &models.ReportRecord{
		ReportID:   reportID,
		FormType:   p.FormType,
		ReceivedAt: receivedAt,
	}

	dateLabel := DateLabel(receivedAt)

	adminMsg, err := n.buildAdminMessage(p, reportID, dateLabel)
	if err != nil {
		return nil, err
	}
	confirmMsg, err := n.buildConfirmation(p, reportID, dateLabel)
	if err != nil {
		return nil, err
	}

	var (
		wg         sync.WaitGroup
		adminErr   error
		confirmErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		adminErr = n.mailer.Send(ctx, adminMsg)
	}()

	if confirmMsg != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			confirmErr = n.mailer.Send(ctx, confirmMsg)
		}()
	}

	wg.Wait()

	n.delivery.Record(models.DeliveryEvent{
		ReportID:         reportID,
		FormType:         p.FormType,
		AdminDelivered:   adminErr == nil,
		ConfirmDelivered: confirmMsg != nil && confirmErr == nil,
		ConfirmSkipped:   confirmMsg == nil,
		Detail:           deliveryDetail(adminErr, confirmErr),
	})

	if adminErr != nil {
		return nil, fmt.Errorf("admin notification: %w", adminErr)
	}
	if confirmErr != nil {
		// Overall success: the staff notification went out so the
		// submission is in safe hands. Caller never hears about this.
		n.logger.Warnw("Confirmation email failed",
			"report_id", reportID,
			"form_type", p.FormType,
			"error", confirmErr,
		)
	}

	n.logger.Infow("Submission dispatched",
		"report_id", reportID,
		"form_type", p.FormType,
		"anonymous", p.IsAnonymous,
		"has_attachment", p.Attachment != nil,
		"confirmation_sent", confirmMsg != nil && confirmErr == nil,
	)
	return record, nil
}

func (n *Notifier) buildAdminMessage(p *models.SubmissionPayload, reportID, dateLabel string) (*models.EmailMessage, error) {
	body, err := templates.Render(p, false, reportID, dateLabel)
	if err != nil {
		return nil, err
	}
	msg := &models.EmailMessage{
		Recipient: n.cfg.AdminAddr,
		Subject:   adminSubject(p),
		HTMLBody:  body,
	}
	if !p.IsAnonymous && p.Email != "" {
		msg.ReplyTo = p.Email
	}
	if p.Attachment != nil {
		msg.Attachments = []models.Attachment{*p.Attachment}
	}
	return msg, nil
}

// buildConfirmation returns nil when no confirmation should be sent:
// anonymous submissions have no traceable address, and a form without an
// email has nowhere to deliver to.
func (n *Notifier) buildConfirmation(p *models.SubmissionPayload, reportID, dateLabel string) (*models.EmailMessage, error) {
	if p.IsAnonymous || p.Email == "" {
		return nil, nil
	}
	body, err := templates.Render(p, true, reportID, dateLabel)
	if err != nil {
		return nil, err
	}
	msg := &models.EmailMessage{
		Recipient: p.Email,
		Subject:   confirmationSubject(p, reportID),
		HTMLBody:  body,
	}
	if p.Attachment != nil {
		msg.Attachments = []models.Attachment{*p.Attachment}
	}
	return msg, nil
}

func adminSubject(p *models.SubmissionPayload) string {
	name := p.Name
	if name == "" {
		name = "Anoniem"
	}
	if p.FormType == models.FormReport {
		return fmt.Sprintf("MK Meldpunt: Nieuwe melding van %s", name)
	}
	return fmt.Sprintf("MK Contact: Nieuw bericht van %s", name)
}

func confirmationSubject(p *models.SubmissionPayload, reportID string) string {
	if p.FormType == models.FormReport {
		return fmt.Sprintf("Bevestiging van uw melding (%s)", reportID)
	}
	return fmt.Sprintf("Bedankt voor uw bericht (%s)", reportID)
}

func deliveryDetail(adminErr, confirmErr error) string {
	switch {
	case adminErr != nil && confirmErr != nil:
		return "admin and confirmation delivery failed"
	case adminErr != nil:
		return "admin delivery failed"
	case confirmErr != nil:
		return "confirmation delivery failed"
	}
	return ""
}
