package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MinaWilson92/prochub/server/activitylog"
	"github.com/MinaWilson92/prochub/share/logger"
)

// Transport hands a rendered email to the delivery channel. Satisfied by
// rmailer.Mailer.
type Transport interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

// EmailAudit records one row per dispatch attempt.
type EmailAudit interface {
	RecordEmail(ctx context.Context, e *activitylog.EmailEntry)
}

// DispatchResult is what every dispatch reports back. Dispatch never returns
// an error: callers must be able to treat it as non-throwing.
type DispatchResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	NotificationID string `json:"notification_id"`
}

// Dispatcher renders a notification, hands it to the transport and records
// exactly one activity-log row per call, whatever the outcome. The log's
// purpose is to surface failures, so a failure must never suppress logging.
type Dispatcher struct {
	templates TemplateSource
	transport Transport
	audit     EmailAudit
	l         *logger.Logger
}

func NewDispatcher(templates TemplateSource, transport Transport, audit EmailAudit, l *logger.Logger) *Dispatcher {
	return &Dispatcher{
		templates: templates,
		transport: transport,
		audit:     audit,
		l:         l,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, notificationType EventType, recipients []string, vars map[string]string) DispatchResult {
	id := uuid.NewString()

	subject := string(notificationType)
	body := ""
	tpl, templateOK := d.templates.Get(ctx, notificationType)
	if templateOK {
		subject = Render(tpl.Subject, vars)
		body = Render(tpl.HTMLContent, vars)
	} else {
		// Degraded body; the send is still attempted so the event leaves a
		// trace with its recipients, but the outcome is reported as failure.
		d.l.Errorf("no template for notification type %s", notificationType)
		body = fmt.Sprintf("<p>Notification %s (template unavailable)</p>", notificationType)
	}

	sendErr := d.transport.Send(ctx, recipients, subject, body)
	if sendErr != nil {
		d.l.Errorf("transport failed for %s: %v", notificationType, sendErr)
	}

	success := sendErr == nil && templateOK

	entry := activitylog.NewEmailEntry(string(notificationType)).
		WithRecipients(recipients).
		WithSuccess(success).
		WithDetail("subject", subject).
		WithPerformedBy(vars["performedBy"]).
		WithProcedure(vars["procedureId"]).
		WithUser(vars["userId"])
	entry.ID = id
	if sendErr != nil {
		entry.WithDetail("error", sendErr.Error())
	}
	if !templateOK {
		entry.WithDetail("templateMissing", "true")
	}
	d.audit.RecordEmail(ctx, entry)

	switch {
	case sendErr != nil:
		return DispatchResult{Success: false, Message: fmt.Sprintf("failed to send %s: %v", notificationType, sendErr), NotificationID: id}
	case !templateOK:
		return DispatchResult{Success: false, Message: fmt.Sprintf("sent %s without template", notificationType), NotificationID: id}
	default:
		return DispatchResult{Success: true, Message: fmt.Sprintf("sent %s to %d recipient(s)", notificationType, len(recipients)), NotificationID: id}
	}
}
