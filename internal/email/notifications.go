package email

import (
	"context"
	"log/slog"

	"realflow/internal/config"
	"realflow/internal/metrics"
	"realflow/internal/models"
)

// Notifier sends hot-lead alerts to the configured recipients.
type Notifier struct {
	service    *Service
	templates  *Templates
	recipients []string
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config, recipients []string, rec *metrics.Recorder, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		service:    NewService(cfg, logger),
		templates:  NewTemplates(cfg),
		recipients: recipients,
		metrics:    rec,
		logger:     logger,
	}
}

// Enabled reports whether a notification would actually be sent.
func (n *Notifier) Enabled() bool {
	return n != nil && n.service.IsEnabled() && len(n.recipients) > 0
}

// NotifyHotLead sends the alert in the background. It never blocks the caller
// on SMTP and never reports failure beyond logs and metrics.
func (n *Notifier) NotifyHotLead(ctx context.Context, lead models.HotLead, call *models.CallRecord) {
	if n == nil {
		return
	}
	if !n.Enabled() {
		n.metrics.Notification(metrics.OutcomeSkipped)
		return
	}

	subject, htmlBody, textBody := n.templates.HotLead(lead, call)
	n.service.SendAsync(n.recipients, subject, htmlBody, textBody, func(err error) {
		if err != nil {
			n.metrics.Notification(metrics.OutcomeError)
			return
		}
		n.metrics.Notification(metrics.OutcomeSuccess)
	})
}
