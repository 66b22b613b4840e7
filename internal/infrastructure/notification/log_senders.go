package notification

import (
	"context"

	"github.com/taller/backend/internal/domain/notification"
	"go.uber.org/zap"
)

// LogEmailSender delivers email notifications to the log. Stands in for a
// real SMTP integration; the dispatch worker treats it like any other sender.
type LogEmailSender struct {
	logger *zap.Logger
}

// NewLogEmailSender creates a log-backed email sender
func NewLogEmailSender(logger *zap.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger}
}

// Channel returns the email channel
func (s *LogEmailSender) Channel() notification.Channel {
	return notification.ChannelEmail
}

// Send logs the outgoing email
func (s *LogEmailSender) Send(_ context.Context, job *notification.Job) error {
	s.logger.Info("sending email notification",
		zap.String("job_id", job.ID.String()),
		zap.String("subject_type", string(job.SubjectType)),
		zap.String("subject_id", job.SubjectID.String()),
		zap.String("recipient", job.Recipient),
		zap.String("message", job.Message),
		zap.String("pdf_url", job.PDFURL),
	)
	return nil
}

// LogWhatsappSender delivers WhatsApp notifications to the log. Stands in for
// a messaging gateway integration.
type LogWhatsappSender struct {
	logger *zap.Logger
}

// NewLogWhatsappSender creates a log-backed WhatsApp sender
func NewLogWhatsappSender(logger *zap.Logger) *LogWhatsappSender {
	return &LogWhatsappSender{logger: logger}
}

// Channel returns the whatsapp channel
func (s *LogWhatsappSender) Channel() notification.Channel {
	return notification.ChannelWhatsapp
}

// Send logs the outgoing message
func (s *LogWhatsappSender) Send(_ context.Context, job *notification.Job) error {
	s.logger.Info("sending whatsapp notification",
		zap.String("job_id", job.ID.String()),
		zap.String("subject_type", string(job.SubjectType)),
		zap.String("subject_id", job.SubjectID.String()),
		zap.String("recipient", job.Recipient),
		zap.String("message", job.Message),
	)
	return nil
}

var _ notification.Sender = (*LogEmailSender)(nil)
var _ notification.Sender = (*LogWhatsappSender)(nil)
