package email

import (
	"context"

	billingapp "github.com/invoicing/backend/internal/application/billing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ensure NoopSender implements EmailSender
var _ billingapp.EmailSender = (*NoopSender)(nil)

// NoopSender logs messages instead of sending them. Used in development
// when no provider credentials are configured.
type NoopSender struct {
	logger *zap.Logger
}

// NewNoopSender creates a new NoopSender
func NewNoopSender(logger *zap.Logger) *NoopSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopSender{logger: logger}
}

// Send logs the message and returns a synthetic message ID
func (s *NoopSender) Send(ctx context.Context, msg billingapp.EmailMessage) (string, error) {
	id := "noop-" + uuid.NewString()
	s.logger.Info("email sending disabled, message dropped",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachment_bytes", len(msg.Attachment)),
		zap.String("message_id", id),
	)
	return id, nil
}
