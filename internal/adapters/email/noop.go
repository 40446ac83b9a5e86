package email

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// NoopSender is the sender used when no provider is configured.
// It logs each message, including its link, but does not deliver it.
type NoopSender struct {
	log *zap.Logger
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender(log *zap.Logger) *NoopSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &NoopSender{log: log}
}

// Send logs the email but does not deliver it.
// PRE: req is a valid SendRequest
// POST: Returns a noop result without actual delivery
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	s.log.Info("noop_email_send",
		zap.Strings("to", req.To),
		zap.String("subject", req.Subject),
		zap.String("kind", req.Kind),
		zap.String("link", req.Link),
	)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
