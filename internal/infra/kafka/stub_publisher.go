package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/domain"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

// PublishTokenRevoked logs auth.token.revoked events.
func (p *StubPublisher) PublishTokenRevoked(_ context.Context, event domain.TokenRevokedEvent) error {
	p.logger.Info("stub event published",
		zap.String("event_type", topicTokenRevoked),
		zap.String("fingerprint", event.Fingerprint),
		zap.String("reason", event.Reason),
		zap.Time("expires_at", event.ExpiresAt),
		zap.Bool("new_record", event.NewRecord),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
