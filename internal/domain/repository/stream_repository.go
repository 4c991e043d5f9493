package repository

import (
	"context"

	"github.com/audioguide-discovery/internal/domain"
)

// StreamRepository - Redis Streams access
type StreamRepository interface {
	// ConsumeStream reads messages for the group until ctx is done
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	// AckMessage acknowledges a processed message
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// CreateConsumerGroup creates the group (and the stream) if missing
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// PublishToStream appends data as JSON to the stream
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
