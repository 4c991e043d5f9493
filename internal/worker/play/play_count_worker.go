package play

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/audioguide-discovery/internal/domain"
	"github.com/audioguide-discovery/internal/domain/repository"
	"github.com/audioguide-discovery/internal/pkg/metrics"
	"github.com/audioguide-discovery/internal/worker"
	"go.uber.org/zap"
)

const (
	// flushInterval bounds how long a partial batch waits before being applied
	flushInterval = time.Second
	retryBackoff  = 200 * time.Millisecond

	// guidesCacheVersion must match the counter read by the guide use case
	guidesCacheVersion = "guides"
)

// PlayCountWorker drains play events and applies them as one increment per guide per batch
type PlayCountWorker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	guideRepo  repository.GuideRepository
	cacheRepo  repository.CacheRepository
	batchSize  int
	maxRetries int
}

func NewPlayCountWorker(
	streamRepo repository.StreamRepository,
	guideRepo repository.GuideRepository,
	cacheRepo repository.CacheRepository,
	consumerGroup string,
	batchSize int,
	maxRetries int,
	logger *zap.Logger,
) *PlayCountWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &PlayCountWorker{
		BaseWorker: worker.NewBaseWorker("guide-play", consumerGroup, logger),
		streamRepo: streamRepo,
		guideRepo:  guideRepo,
		cacheRepo:  cacheRepo,
		batchSize:  batchSize,
		maxRetries: maxRetries,
	}
}

func (w *PlayCountWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting play count worker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("batch_size", w.batchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamGuidePlay, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	// The consumer goroutine lives as long as this context
	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(consumeCtx, domain.StreamGuidePlay, w.ConsumerGroup(), w.ConsumerName())
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]domain.StreamMessage, 0, w.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Apply with a context that outlives Stop so an in-flight batch completes
		w.processBatch(context.WithoutCancel(ctx), batch)
		batch = batch[:0]
	}

	for {
		select {
		case <-w.StopChan():
			flush()
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			flush()
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				flush()
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= w.batchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// processBatch aggregates events per guide and applies them in one statement.
// Messages are acked only after the increment succeeded; unparseable ones are
// acked immediately so they do not block the pending list.
func (w *PlayCountWorker) processBatch(ctx context.Context, messages []domain.StreamMessage) {
	logger := w.Logger()

	deltas := make(map[int64]int64)
	valid := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, msg := range messages {
		var event domain.PlayEvent
		if err := json.Unmarshal([]byte(msg.Data), &event); err != nil || !event.Valid() {
			logger.Warn("Dropping malformed play event",
				zap.String("message_id", msg.ID),
				zap.String("data", msg.Data))
			metrics.PlayEventsProcessed.WithLabelValues("malformed").Inc()
			w.ack(ctx, msg.ID)
			continue
		}

		// Redelivered copies of an event carry the same id
		if _, dup := seen[event.ID.String()]; dup {
			metrics.PlayEventsProcessed.WithLabelValues("duplicate").Inc()
			w.ack(ctx, msg.ID)
			continue
		}
		seen[event.ID.String()] = struct{}{}

		deltas[event.GuideID]++
		valid = append(valid, msg.ID)
	}

	if len(deltas) == 0 {
		return
	}

	var err error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if err = w.guideRepo.IncrementPlaysBatch(ctx, deltas); err == nil {
			break
		}
		logger.Warn("Failed to apply play batch",
			zap.Int("attempt", attempt),
			zap.Int("guides", len(deltas)),
			zap.Error(err))
		if attempt < w.maxRetries {
			time.Sleep(retryBackoff * time.Duration(attempt))
		}
	}
	if err != nil {
		// Left pending; redelivered when the consumer restarts
		logger.Error("Giving up on play batch", zap.Int("events", len(valid)), zap.Error(err))
		metrics.PlayEventsProcessed.WithLabelValues("failed").Add(float64(len(valid)))
		return
	}

	for _, id := range valid {
		w.ack(ctx, id)
	}
	metrics.PlayEventsProcessed.WithLabelValues("applied").Add(float64(len(valid)))

	if _, err := w.cacheRepo.BumpVersion(ctx, guidesCacheVersion); err != nil {
		logger.Warn("Failed to invalidate guides cache", zap.Error(err))
	}

	logger.Info("Play batch applied",
		zap.Int("events", len(valid)),
		zap.Int("guides", len(deltas)))
}

func (w *PlayCountWorker) ack(ctx context.Context, id string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamGuidePlay, w.ConsumerGroup(), id); err != nil {
		w.Logger().Warn("Failed to ack play event", zap.String("message_id", id), zap.Error(err))
	}
}
