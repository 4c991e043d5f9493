package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/audioguide-discovery/internal/domain"
	"github.com/audioguide-discovery/internal/domain/repository"
	apperrors "github.com/audioguide-discovery/internal/pkg/errors"
	"github.com/audioguide-discovery/internal/pkg/metrics"
	"go.uber.org/zap"
)

// RateLimiter decides whether a keyed event may happen now
type RateLimiter interface {
	Allow(key string) bool
}

// PlayUseCase - records that a guide's audio started playing
type PlayUseCase struct {
	guideRepo  repository.GuideRepository
	streamRepo repository.StreamRepository
	cacheRepo  repository.CacheRepository
	limiter    RateLimiter
	now        func() time.Time
	logger     *zap.Logger
}

func NewPlayUseCase(
	guideRepo repository.GuideRepository,
	streamRepo repository.StreamRepository,
	cacheRepo repository.CacheRepository,
	limiter RateLimiter,
	logger *zap.Logger,
) *PlayUseCase {
	return &PlayUseCase{
		guideRepo:  guideRepo,
		streamRepo: streamRepo,
		cacheRepo:  cacheRepo,
		limiter:    limiter,
		now:        time.Now,
		logger:     logger,
	}
}

// Record accepts one play of guideID from client. The increment is queued on
// the play stream; if the stream is unavailable it is applied directly.
func (uc *PlayUseCase) Record(ctx context.Context, guideID int64, client string) error {
	if guideID <= 0 {
		return apperrors.ErrInvalidGuideID
	}
	if _, err := uc.guideRepo.GetByID(ctx, guideID); err != nil {
		return mapRepoError(err)
	}

	if uc.limiter != nil && !uc.limiter.Allow(client+"|"+strconv.FormatInt(guideID, 10)) {
		metrics.PlaysRejected.Inc()
		uc.logger.Debug("Play rejected by rate limiter",
			zap.Int64("guide_id", guideID),
			zap.String("client", client))
		return apperrors.ErrTooManyPlays
	}

	event := domain.NewPlayEvent(guideID, client, uc.now())
	err := uc.streamRepo.PublishToStream(ctx, domain.StreamGuidePlay, event)
	if err == nil {
		metrics.PlaysRecorded.WithLabelValues("stream").Inc()
		return nil
	}

	uc.logger.Warn("Play stream unavailable, incrementing directly",
		zap.Int64("guide_id", guideID),
		zap.Error(err))

	if _, err := uc.guideRepo.IncrementPlays(ctx, guideID, 1); err != nil {
		return mapRepoError(err)
	}
	metrics.PlaysRecorded.WithLabelValues("direct").Inc()

	// cached guide lists carry nrplays, same as after a worker batch
	if _, err := uc.cacheRepo.BumpVersion(ctx, guidesCacheVersion); err != nil {
		uc.logger.Warn("Failed to bump guides cache version", zap.Error(err))
	}
	return nil
}
