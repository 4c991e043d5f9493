package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/audioguide-discovery/internal/domain"
	"github.com/audioguide-discovery/internal/domain/repository"
	apperrors "github.com/audioguide-discovery/internal/pkg/errors"
	"go.uber.org/zap"
)

// StatsUseCase - catalogue aggregates for the landing page
type StatsUseCase struct {
	statsRepo repository.StatsRepository
	cacheRepo repository.CacheRepository
	cacheTTL  time.Duration
	logger    *zap.Logger
}

func NewStatsUseCase(
	statsRepo repository.StatsRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *StatsUseCase {
	return &StatsUseCase{
		statsRepo: statsRepo,
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// AvailableGuides returns guide counts per city, largest first
func (uc *StatsUseCase) AvailableGuides(ctx context.Context) ([]domain.CityGuideCount, error) {
	return loadCached(ctx, uc.cacheRepo, uc.logger, "available_guides", "availableguides", uc.cacheTTL,
		func(ctx context.Context) ([]domain.CityGuideCount, error) {
			rows, err := uc.statsRepo.AvailableGuides(ctx)
			if err != nil {
				return nil, apperrors.ErrDatabaseError
			}
			return rows, nil
		})
}

// GetStatistics returns catalogue totals, cached like the available guides table
func (uc *StatsUseCase) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	stats, err := loadCached(ctx, uc.cacheRepo, uc.logger, "stats", "stats:current", uc.cacheTTL,
		func(ctx context.Context) (*domain.Statistics, error) {
			return uc.statsRepo.GetStatistics(ctx)
		})
	if err != nil {
		return nil, fmt.Errorf("get statistics: %w", err)
	}
	return stats, nil
}
