package usecase

import (
	"context"
	"time"

	"github.com/audioguide-discovery/internal/domain/repository"
	apperrors "github.com/audioguide-discovery/internal/pkg/errors"
	"github.com/audioguide-discovery/internal/pkg/utils"
	"go.uber.org/zap"
)

// TagUseCase - filter tags per language
type TagUseCase struct {
	guideRepo repository.GuideRepository
	cacheRepo repository.CacheRepository
	cacheTTL  time.Duration
	logger    *zap.Logger
}

func NewTagUseCase(
	guideRepo repository.GuideRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *TagUseCase {
	return &TagUseCase{
		guideRepo: guideRepo,
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// List returns the sorted distinct tags of guides published in language
func (uc *TagUseCase) List(ctx context.Context, language string) ([]string, error) {
	lang, ok := utils.NormalizeLanguage(language)
	if !ok {
		return nil, apperrors.ErrInvalidLanguage.WithDetails(map[string]interface{}{
			"language":  language,
			"supported": utils.SupportedLanguages,
		})
	}

	return loadCached(ctx, uc.cacheRepo, uc.logger, "tags", "tags:"+lang, uc.cacheTTL,
		func(ctx context.Context) ([]string, error) {
			tags, err := uc.guideRepo.Tags(ctx, lang)
			if err != nil {
				return nil, apperrors.ErrDatabaseError
			}
			return tags, nil
		})
}
