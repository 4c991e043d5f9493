package usecase

import (
	"context"

	"github.com/audioguide-discovery/internal/domain"
	"github.com/audioguide-discovery/internal/domain/repository"
	apperrors "github.com/audioguide-discovery/internal/pkg/errors"
	"go.uber.org/zap"
)

// MediaUseCase - photos and audio of a guide
type MediaUseCase struct {
	guideRepo repository.GuideRepository
	mediaRepo repository.MediaRepository
	logger    *zap.Logger
}

func NewMediaUseCase(
	guideRepo repository.GuideRepository,
	mediaRepo repository.MediaRepository,
	logger *zap.Logger,
) *MediaUseCase {
	return &MediaUseCase{
		guideRepo: guideRepo,
		mediaRepo: mediaRepo,
		logger:    logger,
	}
}

// Get returns the bundle of guideID; unknown guides are ErrGuideNotFound
func (uc *MediaUseCase) Get(ctx context.Context, guideID int64) (*domain.MediaBundle, error) {
	if guideID <= 0 {
		return nil, apperrors.ErrInvalidGuideID
	}
	if _, err := uc.guideRepo.GetByID(ctx, guideID); err != nil {
		return nil, mapRepoError(err)
	}

	items, err := uc.mediaRepo.ListByGuide(ctx, guideID)
	if err != nil {
		return nil, apperrors.ErrDatabaseError
	}

	bundle := domain.NewMediaBundle(items)
	return &bundle, nil
}
