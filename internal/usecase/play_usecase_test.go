package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/audioguide-discovery/internal/domain"
	apperrors "github.com/audioguide-discovery/internal/pkg/errors"
	"github.com/audioguide-discovery/internal/usecase"
)

func TestPlayUseCase_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes a play event", func(t *testing.T) {
		guideRepo := &MockGuideRepository{}
		streamRepo := &MockStreamRepository{}
		uc := usecase.NewPlayUseCase(guideRepo, streamRepo, &MockCacheRepository{}, newStubLimiter(10), zap.NewNop())

		guideRepo.On("GetByID", ctx, int64(5)).Return(&domain.Guide{ID: 5}, nil)
		streamRepo.On("PublishToStream", ctx, domain.StreamGuidePlay, mock.MatchedBy(func(e domain.PlayEvent) bool {
			return e.GuideID == 5 && e.Client == "10.0.0.1" && e.Valid()
		})).Return(nil)

		require.NoError(t, uc.Record(ctx, 5, "10.0.0.1"))
		streamRepo.AssertExpectations(t)
		guideRepo.AssertNotCalled(t, "IncrementPlays", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("falls back to a direct increment", func(t *testing.T) {
		guideRepo := &MockGuideRepository{}
		streamRepo := &MockStreamRepository{}
		cacheRepo := &MockCacheRepository{}
		uc := usecase.NewPlayUseCase(guideRepo, streamRepo, cacheRepo, nil, zap.NewNop())

		guideRepo.On("GetByID", ctx, int64(5)).Return(&domain.Guide{ID: 5}, nil)
		streamRepo.On("PublishToStream", ctx, domain.StreamGuidePlay, mock.Anything).Return(errors.New("redis down"))
		guideRepo.On("IncrementPlays", ctx, int64(5), int64(1)).Return(int64(11), nil)
		cacheRepo.On("BumpVersion", ctx, "guides").Return(int64(4), nil)

		require.NoError(t, uc.Record(ctx, 5, "c"))
		guideRepo.AssertExpectations(t)
		cacheRepo.AssertExpectations(t)
	})

	t.Run("direct increment survives a cache failure", func(t *testing.T) {
		guideRepo := &MockGuideRepository{}
		streamRepo := &MockStreamRepository{}
		cacheRepo := &MockCacheRepository{}
		uc := usecase.NewPlayUseCase(guideRepo, streamRepo, cacheRepo, nil, zap.NewNop())

		guideRepo.On("GetByID", ctx, int64(5)).Return(&domain.Guide{ID: 5}, nil)
		streamRepo.On("PublishToStream", ctx, domain.StreamGuidePlay, mock.Anything).Return(errors.New("redis down"))
		guideRepo.On("IncrementPlays", ctx, int64(5), int64(1)).Return(int64(11), nil)
		cacheRepo.On("BumpVersion", ctx, "guides").Return(int64(0), errors.New("redis down"))

		require.NoError(t, uc.Record(ctx, 5, "c"))
		cacheRepo.AssertExpectations(t)
	})

	t.Run("rate limited per client and guide", func(t *testing.T) {
		guideRepo := &MockGuideRepository{}
		streamRepo := &MockStreamRepository{}
		uc := usecase.NewPlayUseCase(guideRepo, streamRepo, &MockCacheRepository{}, newStubLimiter(1), zap.NewNop())

		guideRepo.On("GetByID", ctx, mock.Anything).Return(&domain.Guide{}, nil)
		streamRepo.On("PublishToStream", ctx, domain.StreamGuidePlay, mock.Anything).Return(nil)

		require.NoError(t, uc.Record(ctx, 1, "a"))
		assert.ErrorIs(t, uc.Record(ctx, 1, "a"), apperrors.ErrTooManyPlays)
		assert.NoError(t, uc.Record(ctx, 2, "a"), "another guide has its own bucket")
		assert.NoError(t, uc.Record(ctx, 1, "b"), "another client has its own bucket")
		streamRepo.AssertNumberOfCalls(t, "PublishToStream", 3)
	})

	t.Run("unknown guide", func(t *testing.T) {
		guideRepo := &MockGuideRepository{}
		streamRepo := &MockStreamRepository{}
		uc := usecase.NewPlayUseCase(guideRepo, streamRepo, &MockCacheRepository{}, newStubLimiter(1), zap.NewNop())

		guideRepo.On("GetByID", ctx, int64(9)).Return(nil, apperrors.ErrGuideNotFound)

		assert.ErrorIs(t, uc.Record(ctx, 9, "a"), apperrors.ErrGuideNotFound)
		streamRepo.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid id", func(t *testing.T) {
		uc := usecase.NewPlayUseCase(&MockGuideRepository{}, &MockStreamRepository{}, &MockCacheRepository{}, nil, zap.NewNop())
		assert.ErrorIs(t, uc.Record(ctx, 0, "a"), apperrors.ErrInvalidGuideID)
	})
}
