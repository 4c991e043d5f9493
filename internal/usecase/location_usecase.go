package usecase

import (
	"context"
	"strings"

	"github.com/audioguide-discovery/internal/domain"
	"github.com/audioguide-discovery/internal/domain/repository"
	apperrors "github.com/audioguide-discovery/internal/pkg/errors"
	"go.uber.org/zap"
)

// LocationSearchLimit - rows returned by place search
const LocationSearchLimit = 10

// LocationUseCase - place search for the location picker
type LocationUseCase struct {
	locationRepo repository.LocationRepository
	geocoder     repository.Geocoder
	logger       *zap.Logger
}

// NewLocationUseCase creates a LocationUseCase; geocoder may be nil to disable the fallback
func NewLocationUseCase(
	locationRepo repository.LocationRepository,
	geocoder repository.Geocoder,
	logger *zap.Logger,
) *LocationUseCase {
	return &LocationUseCase{
		locationRepo: locationRepo,
		geocoder:     geocoder,
		logger:       logger,
	}
}

// Search matches known places first and asks the geocoder only when nothing matched.
func (uc *LocationUseCase) Search(ctx context.Context, text string) ([]*domain.Place, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []*domain.Place{}, nil
	}

	places, err := uc.locationRepo.Search(ctx, text, LocationSearchLimit)
	if err != nil {
		return nil, apperrors.ErrDatabaseError
	}
	if len(places) > 0 || uc.geocoder == nil {
		return places, nil
	}

	geocoded, err := uc.geocoder.Forward(ctx, text, LocationSearchLimit)
	if err != nil {
		// External outage degrades to "no results"
		uc.logger.Warn("Geocoder fallback failed", zap.String("text", text), zap.Error(err))
		return []*domain.Place{}, nil
	}

	uc.logger.Debug("Places resolved by geocoder",
		zap.String("text", text),
		zap.Int("count", len(geocoded)))
	return geocoded, nil
}
