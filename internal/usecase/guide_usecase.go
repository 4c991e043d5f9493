package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/audioguide-discovery/internal/domain"
	"github.com/audioguide-discovery/internal/domain/repository"
	apperrors "github.com/audioguide-discovery/internal/pkg/errors"
	"github.com/audioguide-discovery/internal/pkg/utils"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"go.uber.org/zap"
)

// cellSize is the grid (in degrees) the guide cache is keyed on; about 1.1 km of latitude.
const cellSize = 0.01

// GuideUseCase - guides near a point
type GuideUseCase struct {
	guideRepo  repository.GuideRepository
	cacheRepo  repository.CacheRepository
	radiusM    float64
	maxResults int
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewGuideUseCase creates a GuideUseCase searching radiusKm around the point
func NewGuideUseCase(
	guideRepo repository.GuideRepository,
	cacheRepo repository.CacheRepository,
	radiusKm float64,
	maxResults int,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *GuideUseCase {
	return &GuideUseCase{
		guideRepo:  guideRepo,
		cacheRepo:  cacheRepo,
		radiusM:    radiusKm * 1000,
		maxResults: maxResults,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Nearby returns guides in language within the search radius of (lat, lon),
// closest first, each carrying its distance in whole meters.
func (uc *GuideUseCase) Nearby(ctx context.Context, lat, lon float64, language string) ([]*domain.Guide, error) {
	if !utils.ValidateCoordinates(lat, lon) {
		return nil, apperrors.ErrInvalidCoordinates
	}
	lang, ok := utils.NormalizeLanguage(language)
	if !ok {
		return nil, apperrors.ErrInvalidLanguage.WithDetails(map[string]interface{}{
			"language":  language,
			"supported": utils.SupportedLanguages,
		})
	}

	candidates, err := uc.cellGuides(ctx, lat, lon, lang)
	if err != nil {
		return nil, err
	}

	origin := orb.Point{lon, lat}
	result := make([]*domain.Guide, 0, len(candidates))
	for _, g := range candidates {
		d := math.Round(geo.DistanceHaversine(origin, orb.Point{g.Longitude, g.Latitude}))
		if d > uc.radiusM {
			continue
		}
		guide := *g
		guide.Distance = &d
		result = append(result, &guide)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return *result[i].Distance < *result[j].Distance
	})
	if uc.maxResults > 0 && len(result) > uc.maxResults {
		result = result[:uc.maxResults]
	}

	uc.logger.Debug("Nearby guides resolved",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
		zap.String("language", lang),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(result)))

	return result, nil
}

// cellGuides loads every guide that can be within the radius of any point of
// the cache cell containing (lat, lon).
func (uc *GuideUseCase) cellGuides(ctx context.Context, lat, lon float64, lang string) ([]*domain.Guide, error) {
	cellLat := math.Floor(lat/cellSize) * cellSize
	cellLon := math.Floor(lon/cellSize) * cellSize

	version, err := uc.cacheRepo.Version(ctx, guidesCacheVersion)
	if err != nil {
		uc.logger.Warn("Guides cache version unavailable", zap.Error(err))
	}
	key := fmt.Sprintf("guides:%s:v%d:%.2f:%.2f", lang, version, cellLat, cellLon)

	return loadCached(ctx, uc.cacheRepo, uc.logger, "guides", key, uc.cacheTTL,
		func(ctx context.Context) ([]*domain.Guide, error) {
			center := orb.Point{cellLon + cellSize/2, cellLat + cellSize/2}
			// Half diagonal of the cell covers every point inside it.
			margin := geo.DistanceHaversine(center, orb.Point{cellLon, cellLat})
			bound := geo.NewBoundAroundPoint(center, uc.radiusM+margin)

			bbox := domain.BoundingBox{
				MinLat: bound.Min.Lat(),
				MinLon: bound.Min.Lon(),
				MaxLat: bound.Max.Lat(),
				MaxLon: bound.Max.Lon(),
			}
			guides, err := uc.guideRepo.FindInBoundingBox(ctx, bbox, lang, 0)
			if err != nil {
				return nil, apperrors.ErrDatabaseError
			}
			return guides, nil
		})
}
