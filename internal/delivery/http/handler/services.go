package handler

import (
	"context"

	"github.com/audioguide-discovery/internal/domain"
)

// GuideFinder - guides near a point
type GuideFinder interface {
	Nearby(ctx context.Context, lat, lon float64, language string) ([]*domain.Guide, error)
}

// PlayRecorder - play-count increments
type PlayRecorder interface {
	Record(ctx context.Context, guideID int64, client string) error
}

// TagLister - filter tags per language
type TagLister interface {
	List(ctx context.Context, language string) ([]string, error)
}

// PlaceSearcher - location picker search
type PlaceSearcher interface {
	Search(ctx context.Context, text string) ([]*domain.Place, error)
}

// MediaProvider - guide media bundles
type MediaProvider interface {
	Get(ctx context.Context, guideID int64) (*domain.MediaBundle, error)
}

// StatsProvider - catalogue aggregates
type StatsProvider interface {
	AvailableGuides(ctx context.Context) ([]domain.CityGuideCount, error)
	GetStatistics(ctx context.Context) (*domain.Statistics, error)
}
