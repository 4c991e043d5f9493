package repository

import (
	"context"

	"github.com/audioguide-discovery/internal/domain"
)

// GuideRepository - guides table access
type GuideRepository interface {
	// GetByID returns the guide or ErrGuideNotFound
	GetByID(ctx context.Context, id int64) (*domain.Guide, error)

	// FindInBoundingBox returns guides in the language whose point lies inside bbox
	FindInBoundingBox(ctx context.Context, bbox domain.BoundingBox, language string, limit int) ([]*domain.Guide, error)

	// Tags returns the distinct tags of guides in the language, sorted
	Tags(ctx context.Context, language string) ([]string, error)

	// IncrementPlays adds delta to nrplays and returns the new count
	IncrementPlays(ctx context.Context, id int64, delta int64) (int64, error)

	// IncrementPlaysBatch applies several increments in one statement
	IncrementPlaysBatch(ctx context.Context, deltas map[int64]int64) error
}

// MediaRepository - guide_media table access
type MediaRepository interface {
	// ListByGuide returns rows ordered by kind then position
	ListByGuide(ctx context.Context, guideID int64) ([]domain.MediaItem, error)
}

// LocationRepository - locations table access
type LocationRepository interface {
	// Search returns places whose name or city contains text
	Search(ctx context.Context, text string, limit int) ([]*domain.Place, error)
}

// Geocoder resolves free text into places using an external service
type Geocoder interface {
	Forward(ctx context.Context, text string, limit int) ([]*domain.Place, error)
}
