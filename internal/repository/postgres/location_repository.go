package postgres

import (
	"context"
	"fmt"

	"github.com/audioguide-discovery/internal/domain"
	"github.com/audioguide-discovery/internal/domain/repository"
	"go.uber.org/zap"
)

type locationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewLocationRepository creates a LocationRepository backed by Postgres
func NewLocationRepository(db *DB) repository.LocationRepository {
	return &locationRepository{
		db:     db,
		logger: db.logger,
	}
}

// Search matches name or city case-insensitively; prefix matches rank first.
func (r *locationRepository) Search(ctx context.Context, text string, limit int) ([]*domain.Place, error) {
	query := `
		SELECT id, name, city, country, latitude, longitude
		FROM locations
		WHERE name ILIKE $1 OR city ILIKE $1
		ORDER BY (name ILIKE $2) DESC, name
		LIMIT $3
	`

	places := make([]*domain.Place, 0)
	err := r.db.SelectContext(ctx, &places, query,
		containsPattern(text),
		prefixPattern(text),
		clampLimit(limit, DefaultLocationLimit),
	)
	if err != nil {
		r.logger.Error("failed to search locations", zap.String("text", text), zap.Error(err))
		return nil, fmt.Errorf("search locations: %w", err)
	}

	return places, nil
}
