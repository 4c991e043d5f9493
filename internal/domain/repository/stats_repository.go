package repository

import (
	"context"

	"github.com/audioguide-discovery/internal/domain"
)

// StatsRepository - catalogue aggregates
type StatsRepository interface {
	// AvailableGuides returns the number of guides per city
	AvailableGuides(ctx context.Context) ([]domain.CityGuideCount, error)

	// GetStatistics returns totals across the whole catalogue
	GetStatistics(ctx context.Context) (*domain.Statistics, error)
}
