package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/audioguide-discovery/internal/domain"
	"github.com/audioguide-discovery/internal/domain/repository"
	"go.uber.org/zap"
)

type statsRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewStatsRepository creates a StatsRepository backed by Postgres
func NewStatsRepository(db *DB, logger *zap.Logger) repository.StatsRepository {
	return &statsRepository{
		db:     db,
		logger: logger,
	}
}

func (r *statsRepository) AvailableGuides(ctx context.Context) ([]domain.CityGuideCount, error) {
	query := `
		SELECT city, COUNT(*) AS nraudioguides
		FROM guides
		WHERE city <> ''
		GROUP BY city
		ORDER BY nraudioguides DESC, city
	`

	rows := make([]domain.CityGuideCount, 0)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		r.logger.Error("failed to count guides per city", zap.Error(err))
		return nil, fmt.Errorf("available guides: %w", err)
	}

	return rows, nil
}

func (r *statsRepository) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	stats := &domain.Statistics{
		ByLanguage:  make(map[string]int),
		LastUpdated: time.Now(),
	}

	totals := `
		SELECT COUNT(*) AS guides,
		       COUNT(DISTINCT NULLIF(city, '')) AS cities,
		       COALESCE(SUM(nrplays), 0) AS total_plays
		FROM guides
	`
	var row struct {
		Guides     int   `db:"guides"`
		Cities     int   `db:"cities"`
		TotalPlays int64 `db:"total_plays"`
	}
	if err := r.db.GetContext(ctx, &row, totals); err != nil {
		r.logger.Error("failed to get guide totals", zap.Error(err))
		return nil, fmt.Errorf("get guide totals: %w", err)
	}
	stats.Guides = row.Guides
	stats.Cities = row.Cities
	stats.TotalPlays = row.TotalPlays

	var langs []struct {
		Language string `db:"language"`
		Count    int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &langs, `SELECT language, COUNT(*) AS count FROM guides GROUP BY language`); err != nil {
		r.logger.Error("failed to get language stats", zap.Error(err))
		return nil, fmt.Errorf("get language stats: %w", err)
	}
	for _, l := range langs {
		stats.ByLanguage[l.Language] = l.Count
	}

	return stats, nil
}
