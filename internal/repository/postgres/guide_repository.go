package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/audioguide-discovery/internal/domain"
	"github.com/audioguide-discovery/internal/domain/repository"
	apperrors "github.com/audioguide-discovery/internal/pkg/errors"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const guideColumns = `id, title, original_title, description, tags, latitude, longitude, nrplays, city, language`

type guideRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewGuideRepository creates a GuideRepository backed by Postgres
func NewGuideRepository(db *DB) repository.GuideRepository {
	return &guideRepository{
		db:     db,
		logger: db.logger,
	}
}

func (r *guideRepository) GetByID(ctx context.Context, id int64) (*domain.Guide, error) {
	query := `SELECT ` + guideColumns + ` FROM guides WHERE id = $1`

	var guide domain.Guide
	if err := r.db.GetContext(ctx, &guide, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrGuideNotFound
		}
		r.logger.Error("failed to get guide", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("get guide %d: %w", id, err)
	}

	return &guide, nil
}

func (r *guideRepository) FindInBoundingBox(ctx context.Context, bbox domain.BoundingBox, language string, limit int) ([]*domain.Guide, error) {
	query := `
		SELECT ` + guideColumns + `
		FROM guides
		WHERE language = $1
		  AND latitude BETWEEN $2 AND $3
		  AND longitude BETWEEN $4 AND $5
		ORDER BY id
		LIMIT $6
	`

	guides := make([]*domain.Guide, 0)
	err := r.db.SelectContext(ctx, &guides, query,
		language,
		bbox.MinLat, bbox.MaxLat,
		bbox.MinLon, bbox.MaxLon,
		clampLimit(limit, MaxQueryLimit),
	)
	if err != nil {
		r.logger.Error("failed to find guides in bbox",
			zap.String("language", language),
			zap.Any("bbox", bbox),
			zap.Error(err))
		return nil, fmt.Errorf("find guides in bbox: %w", err)
	}

	return guides, nil
}

func (r *guideRepository) Tags(ctx context.Context, language string) ([]string, error) {
	query := `
		SELECT DISTINCT t.tag
		FROM guides g, unnest(g.tags) AS t(tag)
		WHERE g.language = $1 AND t.tag <> ''
		ORDER BY t.tag
	`

	tags := make([]string, 0)
	if err := r.db.SelectContext(ctx, &tags, query, language); err != nil {
		r.logger.Error("failed to list tags", zap.String("language", language), zap.Error(err))
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return tags, nil
}

func (r *guideRepository) IncrementPlays(ctx context.Context, id int64, delta int64) (int64, error) {
	query := `UPDATE guides SET nrplays = nrplays + $2 WHERE id = $1 RETURNING nrplays`

	var plays int64
	if err := r.db.QueryRowxContext(ctx, query, id, delta).Scan(&plays); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.ErrGuideNotFound
		}
		r.logger.Error("failed to increment plays", zap.Int64("id", id), zap.Error(err))
		return 0, fmt.Errorf("increment plays %d: %w", id, err)
	}

	return plays, nil
}

func (r *guideRepository) IncrementPlaysBatch(ctx context.Context, deltas map[int64]int64) error {
	if len(deltas) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	// Stable row lock order across concurrent workers
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	counts := make([]int64, len(ids))
	for i, id := range ids {
		counts[i] = deltas[id]
	}

	query := `
		UPDATE guides AS g
		SET nrplays = g.nrplays + d.delta
		FROM unnest($1::bigint[], $2::bigint[]) AS d(id, delta)
		WHERE g.id = d.id
	`

	res, err := r.db.ExecContext(ctx, query, pq.Array(ids), pq.Array(counts))
	if err != nil {
		r.logger.Error("failed to apply play batch", zap.Int("guides", len(ids)), zap.Error(err))
		return fmt.Errorf("increment plays batch: %w", err)
	}

	if affected, err := res.RowsAffected(); err == nil && int(affected) != len(ids) {
		r.logger.Warn("play batch referenced unknown guides",
			zap.Int("requested", len(ids)),
			zap.Int64("updated", affected))
	}

	return nil
}
