package postgres

import (
	"context"
	"fmt"

	"github.com/audioguide-discovery/internal/domain"
	"github.com/audioguide-discovery/internal/domain/repository"
	"go.uber.org/zap"
)

type mediaRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMediaRepository creates a MediaRepository backed by Postgres
func NewMediaRepository(db *DB) repository.MediaRepository {
	return &mediaRepository{
		db:     db,
		logger: db.logger,
	}
}

func (r *mediaRepository) ListByGuide(ctx context.Context, guideID int64) ([]domain.MediaItem, error) {
	query := `
		SELECT guide_id, kind, url, position
		FROM guide_media
		WHERE guide_id = $1
		ORDER BY kind, position
	`

	items := make([]domain.MediaItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, guideID); err != nil {
		r.logger.Error("failed to list media", zap.Int64("guide_id", guideID), zap.Error(err))
		return nil, fmt.Errorf("list media for guide %d: %w", guideID, err)
	}

	return items, nil
}
