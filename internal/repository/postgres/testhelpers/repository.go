package testhelpers

import (
	"github.com/audioguide-discovery/internal/domain/repository"
	"github.com/audioguide-discovery/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewGuideRepositoryForTest creates a guide repository with test database and logger
func NewGuideRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.GuideRepository {
	return postgres.NewGuideRepository(NewDBForTest(db, logger))
}

// NewMediaRepositoryForTest creates a media repository with test database and logger
func NewMediaRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.MediaRepository {
	return postgres.NewMediaRepository(NewDBForTest(db, logger))
}

// NewLocationRepositoryForTest creates a location repository with test database and logger
func NewLocationRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.LocationRepository {
	return postgres.NewLocationRepository(NewDBForTest(db, logger))
}

// NewStatsRepositoryForTest creates a stats repository with test database and logger
func NewStatsRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.StatsRepository {
	return postgres.NewStatsRepository(NewDBForTest(db, logger), logger)
}
