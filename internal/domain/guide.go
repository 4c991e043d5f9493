package domain

import "github.com/lib/pq"

// Guide is a single-location audio guide as stored in Postgres.
type Guide struct {
	ID            int64          `json:"id" db:"id"`
	Title         string         `json:"title" db:"title"`
	OriginalTitle string         `json:"original_title" db:"original_title"`
	Description   string         `json:"guide" db:"description"`
	Tags          pq.StringArray `json:"tags" db:"tags"`
	Latitude      float64        `json:"latitude" db:"latitude"`
	Longitude     float64        `json:"longitude" db:"longitude"`
	PlayCount     int64          `json:"nrplays" db:"nrplays"`
	City          string         `json:"city" db:"city"`
	Language      string         `json:"language" db:"language"`

	// Distance in meters from the requested point. Computed, never stored.
	Distance *float64 `json:"distance,omitempty" db:"-"`
}

// CityGuideCount is one row of the landing page "available guides" table.
type CityGuideCount struct {
	City          string `json:"city" db:"city"`
	NrAudioGuides int    `json:"nraudioguides" db:"nraudioguides"`
}
