package dto

import (
	"github.com/audioguide-discovery/internal/domain"
	"github.com/audioguide-discovery/internal/pkg/utils"
)

// GuidesResponse - body of GET /guides
type GuidesResponse struct {
	Guides []*domain.Guide `json:"guides"`
}

// TagsResponse - body of GET /tags
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// LocationResult - one row of GET /locations
type LocationResult struct {
	Name        string `json:"name"`
	City        string `json:"city"`
	Coordinates string `json:"coordinates"`
}

// NewLocationResult renders a place with coordinates as "lat,lon"
func NewLocationResult(p *domain.Place) LocationResult {
	return LocationResult{
		Name:        p.Name,
		City:        p.City,
		Coordinates: utils.FormatCoordinatePair(p.Latitude, p.Longitude),
	}
}

// PlayResponse - body of POST /guides/{id}/play
type PlayResponse struct {
	Status string `json:"status"`
}

// HealthResponse - body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
