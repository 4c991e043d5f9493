package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/audioguide-discovery/internal/config"
	"github.com/audioguide-discovery/internal/domain"
	"github.com/audioguide-discovery/internal/domain/repository"
	"go.uber.org/zap"
)

const placeTypes = "place,locality,neighborhood,poi"

type client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	logger      *zap.Logger
}

// NewMapboxClient creates a forward geocoder over the Mapbox Geocoding API
func NewMapboxClient(cfg *config.MapboxConfig, logger *zap.Logger) repository.Geocoder {
	return &client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		logger:      logger,
	}
}

type geocodingResponse struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	PlaceName string    `json:"place_name"`
	PlaceType []string  `json:"place_type"`
	Center    []float64 `json:"center"`
	Context   []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"context"`
}

// Forward resolves free text into places
func (c *client) Forward(ctx context.Context, text string, limit int) ([]*domain.Place, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []*domain.Place{}, nil
	}
	if c.accessToken == "" {
		return nil, fmt.Errorf("mapbox access token is not configured")
	}

	q := url.Values{}
	q.Set("access_token", c.accessToken)
	q.Set("types", placeTypes)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s",
		c.baseURL, url.PathEscape(text), q.Encode())

	c.logger.Debug("Calling Mapbox Geocoding API",
		zap.String("text", text),
		zap.Int("limit", limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Mapbox API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("mapbox API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var geo geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	places := make([]*domain.Place, 0, len(geo.Features))
	for _, f := range geo.Features {
		if len(f.Center) != 2 {
			continue
		}
		places = append(places, featureToPlace(f))
	}

	c.logger.Debug("Mapbox Geocoding API call successful", zap.Int("places", len(places)))

	return places, nil
}

// featureToPlace maps a feature; Mapbox puts longitude first in center.
func featureToPlace(f feature) *domain.Place {
	p := &domain.Place{
		Name:      f.Text,
		Longitude: f.Center[0],
		Latitude:  f.Center[1],
	}

	for _, t := range f.PlaceType {
		if t == "place" {
			p.City = f.Text
		}
	}
	for _, c := range f.Context {
		switch {
		case strings.HasPrefix(c.ID, "place.") && p.City == "":
			p.City = c.Text
		case strings.HasPrefix(c.ID, "country."):
			p.Country = c.Text
		}
	}

	return p
}
