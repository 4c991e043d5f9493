// Package ipapi resolves an approximate position from the public IP address
// through ip-api.com.
package ipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/audioguide-discovery/internal/discovery"
	"github.com/audioguide-discovery/internal/pkg/utils"
)

const (
	DefaultBaseURL = "http://ip-api.com"
	fields         = "status,message,lat,lon,city"
)

type lookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

// Geolocator is a discovery.Geolocator backed by ip-api.com.
type Geolocator struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

var _ discovery.Geolocator = (*Geolocator)(nil)

func NewGeolocator(baseURL string, timeout time.Duration, logger *zap.Logger) *Geolocator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Geolocator{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// Locate looks up the caller's IP. Any failure, transport included, is
// reported as discovery.ErrPositionUnavailable.
func (g *Geolocator) Locate(ctx context.Context) (discovery.Coordinate, error) {
	endpoint := g.baseURL + "/json/?fields=" + fields

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return discovery.Coordinate{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return discovery.Coordinate{}, ctx.Err()
		}
		g.logger.Warn("IP geolocation request failed", zap.Error(err))
		return discovery.Coordinate{}, fmt.Errorf("%w: %v", discovery.ErrPositionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		g.logger.Warn("IP geolocation returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return discovery.Coordinate{}, fmt.Errorf("%w: status %d", discovery.ErrPositionUnavailable, resp.StatusCode)
	}

	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return discovery.Coordinate{}, fmt.Errorf("%w: failed to decode response: %v", discovery.ErrPositionUnavailable, err)
	}
	if out.Status != "success" {
		return discovery.Coordinate{}, fmt.Errorf("%w: %s", discovery.ErrPositionUnavailable, out.Message)
	}
	if !utils.ValidateCoordinates(out.Lat, out.Lon) {
		return discovery.Coordinate{}, fmt.Errorf("%w: coordinates out of range", discovery.ErrPositionUnavailable)
	}

	g.logger.Debug("IP geolocation resolved",
		zap.String("city", out.City),
		zap.Float64("lat", out.Lat),
		zap.Float64("lon", out.Lon))

	return discovery.Coordinate{Latitude: out.Lat, Longitude: out.Lon}, nil
}
