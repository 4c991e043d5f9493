package discovery

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

const (
	msgPermissionDenied = "Location permission denied"
	msgUnsupported      = "Geolocation not supported"
	msgUnavailable      = "Location unavailable"
)

// GeolocationProvider asks the Geolocator once per lifetime and memoizes
// the answer.
type GeolocationProvider struct {
	locator Geolocator
	logger  *zap.Logger

	once sync.Once
	pos  Position
}

// NewGeolocationProvider wraps locator; a nil locator reports unsupported.
func NewGeolocationProvider(locator Geolocator, logger *zap.Logger) *GeolocationProvider {
	return &GeolocationProvider{
		locator: locator,
		logger:  logger,
	}
}

// Acquire returns the device position. Only the first call reaches the
// Geolocator; concurrent callers wait for it.
func (p *GeolocationProvider) Acquire(ctx context.Context) Position {
	p.once.Do(func() {
		p.pos = p.locate(ctx)
		p.logger.Info("Geolocation resolved",
			zap.String("status", string(p.pos.Status)))
	})
	return p.pos
}

func (p *GeolocationProvider) locate(ctx context.Context) Position {
	if p.locator == nil {
		return Position{Status: GeoUnsupported, Message: msgUnsupported}
	}

	c, err := p.locator.Locate(ctx)
	if err == nil {
		return Position{Coordinate: &c, Status: GeoAvailable}
	}

	p.logger.Warn("Geolocation failed", zap.Error(err))

	switch {
	case errors.Is(err, ErrPermissionDenied):
		return Position{Status: GeoPermissionDenied, Message: msgPermissionDenied}
	case errors.Is(err, ErrUnsupported):
		return Position{Status: GeoUnsupported, Message: msgUnsupported}
	default:
		return Position{Status: GeoUnavailable, Message: msgUnavailable}
	}
}

// StaticGeolocator answers with a fixed coordinate, or unsupported when nil.
type StaticGeolocator struct {
	Coordinate *Coordinate
}

func (g StaticGeolocator) Locate(ctx context.Context) (Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return Coordinate{}, err
	}
	if g.Coordinate == nil {
		return Coordinate{}, ErrUnsupported
	}
	return *g.Coordinate, nil
}
