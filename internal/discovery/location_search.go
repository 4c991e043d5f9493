package discovery

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/audioguide-discovery/internal/pkg/utils"
)

// LocationSearchService turns typed text into location options. Search is
// debounced and only the newest call's result is ever delivered.
type LocationSearchService struct {
	source    LocationSource
	live      func() *Coordinate
	delay     time.Duration
	debouncer Debouncer
	logger    *zap.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc

	// serialises delivery so a stale result cannot land after a newer one
	deliverMu sync.Mutex
}

// NewLocationSearchService creates the service. live supplies the coordinate
// carried by the near-me option and may be nil.
func NewLocationSearchService(source LocationSource, live func() *Coordinate, delay time.Duration, logger *zap.Logger) *LocationSearchService {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	if live == nil {
		live = func() *Coordinate { return nil }
	}
	return &LocationSearchService{
		source: source,
		live:   live,
		delay:  delay,
		logger: logger,
	}
}

// Search schedules a lookup for text and hands the options to deliver,
// unless a later Search supersedes it first.
func (s *LocationSearchService) Search(text string, deliver func([]LocationOption)) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.debouncer.Schedule(s.delay, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.cancel = cancel
		s.mu.Unlock()

		options := s.Lookup(ctx, text)

		s.deliverMu.Lock()
		defer s.deliverMu.Unlock()

		s.mu.Lock()
		current := gen == s.gen
		if current {
			s.cancel = nil
		}
		s.mu.Unlock()

		if !current {
			s.logger.Debug("Discarding superseded location search", zap.String("text", text))
			return
		}
		deliver(options)
	})
}

// Lookup runs one search immediately. The near-me option always comes
// first; blank text or a failing backend yields only that option.
func (s *LocationSearchService) Lookup(ctx context.Context, text string) []LocationOption {
	options := []LocationOption{NearMe(s.live())}

	text = strings.TrimSpace(text)
	if text == "" {
		return options
	}

	rows, err := s.source.SearchLocations(ctx, text)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("Location search failed", zap.String("text", text), zap.Error(err))
		}
		return options
	}

	for _, row := range rows {
		lat, lon, err := utils.ParseCoordinatePair(row.Coordinates)
		if err != nil {
			s.logger.Debug("Skipping location with bad coordinates",
				zap.String("name", row.Name),
				zap.String("coordinates", row.Coordinates))
			continue
		}

		label := row.City
		if label == "" {
			label = row.Name
		}
		options = append(options, LocationOption{
			Label:      label,
			Coordinate: &Coordinate{Latitude: lat, Longitude: lon},
		})
	}

	return options
}

// Stop cancels a pending or in-flight search.
func (s *LocationSearchService) Stop() {
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.debouncer.Stop()
}

// Wait blocks until no search is pending or running.
func (s *LocationSearchService) Wait() {
	s.debouncer.Wait()
}
