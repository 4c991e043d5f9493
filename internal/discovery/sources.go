package discovery

import (
	"context"
	"sync"
)

// RemoteLocation is one row of GET /locations.
type RemoteLocation struct {
	Name        string `json:"name"`
	City        string `json:"city"`
	Coordinates string `json:"coordinates"` // "lat,lon"
}

type LocationSource interface {
	SearchLocations(ctx context.Context, text string) ([]RemoteLocation, error)
}

type TagSource interface {
	Tags(ctx context.Context, language string) ([]string, error)
}

type GuideSource interface {
	Guides(ctx context.Context, at Coordinate, language string) ([]Guide, error)
}

type MediaSource interface {
	Media(ctx context.Context, id GuideID) (MediaBundle, error)
}

type PlayCounter interface {
	IncrementPlays(ctx context.Context, id GuideID) error
}

// Remote is everything the coordinator needs from the backend.
type Remote interface {
	LocationSource
	TagSource
	GuideSource
	MediaSource
	PlayCounter
}

// Geolocator resolves the device position once. Implementations report
// ErrPermissionDenied, ErrUnsupported or ErrPositionUnavailable.
type Geolocator interface {
	Locate(ctx context.Context) (Coordinate, error)
}

// LanguageStore persists the display language across sessions.
type LanguageStore interface {
	Language() string
	SetLanguage(code string) error
}

// AudioResource is one loaded recording.
type AudioResource interface {
	Play() error
	Pause() error
	// SetOnEnded registers the natural end-of-media callback; nil detaches it.
	SetOnEnded(fn func())
	Close() error
}

// AudioFactory opens a recording by URL.
type AudioFactory func(url string) (AudioResource, error)

// MemoryLanguageStore keeps the language in memory only.
type MemoryLanguageStore struct {
	mu   sync.Mutex
	code string
}

func NewMemoryLanguageStore(code string) *MemoryLanguageStore {
	return &MemoryLanguageStore{code: code}
}

func (s *MemoryLanguageStore) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

func (s *MemoryLanguageStore) SetLanguage(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = code
	return nil
}
