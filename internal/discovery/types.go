// Package discovery holds the client-side state of the guide browser: where
// the user is, which guides are around, how they are filtered and sorted, and
// which guide is open and playing.
package discovery

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GuideID identifies a guide. The wire form may be a JSON number or string.
type GuideID string

func (id *GuideID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("guide id: %w", err)
		}
		*id = GuideID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("guide id: %w", err)
	}
	*id = GuideID(n.String())
	return nil
}

func (id GuideID) String() string {
	return string(id)
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Guide is a snapshot of one guide as served by GET /guides.
type Guide struct {
	ID            GuideID  `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title"`
	Description   string   `json:"guide"`
	Tags          []string `json:"tags"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Plays         *int64   `json:"nrplays,omitempty"`
	Distance      *float64 `json:"distance,omitempty"` // meters
	City          string   `json:"city,omitempty"`
	Language      string   `json:"language,omitempty"`
}

// PlayCount returns the play count, 0 when unknown.
func (g Guide) PlayCount() int64 {
	if g.Plays == nil {
		return 0
	}
	return *g.Plays
}

// Coordinate returns the guide position if both parts are present.
func (g Guide) Coordinate() (Coordinate, bool) {
	if g.Latitude == nil || g.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: *g.Latitude, Longitude: *g.Longitude}, true
}

// HasTag reports whether the guide carries tag.
func (g Guide) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (g Guide) clone() Guide {
	c := g
	if g.Tags != nil {
		c.Tags = append([]string(nil), g.Tags...)
	}
	if g.Plays != nil {
		n := *g.Plays
		c.Plays = &n
	}
	return c
}

// NearMeLabel labels the option standing for the live device position.
const NearMeLabel = "📍 Near me"

// LocationOption is an entry of the location picker. A nil Coordinate means
// "use my live position".
type LocationOption struct {
	Label      string
	Coordinate *Coordinate
}

// IsNearMe reports whether the option is the live-position sentinel.
func (o LocationOption) IsNearMe() bool {
	return o.Label == NearMeLabel
}

// NearMe builds the sentinel option carrying the live position when known.
func NearMe(live *Coordinate) LocationOption {
	opt := LocationOption{Label: NearMeLabel}
	if live != nil {
		c := *live
		opt.Coordinate = &c
	}
	return opt
}

// TagOption is a selectable filter tag.
type TagOption struct {
	Label string
	Value string
}

// MediaBundle holds the photos and audio of one guide. Audio is empty when
// the guide has no recording.
type MediaBundle struct {
	Photos []string
	Audio  string
}

// SortMode orders the visible guides.
type SortMode string

const (
	SortClosest    SortMode = "closest"
	SortPopularity SortMode = "popularity"
)

// Tab is the active view.
type Tab string

const (
	TabList Tab = "list"
	TabMap  Tab = "map"
)

// PlaybackState of the bound audio.
type PlaybackState string

const (
	PlaybackIdle    PlaybackState = "idle"
	PlaybackPlaying PlaybackState = "playing"
)

// Status summarises what the guide list should show.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusEmpty   Status = "empty"
	StatusReady   Status = "ready"
)

// GeoStatus is the outcome of the one-shot position lookup.
type GeoStatus string

const (
	GeoPending          GeoStatus = "pending"
	GeoAvailable        GeoStatus = "available"
	GeoPermissionDenied GeoStatus = "permission_denied"
	GeoUnsupported      GeoStatus = "unsupported"
	GeoUnavailable      GeoStatus = "unavailable"
)

// Position is the result of GeolocationProvider.Acquire.
type Position struct {
	Coordinate *Coordinate
	Status     GeoStatus
	Message    string
}

// NormalizeLanguage lower-cases and trims a language code.
func NormalizeLanguage(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
