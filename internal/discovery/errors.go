package discovery

import "errors"

var (
	// ErrNoAudio is returned when playback is requested without a bound recording.
	ErrNoAudio = errors.New("guide has no audio")

	ErrPermissionDenied    = errors.New("location permission denied")
	ErrUnsupported         = errors.New("geolocation not supported")
	ErrPositionUnavailable = errors.New("position unavailable")

	ErrGuideNotFound = errors.New("guide not in current list")
	ErrClosed        = errors.New("coordinator closed")
)
