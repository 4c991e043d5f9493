package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateCoordinates reports whether lat/lon are inside WGS84 bounds.
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// FormatCoordinatePair renders the "lat,lon" wire form used by /locations.
func FormatCoordinatePair(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}

// ParseCoordinatePair parses "lat,lon". Both parts are required.
func ParseCoordinatePair(s string) (lat, lon float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("coordinate pair %q: want \"lat,lon\"", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("coordinate pair %q: latitude: %w", s, err)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("coordinate pair %q: longitude: %w", s, err)
	}
	if !ValidateCoordinates(lat, lon) {
		return 0, 0, fmt.Errorf("coordinate pair %q: out of range", s)
	}
	return lat, lon, nil
}
