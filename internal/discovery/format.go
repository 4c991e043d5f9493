package discovery

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FormatPlays renders a play count the way guide cards show it.
func FormatPlays(n int64) string {
	if n >= 1000 {
		return fmt.Sprintf("%.1fK plays", float64(n)/1000)
	}
	return fmt.Sprintf("%d plays", n)
}

// FormatDistance renders meters, switching to km from 1000 m.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return strconv.FormatFloat(meters, 'f', -1, 64) + " m"
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// NavigationURL links to a map search for the guide, empty without a position.
func NavigationURL(g Guide) string {
	c, ok := g.Coordinate()
	if !ok {
		return ""
	}
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", strconv.FormatFloat(c.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(c.Longitude, 'f', -1, 64))
	return "https://www.google.com/maps/search/?" + q.Encode()
}

// Excerpt keeps the first n words of text, marking a cut with "...".
func Excerpt(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
