package postgres

import "strings"

// Query limits
const (
	// DefaultQueryLimit - limit used when the caller passes 0
	DefaultQueryLimit = 100
	// MaxQueryLimit - hard cap for any list query
	MaxQueryLimit = 1000
	// DefaultLocationLimit - location search results
	DefaultLocationLimit = 10
)

// clampLimit keeps limit within (0, MaxQueryLimit]
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching text anywhere, with wildcards in text escaped
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(text)) + "%"
}

// prefixPattern builds a LIKE pattern matching values starting with text
func prefixPattern(text string) string {
	return likeEscaper.Replace(strings.TrimSpace(text)) + "%"
}
