package utils

import "strings"

// SupportedLanguages are the display languages guides are published in.
var SupportedLanguages = []string{"en", "fr", "pt"}

// NormalizeLanguage lower-cases and trims a language code and reports whether
// it is supported. Browsers request guides with upper-case codes and tags with
// lower-case ones; storage always uses the lower-case form.
func NormalizeLanguage(code string) (string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range SupportedLanguages {
		if l == code {
			return code, true
		}
	}
	return "", false
}
