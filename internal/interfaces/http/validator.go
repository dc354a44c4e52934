package http

import (
	"strings"
	"unicode/utf8"
)

// Input limits
const (
	MaxPromptLength  = 50000
	MaxMessageLength = 10000
	MaxNameLength    = 255
	MinPasswordLen   = 6
)

// SanitizeString removes null bytes and invalid UTF-8.
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r != utf8.RuneError {
				v = append(v, r)
			}
		}
		s = string(v)
	}
	return s
}

// ValidateLength checks that s has between min and max characters.
func ValidateLength(s string, min, max int) bool {
	l := utf8.RuneCountInString(s)
	return l >= min && l <= max
}

// sanitizePtr cleans an optional field in place.
func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := SanitizeString(*s)
	return &clean
}
