package handlers

import (
	"net/mail"
	"strings"
	"time"
)

// Length bounds shared by the post and album validators.
const (
	minTitleLen   = 3
	maxTitleLen   = 200
	maxCommentLen = 2000
	maxMessageLen = 5000
)

// validEmail reports whether addr parses as a bare RFC 5322 address.
func validEmail(addr string) bool {
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}

// clampReadingTime normalises the estimated reading time in minutes,
// falling back to the default when absent or out of range.
func clampReadingTime(minutes int) int {
	if minutes < 1 || minutes > 60 {
		return 5
	}
	return minutes
}

// firstError returns the first non-empty message, or "".
func firstError(msgs ...string) string {
	for _, m := range msgs {
		if m != "" {
			return m
		}
	}
	return ""
}

// parseDate parses an optional YYYY-MM-DD value. nil or empty input is
// fine and yields a nil time.
func parseDate(value *string) (*time.Time, bool) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(*value))
	if err != nil {
		return nil, false
	}
	return &t, true
}

// requireText validates a trimmed free-text field against a max length.
// Returns a French user-facing message or "".
func requireText(value, label string, max int) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return "Le champ « " + label + " » est requis"
	}
	if len(v) > max {
		return "Le champ « " + label + " » est trop long"
	}
	return ""
}
