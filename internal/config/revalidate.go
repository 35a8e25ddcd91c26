package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

// ParseFrequency converts a revalidation token such as "1h", "2d" or "1w"
// into a duration. Zero and negative durations are rejected.
func ParseFrequency(token string) (time.Duration, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidFrequency)
	}
	d, err := str2duration.ParseDuration(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidFrequency, token, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidFrequency, token)
	}
	return d, nil
}

// ShouldRevalidate reports whether the config last revalidated at
// lastRevalidate (RFC 3339) is due again at now. A missing or unparsable
// timestamp is always due. An invalid frequency falls back to
// DefaultRevalidateFrequency.
func ShouldRevalidate(lastRevalidate, frequency string, now time.Time) bool {
	if strings.TrimSpace(lastRevalidate) == "" {
		return true
	}
	last, err := time.Parse(time.RFC3339, lastRevalidate)
	if err != nil {
		return true
	}

	d, err := ParseFrequency(frequency)
	if err != nil {
		d, _ = ParseFrequency(DefaultRevalidateFrequency)
	}
	return now.Sub(last) >= d
}

// FormatRevalidate renders t the way configLastRevalidate is stored.
func FormatRevalidate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
