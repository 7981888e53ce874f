// Package slot defines the aggregation key over which reservation
// capacity is enforced, and the time normalization that produces it.
package slot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var timePattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// Key identifies one bookable slot. Committed party sizes are summed
// per Key and must never exceed the restaurant's capacity.
type Key struct {
	RestaurantID string
	Date         string // YYYY-MM-DD
	Time         string // HH:00, already rounded
}

// RoundToHour normalizes an HH:MM 24-hour time to the nearest hour.
// Minutes >= 30 round up, wrapping 23:xx to 00:00. The wrap does not
// carry into the booking date; whether it should is unresolved, so the
// original same-date behavior is kept. Rounding is idempotent. ok is
// false for malformed or out-of-range input.
func RoundToHour(t string) (string, bool) {
	if !timePattern.MatchString(t) {
		return "", false
	}
	parts := strings.SplitN(t, ":", 2)
	hour, _ := strconv.Atoi(parts[0])
	minute, _ := strconv.Atoi(parts[1])
	if hour > 23 || minute > 59 {
		return "", false
	}
	if minute >= 30 {
		hour = (hour + 1) % 24
	}
	return fmt.Sprintf("%02d:00", hour), true
}
