package timerange

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var periodPattern = regexp.MustCompile(`^(\d+)([hdw])$`)

var periodUnits = map[string]time.Duration{
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// ParsePeriod converts a relative period such as "24h", "14d" or "2w" to a
// duration
func ParsePeriod(period string) (time.Duration, error) {
	match := periodPattern.FindStringSubmatch(period)
	if match == nil {
		return 0, fmt.Errorf("invalid period %q: expected <number><h|d|w>", period)
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("invalid period %q: %w", period, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid period %q: must be positive", period)
	}
	return time.Duration(n) * periodUnits[match[2]], nil
}
