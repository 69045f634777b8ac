package timerange

import (
	"strings"
	"time"
)

// Interval is the bucket size of a plotted series
type Interval int

const (
	Hourly Interval = iota
	Daily
)

// SelectInterval picks the chart granularity for a range. Periods in hours,
// the one-day period and absolute ranges up to and including 24 hours are
// hourly; everything else is daily.
func SelectInterval(r Range) Interval {
	if r.IsRelative() {
		if strings.HasSuffix(r.Period, "h") || r.Period == "1d" {
			return Hourly
		}
		return Daily
	}
	if r.End.Sub(r.Start) <= 24*time.Hour {
		return Hourly
	}
	return Daily
}

// Unit returns the length of one bucket
func (i Interval) Unit() time.Duration {
	if i == Hourly {
		return time.Hour
	}
	return 24 * time.Hour
}

// String returns the interval as a query parameter ("1h" or "1d")
func (i Interval) String() string {
	if i == Hourly {
		return "1h"
	}
	return "1d"
}

// Truncate aligns t to the start of its bucket in loc
func (i Interval) Truncate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	if i == Hourly {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Next returns the start of the bucket after the one starting at t
func (i Interval) Next(t time.Time) time.Time {
	if i == Hourly {
		return t.Add(time.Hour)
	}
	return t.AddDate(0, 0, 1)
}
