package stats

import (
	"fmt"
	"time"

	"github.com/chris/orgstats/internal/timerange"
	"github.com/chris/orgstats/pkg/models"
)

// BucketBy sums event quantities into one bucket per interval covering
// [start, end]. Buckets are aligned to interval boundaries in loc and every
// bucket in the window is present, zero-filled when nothing happened in it.
func BucketBy(events []models.Event, interval timerange.Interval, loc *time.Location, start, end time.Time) []models.Bucket {
	if loc == nil {
		loc = time.Local
	}
	if end.Before(start) {
		return nil
	}

	first := interval.Truncate(start, loc)
	index := make(map[int64]int)
	var buckets []models.Bucket
	for t := first; !t.After(end); t = interval.Next(t) {
		index[t.Unix()] = len(buckets)
		buckets = append(buckets, models.Bucket{Timestamp: t.Unix()})
	}

	for _, ev := range events {
		at := time.Unix(ev.Timestamp, 0)
		if at.Before(start) || at.After(end) {
			continue
		}
		key := interval.Truncate(at, loc).Unix()
		if i, ok := index[key]; ok {
			buckets[i].Count += ev.Quantity
		}
	}

	return buckets
}

// Total returns the summed count of all buckets
func Total(buckets []models.Bucket) int64 {
	var total int64
	for _, b := range buckets {
		total += b.Count
	}
	return total
}

// Peak returns the bucket with the highest count. ok is false for an empty
// series.
func Peak(buckets []models.Bucket) (peak models.Bucket, ok bool) {
	for i, b := range buckets {
		if i == 0 || b.Count > peak.Count {
			peak = b
			ok = true
		}
	}
	return peak, ok
}

// FormatHour formats an hour as "8am", "2pm", "12pm", "12am"
func FormatHour(hour int) string {
	if hour == 0 {
		return "12am"
	} else if hour < 12 {
		return fmt.Sprintf("%dam", hour)
	} else if hour == 12 {
		return "12pm"
	} else {
		return fmt.Sprintf("%dpm", hour-12)
	}
}

// FormatBucket labels a bucket start for the given interval: hour-of-day for
// hourly series ("Jan 2 3pm"), the date for daily ones ("Jan 2")
func FormatBucket(t time.Time, interval timerange.Interval) string {
	if interval == timerange.Hourly {
		return fmt.Sprintf("%s %s", t.Format("Jan 2"), FormatHour(t.Hour()))
	}
	return t.Format("Jan 2")
}
