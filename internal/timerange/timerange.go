// Package timerange models the time window a chart is looking at. A range is
// either relative (a period such as "14d" counted back from now) or absolute
// (explicit start and end instants).
package timerange

import (
	"fmt"
	"time"
)

// Layout is the canonical date-time form used for query state and equality:
// UTC, second precision, no offset.
const Layout = "2006-01-02T15:04:05"

// Range is a relative or absolute time window. A zero time.Time means unset.
type Range struct {
	Period string
	Start  time.Time
	End    time.Time
}

// Snapshot is the canonical string form of a Range
type Snapshot struct {
	Period string
	Start  string
	End    string
}

// Relative returns a range covering period back from now
func Relative(period string) Range {
	return Range{Period: period}
}

// Absolute returns a range between two instants
func Absolute(start, end time.Time) Range {
	return Range{Start: start, End: end}
}

// IsRelative reports whether the range is a period
func (r Range) IsRelative() bool {
	return r.Period != ""
}

// IsAbsolute reports whether the range has explicit bounds
func (r Range) IsAbsolute() bool {
	return r.Period == "" && !r.Start.IsZero() && !r.End.IsZero()
}

// Format renders t in the canonical layout
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(Layout)
}

// ParseTime parses the canonical layout, RFC3339 or a bare date. Values
// without an offset are read as UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range []string{Layout, time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: expected %s, RFC3339 or YYYY-MM-DD", s, Layout)
}

// Normalize returns the range with bounds in UTC truncated to the second.
// Relative ranges drop any bounds.
func (r Range) Normalize() Range {
	if r.IsRelative() {
		return Range{Period: r.Period}
	}
	return Range{
		Start: truncate(r.Start),
		End:   truncate(r.End),
	}
}

func truncate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Second)
}

// Snapshot returns the canonical string form of the range
func (r Range) Snapshot() Snapshot {
	n := r.Normalize()
	return Snapshot{
		Period: n.Period,
		Start:  Format(n.Start),
		End:    Format(n.End),
	}
}

// Range parses a snapshot back into a Range
func (s Snapshot) Range() (Range, error) {
	if s.Period != "" {
		return Relative(s.Period), nil
	}
	var r Range
	if s.Start != "" {
		start, err := ParseTime(s.Start)
		if err != nil {
			return Range{}, err
		}
		r.Start = start
	}
	if s.End != "" {
		end, err := ParseTime(s.End)
		if err != nil {
			return Range{}, err
		}
		r.End = end
	}
	return r, nil
}

// Equal compares the range-defining fields. Instants are equal when their
// millisecond timestamps are equal, regardless of location.
func (r Range) Equal(other Range) bool {
	return r.Period == other.Period &&
		sameInstant(r.Start, other.Start) &&
		sameInstant(r.End, other.End)
}

func sameInstant(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return a.IsZero() == b.IsZero()
	}
	return a.UnixMilli() == b.UnixMilli()
}

// Validate checks that the range is either fully relative or fully absolute
// with start <= end
func (r Range) Validate() error {
	if r.IsRelative() {
		if !r.Start.IsZero() || !r.End.IsZero() {
			return fmt.Errorf("period %q cannot be combined with start/end", r.Period)
		}
		if _, err := ParsePeriod(r.Period); err != nil {
			return err
		}
		return nil
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("absolute range needs both start and end")
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("start %s is after end %s", Format(r.Start), Format(r.End))
	}
	return nil
}

// Resolve returns the concrete bounds of the range. Relative periods end at
// now.
func (r Range) Resolve(now time.Time) (time.Time, time.Time, error) {
	if !r.IsRelative() {
		return r.Start, r.End, nil
	}
	d, err := ParsePeriod(r.Period)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return now.Add(-d), now, nil
}

// String returns a short human-readable label
func (r Range) String() string {
	if r.IsRelative() {
		return "Last " + r.Period
	}
	if r.Start.IsZero() && r.End.IsZero() {
		return "(unset)"
	}
	return fmt.Sprintf("%s → %s", Format(r.Start), Format(r.End))
}
