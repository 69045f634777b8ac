// Package params holds the query state of a chart: the range the user is
// looking at, encoded the same way a URL query would carry it.
package params

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/chris/orgstats/internal/timerange"
)

// Query keys
const (
	KeyStatsPeriod = "statsPeriod"
	KeyStart       = "start"
	KeyEnd         = "end"
	KeyUTC         = "utc"
	KeyZoom        = "zoom"
)

// Params is the persisted query state of one organization's chart
type Params struct {
	StatsPeriod string
	Start       string
	End         string
	UTC         bool
	Zoom        bool
}

// FromSnapshot builds the params written when a zoomed range is committed
func FromSnapshot(s timerange.Snapshot) Params {
	return Params{
		StatsPeriod: s.Period,
		Start:       s.Start,
		End:         s.End,
		Zoom:        true,
	}
}

// Values returns the params as url.Values, omitting empty keys
func (p Params) Values() url.Values {
	v := url.Values{}
	if p.StatsPeriod != "" {
		v.Set(KeyStatsPeriod, p.StatsPeriod)
	}
	if p.Start != "" {
		v.Set(KeyStart, p.Start)
	}
	if p.End != "" {
		v.Set(KeyEnd, p.End)
	}
	if p.UTC {
		v.Set(KeyUTC, "true")
	}
	if p.Zoom {
		v.Set(KeyZoom, "1")
	}
	return v
}

// Encode returns the params as a query string with sorted keys
func (p Params) Encode() string {
	return p.Values().Encode()
}

// Parse reads params from a query string
func Parse(query string) (Params, error) {
	v, err := url.ParseQuery(query)
	if err != nil {
		return Params{}, fmt.Errorf("failed to parse query: %w", err)
	}

	p := Params{
		StatsPeriod: v.Get(KeyStatsPeriod),
		Start:       v.Get(KeyStart),
		End:         v.Get(KeyEnd),
		Zoom:        v.Get(KeyZoom) == "1",
	}
	if raw := v.Get(KeyUTC); raw != "" {
		utc, err := strconv.ParseBool(raw)
		if err != nil {
			return Params{}, fmt.Errorf("invalid %s value %q: %w", KeyUTC, raw, err)
		}
		p.UTC = utc
	}
	return p, nil
}

// Snapshot returns the range part of the params
func (p Params) Snapshot() timerange.Snapshot {
	return timerange.Snapshot{Period: p.StatsPeriod, Start: p.Start, End: p.End}
}

// Range parses the range part of the params
func (p Params) Range() (timerange.Range, error) {
	return p.Snapshot().Range()
}

// IsZero reports whether no range is set
func (p Params) IsZero() bool {
	return p.StatsPeriod == "" && p.Start == "" && p.End == ""
}
