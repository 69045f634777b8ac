package statschart

import (
	"time"

	"github.com/chris/orgstats/internal/params"
	"github.com/chris/orgstats/internal/timerange"
)

// Actions are the owner's durable state mutations
type Actions struct {
	UpdateParams func(params.Params)
}

// Props is what the owning page passes to the chart on every update
type Props struct {
	Organization string
	Category     string
	Period       string
	Start        time.Time
	End          time.Time
	UTC          bool
	// Zooming is set by the owner while a zoom gesture awaits its commit
	Zooming bool
	OnZoom  func(timerange.Snapshot)
	Actions Actions
}

// Range returns the range the props describe
func (p Props) Range() timerange.Range {
	return timerange.Range{Period: p.Period, Start: p.Start, End: p.End}
}

// ShouldUpdate reports whether moving from prev to next needs a refetch and
// redraw. Nothing is redrawn while a zoom is in flight, or when the period
// and both bounds are unchanged; bounds compare by instant.
func ShouldUpdate(prev, next Props) bool {
	if next.Zooming {
		return false
	}
	return !prev.Range().Equal(next.Range())
}
