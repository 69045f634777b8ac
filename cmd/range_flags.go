package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chris/orgstats/internal/params"
	"github.com/chris/orgstats/internal/stats"
	"github.com/chris/orgstats/internal/timerange"
)

// rangeFlags are the query flags shared by stats, chart and export
type rangeFlags struct {
	period   string
	start    string
	end      string
	category string
	utc      bool
	previous bool
}

func (f *rangeFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.period, "period", "", "Relative period ending now, e.g. 24h, 7d, 2w")
	c.Flags().StringVar(&f.start, "start", "", "Range start ("+timerange.Layout+" in UTC, RFC3339 or YYYY-MM-DD)")
	c.Flags().StringVar(&f.end, "end", "", "Range end (same formats as --start)")
	c.Flags().StringVar(&f.category, "category", "", "Only count events of this category")
	c.Flags().BoolVar(&f.utc, "utc", false, "Bucket and label times in UTC")
	c.Flags().BoolVar(&f.previous, "previous", false, "Include the previous window of the same length")

	c.MarkFlagsMutuallyExclusive("period", "start")
	c.MarkFlagsMutuallyExclusive("period", "end")
	c.MarkFlagsRequiredTogether("start", "end")
}

// params returns the query state given on the command line. ok is false
// when no range flag was set.
func (f *rangeFlags) params() (p params.Params, ok bool, err error) {
	if f.period == "" && f.start == "" && f.end == "" {
		return params.Params{UTC: f.utc}, false, nil
	}

	var r timerange.Range
	if f.period != "" {
		r = timerange.Relative(f.period)
	} else {
		start, err := timerange.ParseTime(f.start)
		if err != nil {
			return params.Params{}, false, fmt.Errorf("invalid --start: %w", err)
		}
		end, err := timerange.ParseTime(f.end)
		if err != nil {
			return params.Params{}, false, fmt.Errorf("invalid --end: %w", err)
		}
		r = timerange.Absolute(start, end)
	}
	if err := r.Validate(); err != nil {
		return params.Params{}, false, fmt.Errorf("invalid range: %w", err)
	}

	s := r.Snapshot()
	return params.Params{StatsPeriod: s.Period, Start: s.Start, End: s.End, UTC: f.utc}, true, nil
}

// resolveParams picks the query state for org: command-line flags, then the
// persisted params, then the configured default period
func (f *rangeFlags) resolveParams(store *params.Store, org string) (params.Params, error) {
	p, ok, err := f.params()
	if err != nil || ok {
		return p, err
	}

	stored, found, err := store.Load(org)
	if err != nil {
		return params.Params{}, err
	}
	if found && !stored.IsZero() {
		stored.UTC = stored.UTC || f.utc
		return stored, nil
	}

	return params.Params{StatsPeriod: defaultPeriod(), UTC: f.utc}, nil
}

// request builds the fetch request for org over p
func (f *rangeFlags) request(org string, p params.Params) (stats.Request, error) {
	r, err := p.Range()
	if err != nil {
		return stats.Request{}, fmt.Errorf("invalid range: %w", err)
	}
	if err := r.Validate(); err != nil {
		return stats.Request{}, fmt.Errorf("invalid range: %w", err)
	}

	return stats.Request{
		Interval: timerange.SelectInterval(r),
		Query: stats.Query{
			Organization: org,
			Category:     f.category,
		},
		Range:           r,
		UTC:             p.UTC || (cfg != nil && cfg.UTC),
		IncludePrevious: f.previous || (cfg != nil && cfg.Chart.IncludePrevious),
	}, nil
}

func newParamsStore() *params.Store {
	return params.NewStore("")
}
