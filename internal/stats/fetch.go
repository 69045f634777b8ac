package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/chris/orgstats/internal/db"
	"github.com/chris/orgstats/internal/timerange"
	"github.com/chris/orgstats/pkg/models"
)

// Query selects which events are counted
type Query struct {
	Organization string
	// Category limits the series to one outcome; empty counts every category
	Category string
}

// Request describes one series load
type Request struct {
	Interval        timerange.Interval
	Query           Query
	Range           timerange.Range
	UTC             bool
	IncludePrevious bool
}

// Location returns the zone buckets are aligned in
func (r Request) Location() *time.Location {
	if r.UTC {
		return time.UTC
	}
	return time.Local
}

// Series is a bucketed window of events
type Series struct {
	Start   time.Time
	End     time.Time
	Buckets []models.Bucket
}

// Result is the answer to a Request
type Result struct {
	Interval timerange.Interval
	Series   Series
	// Previous is the window of equal length immediately before Series.
	// It is nil unless the request asked for it.
	Previous *Series
}

// Fetcher loads series for a request
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Result, error)
}

// DBFetcher loads series from the events database
type DBFetcher struct {
	dbPath string
	now    func() time.Time
	logger *log.Logger
}

// FetcherOption is a functional option for configuring the DBFetcher
type FetcherOption func(*DBFetcher)

// WithNow sets the clock used to resolve relative periods (for testing)
func WithNow(fn func() time.Time) FetcherOption {
	return func(f *DBFetcher) {
		f.now = fn
	}
}

// WithLogger sets the logger used for fetch diagnostics
func WithLogger(l *log.Logger) FetcherOption {
	return func(f *DBFetcher) {
		f.logger = l
	}
}

// NewDBFetcher creates a fetcher reading the database at dbPath
func NewDBFetcher(dbPath string, opts ...FetcherOption) *DBFetcher {
	f := &DBFetcher{
		dbPath: dbPath,
		now:    time.Now,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Window resolves the request's range against now. The end is inclusive.
func Window(req Request, now time.Time) (time.Time, time.Time, error) {
	if err := req.Range.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return req.Range.Resolve(now)
}

// PreviousWindow returns the window of the same length ending one second
// before start
func PreviousWindow(start, end time.Time) (time.Time, time.Time) {
	prevEnd := start.Add(-time.Second)
	return prevEnd.Add(-end.Sub(start)), prevEnd
}

// Fetch loads the requested window, and the previous one when asked, in
// parallel
func (f *DBFetcher) Fetch(ctx context.Context, req Request) (*Result, error) {
	if req.Query.Organization == "" {
		return nil, fmt.Errorf("no organization selected")
	}

	start, end, err := Window(req, f.now())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve range: %w", err)
	}

	database, err := db.New(f.dbPath)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	result := &Result{Interval: req.Interval}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := f.load(ctx, database, req, start, end)
		if err != nil {
			return err
		}
		result.Series = s
		return nil
	})

	if req.IncludePrevious {
		prevStart, prevEnd := PreviousWindow(start, end)
		g.Go(func() error {
			s, err := f.load(ctx, database, req, prevStart, prevEnd)
			if err != nil {
				return err
			}
			result.Previous = &s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.logger.Debug("series fetched",
		"org", req.Query.Organization,
		"interval", req.Interval,
		"start", timerange.Format(start),
		"end", timerange.Format(end),
		"buckets", len(result.Series.Buckets),
		"previous", result.Previous != nil,
	)
	return result, nil
}

func (f *DBFetcher) load(ctx context.Context, database *db.DB, req Request, start, end time.Time) (Series, error) {
	if err := ctx.Err(); err != nil {
		return Series{}, err
	}
	events, err := database.GetEventsByDateRange(req.Query.Organization, req.Query.Category, start.Unix(), end.Unix())
	if err != nil {
		return Series{}, fmt.Errorf("failed to load events: %w", err)
	}
	return Series{
		Start:   start,
		End:     end,
		Buckets: BucketBy(events, req.Interval, req.Location(), start, end),
	}, nil
}
