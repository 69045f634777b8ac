// Package zoom coordinates the range a chart shows with the zoom gestures made
// on it. The Controller keeps a history of prior ranges and defers persisting
// a new range until the chart reports that its animation has finished.
package zoom

import (
	"github.com/charmbracelet/log"

	"github.com/chris/orgstats/internal/params"
	"github.com/chris/orgstats/internal/timerange"
)

// Controller owns the current range, the zoom history and the pending commit
// of one mounted chart. It is not safe for concurrent use.
type Controller struct {
	current timerange.Range
	history []timerange.Range
	pending *pendingCommit

	onZoom       func(timerange.Snapshot)
	updateParams func(params.Params)
	logger       *log.Logger
}

// pendingCommit is a one-shot deferred mutation of external state
type pendingCommit struct {
	apply func()
}

// Option is a functional option for configuring the Controller
type Option func(*Controller)

// WithOnZoom sets the callback fired as soon as a range change is requested
func WithOnZoom(fn func(timerange.Snapshot)) Option {
	return func(c *Controller) {
		c.onZoom = fn
	}
}

// WithLogger sets the logger used for state transitions
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController creates a controller for the externally-owned range r.
// updateParams performs the durable state mutation when a change commits.
func NewController(r timerange.Range, updateParams func(params.Params), opts ...Option) *Controller {
	c := &Controller{
		updateParams: updateParams,
		logger:       log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.SyncFromExternal(r)
	return c
}

// SyncFromExternal records the range supplied by the owner. It never touches
// the history.
func (c *Controller) SyncFromExternal(r timerange.Range) {
	c.current = r.Normalize()
}

// RequestPeriodChange moves the chart to r. The owner is notified at once;
// the durable update is held until CommitPending. A second request before
// the commit replaces the first.
func (c *Controller) RequestPeriodChange(r timerange.Range, pushHistory bool) {
	r = r.Normalize()
	if pushHistory {
		c.history = append(c.history, c.current)
	}

	snapshot := r.Snapshot()
	c.logger.Debug("period change requested", "range", r, "push", pushHistory, "depth", len(c.history))

	if c.onZoom != nil {
		c.onZoom(snapshot)
	}

	c.pending = &pendingCommit{
		apply: func() {
			if c.updateParams != nil {
				c.updateParams(params.FromSnapshot(snapshot))
			}
			c.SyncFromExternal(r)
		},
	}
}

// CommitPending runs the pending commit, if any, exactly once
func (c *Controller) CommitPending() {
	p := c.pending
	if p == nil {
		return
	}
	c.pending = nil
	c.logger.Debug("committing period change")
	p.apply()
}

// RestoreToRoot returns to the range that was active before the first zoom
// and clears the history
func (c *Controller) RestoreToRoot() {
	if len(c.history) == 0 {
		return
	}
	root := c.history[0]
	c.RequestPeriodChange(root, false)
	c.history = nil
}

// StepBack returns to the range that was active before the latest zoom
func (c *Controller) StepBack() {
	if len(c.history) == 0 {
		return
	}
	last := len(c.history) - 1
	prev := c.history[last]
	c.history = c.history[:last]
	c.RequestPeriodChange(prev, false)
}

// Current returns the normalized range last synced from the owner
func (c *Controller) Current() timerange.Range {
	return c.current
}

// History returns a copy of the zoom history, oldest first
func (c *Controller) History() []timerange.Range {
	h := make([]timerange.Range, len(c.history))
	copy(h, c.history)
	return h
}

// Depth returns the number of history entries
func (c *Controller) Depth() int {
	return len(c.history)
}

// HasPending reports whether a commit is waiting for the chart to finish
func (c *Controller) HasPending() bool {
	return c.pending != nil
}
