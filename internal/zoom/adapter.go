package zoom

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/chris/orgstats/internal/timerange"
)

// Chart actions understood by ChartHandle.DispatchAction
const (
	ActionTakeGlobalCursor = "takeGlobalCursor"
	CursorDataZoomSelect   = "dataZoomSelect"
)

// Action is a command sent to the chart widget
type Action struct {
	Type   string
	Key    string
	Active bool
}

// AxisModel holds the x-axis zoom markers as indices into the plotted series.
// Both nil means the selection was cleared.
type AxisModel struct {
	RangeStart *int
	RangeEnd   *int
}

// Cleared reports whether the chart dropped its selection. The chart widget
// signals its own back button this way.
func (a AxisModel) Cleared() bool {
	return a.RangeStart == nil && a.RangeEnd == nil
}

// ChartHandle is the part of the chart widget the adapter talks to
type ChartHandle interface {
	DispatchAction(Action)
	AxisModel() AxisModel
	// SeriesTime returns the timestamp of the plotted point at index i
	SeriesTime(i int) (time.Time, bool)
	// Interval is the bucket size of the plotted series, which lags the
	// controller's range while a refetch is loading
	Interval() timerange.Interval
}

// Adapter turns chart events into controller operations
type Adapter struct {
	ctrl   *Controller
	logger *log.Logger
}

// NewAdapter creates an adapter driving ctrl
func NewAdapter(ctrl *Controller, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{ctrl: ctrl, logger: logger}
}

// Ready arms the chart for drag-select zooming
func (a *Adapter) Ready(h ChartHandle) {
	h.DispatchAction(Action{
		Type:   ActionTakeGlobalCursor,
		Key:    CursorDataZoomSelect,
		Active: true,
	})
}

// DataZoom handles a zoom selection or, when the axis was cleared, the
// chart's back button
func (a *Adapter) DataZoom(h ChartHandle) {
	axis := h.AxisModel()
	if axis.Cleared() {
		a.ctrl.StepBack()
		return
	}
	if axis.RangeStart == nil || axis.RangeEnd == nil {
		a.logger.Debug("ignoring datazoom with one marker")
		return
	}

	startIdx, endIdx := *axis.RangeStart, *axis.RangeEnd
	if startIdx > endIdx {
		a.logger.Debug("ignoring reversed datazoom", "start", startIdx, "end", endIdx)
		return
	}
	start, ok := h.SeriesTime(startIdx)
	if !ok {
		a.logger.Debug("datazoom start outside series", "index", startIdx)
		return
	}
	last, ok := h.SeriesTime(endIdx)
	if !ok {
		a.logger.Debug("datazoom end outside series", "index", endIdx)
		return
	}

	// The end bucket is included through its last second
	end := last.Add(h.Interval().Unit()).Add(-time.Second)

	a.ctrl.RequestPeriodChange(timerange.Absolute(start, end), true)
}

// Restore returns to the range active before any zoom
func (a *Adapter) Restore(h ChartHandle) {
	a.ctrl.RestoreToRoot()
}

// Finished commits the pending change. The chart finishes after every
// redraw, not only after zooms, so this is usually a no-op.
func (a *Adapter) Finished() {
	a.ctrl.CommitPending()
}
