// Package chart is a zoomable terminal time-series chart. It plots bucketed
// series with ntcharts and reports interaction through messages: ReadyMsg
// once mounted, DataZoomMsg when a selection is confirmed or cleared,
// RestoreMsg when the user asks for the original view and FinishedMsg after
// every render or zoom animation.
package chart

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/chris/orgstats/internal/timerange"
	"github.com/chris/orgstats/internal/zoom"
	"github.com/chris/orgstats/pkg/models"
)

const (
	DefaultFrames        = 6
	DefaultFrameInterval = 40 * time.Millisecond
	defaultWidth         = 80
	defaultHeight        = 16
)

// Messages emitted by the chart, tagged with the chart's instance id
type (
	ReadyMsg    struct{ ID string }
	DataZoomMsg struct{ ID string }
	RestoreMsg  struct{ ID string }
	FinishedMsg struct{ ID string }
)

type frameMsg struct {
	id  string
	seq int
}

// animation interpolates the visible time window over a number of frames
type animation struct {
	seq    int
	frame  int
	active bool
	from   [2]time.Time
	to     [2]time.Time
}

// Model is the chart widget state
type Model struct {
	id     string
	width  int
	height int
	loc    *time.Location

	interval timerange.Interval
	series   []models.Bucket
	previous []models.Bucket

	// Selection
	axis          zoom.AxisModel
	selectEnabled bool
	cursor        int
	anchor        int // -1 when no selection is in progress

	// Animation
	frames        int
	frameInterval time.Duration
	anim          animation
	view          [2]time.Time

	dispatched []zoom.Action
	rendered   string
}

// Option is a functional option for configuring the Model
type Option func(*Model)

// WithSize sets the chart's width and height in cells
func WithSize(w, h int) Option {
	return func(m *Model) {
		m.width = w
		m.height = h
	}
}

// WithLocation sets the zone axis labels are printed in
func WithLocation(loc *time.Location) Option {
	return func(m *Model) {
		m.loc = loc
	}
}

// WithFrames sets how many frames a zoom animation lasts. Zero finishes
// immediately.
func WithFrames(n int) Option {
	return func(m *Model) {
		if n < 0 {
			n = 0
		}
		m.frames = n
	}
}

// WithFrameInterval sets the delay between animation frames
func WithFrameInterval(d time.Duration) Option {
	return func(m *Model) {
		m.frameInterval = d
	}
}

// WithID overrides the generated instance id (for testing)
func WithID(id string) Option {
	return func(m *Model) {
		m.id = id
	}
}

// New creates a chart with no data
func New(opts ...Option) *Model {
	m := &Model{
		id:            uuid.NewString(),
		width:         defaultWidth,
		height:        defaultHeight,
		loc:           time.Local,
		anchor:        -1,
		frames:        DefaultFrames,
		frameInterval: DefaultFrameInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.redraw()
	return m
}

// ID returns the instance id carried by every message the chart emits
func (m *Model) ID() string {
	return m.id
}

// Init reports that the chart is mounted
func (m *Model) Init() tea.Cmd {
	return m.emit(ReadyMsg{ID: m.id})
}

// SetData replaces the plotted series. previous, when non-nil, is drawn as an
// overlay aligned index by index with series. The returned command finishes
// the render cycle.
func (m *Model) SetData(interval timerange.Interval, series, previous []models.Bucket) tea.Cmd {
	m.interval = interval
	m.series = series
	m.previous = previous
	m.axis = zoom.AxisModel{}
	m.anchor = -1
	m.cursor = clamp(m.cursor, 0, len(series)-1)
	m.view = m.fullWindow()
	m.redraw()
	return m.animateTo(m.view)
}

// SetLocation changes the zone axis labels are printed in
func (m *Model) SetLocation(loc *time.Location) {
	m.loc = loc
	m.redraw()
}

// Resize changes the chart dimensions
func (m *Model) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	m.width = w
	m.height = h
	m.redraw()
}

// DispatchAction applies an action sent by the owner
func (m *Model) DispatchAction(a zoom.Action) {
	m.dispatched = append(m.dispatched, a)
	if a.Type == zoom.ActionTakeGlobalCursor && a.Key == zoom.CursorDataZoomSelect {
		m.selectEnabled = a.Active
		if !a.Active {
			m.anchor = -1
		}
	}
}

// AxisModel returns the zoom markers of the last confirmed or cleared
// selection
func (m *Model) AxisModel() zoom.AxisModel {
	return m.axis
}

// SeriesTime returns the bucket start at index i
func (m *Model) SeriesTime(i int) (time.Time, bool) {
	if i < 0 || i >= len(m.series) {
		return time.Time{}, false
	}
	return m.series[i].Time(), true
}

// Update handles animation frames and the chart's own zoom events
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if msg.id != m.id || msg.seq != m.anim.seq || !m.anim.active {
			return m, nil
		}
		return m, m.step()

	case DataZoomMsg:
		if msg.ID != m.id {
			return m, nil
		}
		return m, m.animateTo(m.axisWindow())

	case RestoreMsg:
		if msg.ID != m.id {
			return m, nil
		}
		return m, m.animateTo(m.fullWindow())
	}
	return m, nil
}

// HandleKey processes selection keys. It returns false for keys the chart
// does not use.
func (m *Model) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "left", "h":
		m.moveCursor(-1)
		return nil, true

	case "right", "l":
		m.moveCursor(1)
		return nil, true

	case "home", "g":
		m.moveCursor(-len(m.series))
		return nil, true

	case "end", "G":
		m.moveCursor(len(m.series))
		return nil, true

	case " ", "space", "v":
		if !m.selectEnabled || len(m.series) == 0 {
			return nil, true
		}
		if m.anchor >= 0 {
			m.anchor = -1
		} else {
			m.anchor = m.cursor
		}
		m.redraw()
		return nil, true

	case "esc":
		if m.anchor < 0 {
			return nil, false
		}
		m.anchor = -1
		m.redraw()
		return nil, true

	case "enter":
		if !m.selectEnabled || m.anchor < 0 {
			return nil, true
		}
		start, end := m.Selection()
		m.axis = zoom.AxisModel{RangeStart: &start, RangeEnd: &end}
		m.anchor = -1
		return m.emit(DataZoomMsg{ID: m.id}), true

	case "b", "backspace":
		m.axis = zoom.AxisModel{}
		m.anchor = -1
		return m.emit(DataZoomMsg{ID: m.id}), true

	case "r":
		m.anchor = -1
		return m.emit(RestoreMsg{ID: m.id}), true
	}
	return nil, false
}

// Selection returns the selected index span, ordered. With no selection in
// progress both ends are the cursor.
func (m *Model) Selection() (int, int) {
	if m.anchor < 0 {
		return m.cursor, m.cursor
	}
	if m.anchor <= m.cursor {
		return m.anchor, m.cursor
	}
	return m.cursor, m.anchor
}

func (m *Model) moveCursor(delta int) {
	if len(m.series) == 0 {
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(m.series)-1)
	m.redraw()
}

// animateTo starts a new animation toward the target window. Any animation
// already running is superseded and will never finish.
func (m *Model) animateTo(target [2]time.Time) tea.Cmd {
	m.anim = animation{
		seq:    m.anim.seq + 1,
		active: true,
		from:   m.view,
		to:     target,
	}
	if m.frames == 0 {
		return m.finish()
	}
	return m.tick()
}

func (m *Model) step() tea.Cmd {
	m.anim.frame++
	if m.anim.frame >= m.frames {
		return m.finish()
	}
	m.view = interpolate(m.anim.from, m.anim.to, float64(m.anim.frame)/float64(m.frames))
	m.redraw()
	return m.tick()
}

func (m *Model) finish() tea.Cmd {
	m.anim.active = false
	m.view = m.anim.to
	m.redraw()
	return m.emit(FinishedMsg{ID: m.id})
}

func (m *Model) tick() tea.Cmd {
	id, seq := m.id, m.anim.seq
	return tea.Tick(m.frameInterval, func(time.Time) tea.Msg {
		return frameMsg{id: id, seq: seq}
	})
}

func (m *Model) emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// fullWindow spans every plotted bucket
func (m *Model) fullWindow() [2]time.Time {
	if len(m.series) == 0 {
		return [2]time.Time{}
	}
	first := m.series[0].Time()
	last := m.series[len(m.series)-1].Time()
	return [2]time.Time{first, last.Add(m.interval.Unit() - time.Second)}
}

// axisWindow spans the buckets between the axis markers, or everything when
// the axis is cleared or malformed
func (m *Model) axisWindow() [2]time.Time {
	if m.axis.RangeStart == nil || m.axis.RangeEnd == nil {
		return m.fullWindow()
	}
	start, ok := m.SeriesTime(*m.axis.RangeStart)
	if !ok {
		return m.fullWindow()
	}
	end, ok := m.SeriesTime(*m.axis.RangeEnd)
	if !ok || end.Before(start) {
		return m.fullWindow()
	}
	return [2]time.Time{start, end.Add(m.interval.Unit() - time.Second)}
}

func interpolate(from, to [2]time.Time, f float64) [2]time.Time {
	if from[0].IsZero() || from[1].IsZero() {
		return to
	}
	lerp := func(a, b time.Time) time.Time {
		return a.Add(time.Duration(float64(b.Sub(a)) * f))
	}
	return [2]time.Time{lerp(from[0], to[0]), lerp(from[1], to[1])}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// View renders the chart
func (m *Model) View() string {
	return m.rendered
}

// Getters for testing

func (m *Model) Cursor() int {
	return m.cursor
}

func (m *Model) Selecting() bool {
	return m.anchor >= 0
}

func (m *Model) SelectEnabled() bool {
	return m.selectEnabled
}

func (m *Model) Animating() bool {
	return m.anim.active
}

func (m *Model) ViewWindow() (time.Time, time.Time) {
	return m.view[0], m.view[1]
}

func (m *Model) Dispatched() []zoom.Action {
	return m.dispatched
}

func (m *Model) Series() []models.Bucket {
	return m.series
}

func (m *Model) Interval() timerange.Interval {
	return m.interval
}
