// Package statschart mounts a zoomable chart of one organization's event
// counts. It wires the chart widget's events to a zoom controller, loads the
// series for the committed range and decides when new props warrant a
// refetch.
package statschart

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/chris/orgstats/internal/chart"
	"github.com/chris/orgstats/internal/params"
	"github.com/chris/orgstats/internal/stats"
	"github.com/chris/orgstats/internal/timerange"
	"github.com/chris/orgstats/internal/zoom"
	"github.com/chris/orgstats/pkg/models"
)

// Model is one mounted chart. Changing organization means building a new
// Model; SetProps never switches organizations.
type Model struct {
	props   Props
	ctrl    *zoom.Controller
	adapter *zoom.Adapter
	chart   *chart.Model

	fetcher         stats.Fetcher
	includePrevious bool
	fetchSeq        int
	loading         bool
	result          *stats.Result
	err             error

	logger *log.Logger
}

// Option is a functional option for configuring the Model
type Option func(*Model)

// WithLogger sets the logger used by the model and its controller
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// WithIncludePrevious overlays the previous window of equal length
func WithIncludePrevious(on bool) Option {
	return func(m *Model) {
		m.includePrevious = on
	}
}

// WithChart replaces the chart widget (for testing)
func WithChart(c *chart.Model) Option {
	return func(m *Model) {
		m.chart = c
	}
}

// New mounts a chart for props.Organization
func New(props Props, fetcher stats.Fetcher, opts ...Option) *Model {
	m := &Model{
		props:   props,
		fetcher: fetcher,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.chart == nil {
		m.chart = chart.New(chart.WithLocation(location(props.UTC)))
	}
	m.logger = m.logger.With("chart", m.chart.ID(), "org", props.Organization)

	// Callbacks go through m.props so the latest owner callbacks are used
	m.ctrl = zoom.NewController(props.Range(), m.updateParams,
		zoom.WithOnZoom(m.onZoom),
		zoom.WithLogger(m.logger),
	)
	m.adapter = zoom.NewAdapter(m.ctrl, m.logger)
	return m
}

func (m *Model) onZoom(s timerange.Snapshot) {
	if m.props.OnZoom != nil {
		m.props.OnZoom(s)
	}
}

func (m *Model) updateParams(p params.Params) {
	if m.props.Actions.UpdateParams != nil {
		m.props.Actions.UpdateParams(p)
	}
}

// Init mounts the chart and loads the first series
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.chart.Init(), m.fetch())
}

// SetProps receives new props from the owner. The returned command refetches
// when ShouldUpdate allows a redraw; otherwise nothing happens.
func (m *Model) SetProps(next Props) tea.Cmd {
	update := ShouldUpdate(m.props, next)
	if next.UTC != m.props.UTC {
		m.chart.SetLocation(location(next.UTC))
		update = update || !next.Zooming
	}
	m.props = next
	if !update {
		return nil
	}
	m.logger.Debug("props changed", "range", next.Range())
	m.ctrl.SyncFromExternal(next.Range())
	return m.fetch()
}

// TogglePrevious switches the previous-window overlay and refetches
func (m *Model) TogglePrevious() tea.Cmd {
	m.includePrevious = !m.includePrevious
	return m.fetch()
}

// Refresh reloads the committed range
func (m *Model) Refresh() tea.Cmd {
	return m.fetch()
}

// Update routes chart events to the adapter and everything else to the chart
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chart.ReadyMsg:
		if msg.ID == m.chart.ID() {
			m.adapter.Ready(m.chart)
		}
		return m, nil

	case chart.DataZoomMsg:
		if msg.ID != m.chart.ID() {
			return m, nil
		}
		m.adapter.DataZoom(m.chart)
		_, cmd := m.chart.Update(msg)
		return m, cmd

	case chart.RestoreMsg:
		if msg.ID != m.chart.ID() {
			return m, nil
		}
		m.adapter.Restore(m.chart)
		_, cmd := m.chart.Update(msg)
		return m, cmd

	case chart.FinishedMsg:
		if msg.ID == m.chart.ID() {
			m.adapter.Finished()
		}
		return m, nil

	case fetchedMsg:
		if msg.seq != m.fetchSeq {
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.result = msg.result
		var previous []models.Bucket
		if msg.result.Previous != nil {
			previous = msg.result.Previous.Buckets
		}
		return m, m.chart.SetData(msg.result.Interval, msg.result.Series.Buckets, previous)

	case fetchErrMsg:
		if msg.seq != m.fetchSeq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.logger.Warn("fetch failed", "err", msg.err)
		return m, nil

	case tea.KeyMsg:
		cmd, _ := m.chart.HandleKey(msg)
		return m, cmd
	}

	_, cmd := m.chart.Update(msg)
	return m, cmd
}

// HandleKey forwards a key to the chart and reports whether it was used
func (m *Model) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	return m.chart.HandleKey(msg)
}

// Resize changes the chart dimensions
func (m *Model) Resize(w, h int) {
	m.chart.Resize(w, h)
}

// View renders the chart
func (m *Model) View() string {
	return m.chart.View()
}

// Request returns the fetch request for the committed range
func (m *Model) Request() stats.Request {
	r := m.ctrl.Current()
	return stats.Request{
		Interval: timerange.SelectInterval(r),
		Query: stats.Query{
			Organization: m.props.Organization,
			Category:     m.props.Category,
		},
		Range:           r,
		UTC:             m.props.UTC,
		IncludePrevious: m.includePrevious,
	}
}

func (m *Model) fetch() tea.Cmd {
	m.fetchSeq++
	seq := m.fetchSeq
	req := m.Request()
	fetcher := m.fetcher
	m.loading = true

	return func() tea.Msg {
		res, err := fetcher.Fetch(context.Background(), req)
		if err != nil {
			return fetchErrMsg{seq: seq, err: err}
		}
		return fetchedMsg{seq: seq, result: res}
	}
}

func location(utc bool) *time.Location {
	if utc {
		return time.UTC
	}
	return time.Local
}

// Messages
type fetchedMsg struct {
	seq    int
	result *stats.Result
}

type fetchErrMsg struct {
	seq int
	err error
}

// Getters for testing and for the owner's status bar

func (m *Model) Props() Props {
	return m.props
}

func (m *Model) Controller() *zoom.Controller {
	return m.ctrl
}

func (m *Model) Chart() *chart.Model {
	return m.chart
}

func (m *Model) Loading() bool {
	return m.loading
}

func (m *Model) Err() error {
	return m.err
}

func (m *Model) Result() *stats.Result {
	return m.result
}

func (m *Model) IncludePrevious() bool {
	return m.includePrevious
}
