package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/chris/orgstats/internal/chart"
	"github.com/chris/orgstats/internal/db"
	"github.com/chris/orgstats/internal/params"
	"github.com/chris/orgstats/internal/stats"
	"github.com/chris/orgstats/internal/statschart"
	"github.com/chris/orgstats/internal/timerange"
)

const DefaultPeriod = "14d"

// periodPresets maps number keys to relative periods
var periodPresets = map[string]string{
	"1": "24h",
	"7": "7d",
	"3": "30d",
	"9": "90d",
}

// Model is the page that owns the query state and mounts one chart per
// organization
type Model struct {
	// Data sources
	dbPath  string
	store   *params.Store
	fetcher stats.Fetcher
	logger  *log.Logger

	// Query state
	orgs            []string
	org             string
	category        string
	params          params.Params
	defaultPeriod   string
	utc             bool
	includePrevious bool

	// Set between OnZoom and the commit of that zoom
	zooming    bool
	zoomTarget timerange.Snapshot

	chart     *statschart.Model
	chartOpts []chart.Option

	// UI
	showHelp bool
	width    int
	height   int
	focused  bool
	err      error
	notice   string

	// For testing - allows injecting "now"
	now func() time.Time
}

// Option is a functional option for configuring the Model
type Option func(*Model)

// WithNow sets the function used to get the current time (for testing)
func WithNow(fn func() time.Time) Option {
	return func(m *Model) {
		m.now = fn
	}
}

// WithLogger sets the logger passed down to the chart
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// WithStore sets where query state is persisted
func WithStore(s *params.Store) Option {
	return func(m *Model) {
		m.store = s
	}
}

// WithFetcher replaces the database fetcher
func WithFetcher(f stats.Fetcher) Option {
	return func(m *Model) {
		m.fetcher = f
	}
}

// WithCategory limits the chart to one category
func WithCategory(c string) Option {
	return func(m *Model) {
		m.category = c
	}
}

// WithDefaultPeriod sets the period used when nothing is persisted
func WithDefaultPeriod(p string) Option {
	return func(m *Model) {
		if p != "" {
			m.defaultPeriod = p
		}
	}
}

// WithUTC shows and buckets times in UTC
func WithUTC(on bool) Option {
	return func(m *Model) {
		m.utc = on
	}
}

// WithIncludePrevious starts with the previous-window overlay on
func WithIncludePrevious(on bool) Option {
	return func(m *Model) {
		m.includePrevious = on
	}
}

// WithParams starts from the given query state instead of the persisted one
func WithParams(p params.Params) Option {
	return func(m *Model) {
		m.params = p
	}
}

// WithChartOptions passes options to every chart widget the page mounts
func WithChartOptions(opts ...chart.Option) Option {
	return func(m *Model) {
		m.chartOpts = append(m.chartOpts, opts...)
	}
}

// New creates the page for org
func New(dbPath, org string, opts ...Option) *Model {
	m := &Model{
		dbPath:        dbPath,
		org:           org,
		defaultPeriod: DefaultPeriod,
		focused:       true,
		logger:        log.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = params.NewStore("")
	}
	if m.fetcher == nil {
		m.fetcher = stats.NewDBFetcher(dbPath, stats.WithNow(m.now), stats.WithLogger(m.logger))
	}

	if m.params.IsZero() {
		m.loadParams()
	}
	m.mount()
	return m
}

// loadParams reads the organization's persisted query state
func (m *Model) loadParams() {
	p, ok, err := m.store.Load(m.org)
	if err != nil {
		m.err = err
		return
	}
	if ok {
		m.params = p
	}
}

// mount builds a fresh chart for the current organization
func (m *Model) mount() {
	opts := append([]chart.Option{chart.WithLocation(m.location())}, m.chartOpts...)
	m.chart = statschart.New(m.props(), m.fetcher,
		statschart.WithChart(chart.New(opts...)),
		statschart.WithIncludePrevious(m.includePrevious),
		statschart.WithLogger(m.logger),
	)
	if m.width > 0 {
		m.resizeChart()
	}
}

// Range returns the range derived from the query state
func (m *Model) Range() timerange.Range {
	if m.params.IsZero() {
		return timerange.Relative(m.defaultPeriod)
	}
	r, err := m.params.Range()
	if err != nil {
		m.logger.Warn("ignoring invalid stored range", "org", m.org, "err", err)
		return timerange.Relative(m.defaultPeriod)
	}
	return r
}

func (m *Model) location() *time.Location {
	if m.utc || m.params.UTC {
		return time.UTC
	}
	return time.Local
}

func (m *Model) props() statschart.Props {
	r := m.Range()
	return statschart.Props{
		Organization: m.org,
		Category:     m.category,
		Period:       r.Period,
		Start:        r.Start,
		End:          r.End,
		UTC:          m.utc || m.params.UTC,
		Zooming:      m.zooming,
		OnZoom:       m.onZoom,
		Actions:      statschart.Actions{UpdateParams: m.updateParams},
	}
}

func (m *Model) onZoom(s timerange.Snapshot) {
	m.zooming = true
	m.zoomTarget = s
}

func (m *Model) updateParams(p params.Params) {
	m.zooming = false
	saved, err := m.store.Update(m.org, p)
	if err != nil {
		m.err = err
		p.UTC = m.params.UTC
		m.params = p
		return
	}
	m.params = saved
}

// navigate replaces the query state from outside the chart
func (m *Model) navigate(p params.Params) {
	p.UTC = m.params.UTC
	if err := m.store.Save(m.org, p); err != nil {
		m.err = err
	}
	m.params = p
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadOrganizations, m.chart.Init())
}

// loadOrganizations lists the organizations that have events
func (m *Model) loadOrganizations() tea.Msg {
	database, err := db.New(m.dbPath)
	if err != nil {
		return errMsg{err}
	}
	defer database.Close()

	orgs, err := database.ListOrganizations()
	if err != nil {
		return errMsg{err}
	}
	return orgsLoadedMsg{orgs: orgs}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	// Props are re-derived after every message; the chart decides whether
	// they warrant a refetch
	return m, tea.Batch(cmd, m.chart.SetProps(m.props()))
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return nil

	case tea.FocusMsg:
		m.focused = true
		return nil

	case tea.BlurMsg:
		m.focused = false
		return nil

	case orgsLoadedMsg:
		m.orgs = msg.orgs
		return nil

	case errMsg:
		m.err = msg.err
		return nil

	case yankResultMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.notice = "copied"
		}
		return nil
	}

	_, cmd := m.chart.Update(msg)
	return cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		case "ctrl+c":
			return tea.Quit
		}
		return nil
	}

	m.notice = ""
	if cmd, ok := m.chart.HandleKey(msg); ok {
		return cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit

	case "?":
		m.showHelp = true
		return nil

	case "1", "7", "3", "9":
		m.navigate(params.Params{StatsPeriod: periodPresets[msg.String()]})
		return nil

	case "u":
		utc := m.location() == time.UTC
		m.utc = false
		m.params.UTC = !utc
		m.navigate(m.params)
		return nil

	case "p":
		m.includePrevious = !m.includePrevious
		return m.chart.TogglePrevious()

	case "ctrl+r":
		m.err = nil
		return m.chart.Refresh()

	case "tab":
		return m.switchOrganization(1)

	case "shift+tab":
		return m.switchOrganization(-1)

	case "y":
		return yankToClipboard(ShareCommand(m.org, m.params))
	}

	return nil
}

// switchOrganization remounts the chart for the next or previous
// organization
func (m *Model) switchOrganization(delta int) tea.Cmd {
	if len(m.orgs) == 0 {
		return nil
	}
	idx := 0
	for i, o := range m.orgs {
		if o == m.org {
			idx = (i + delta + len(m.orgs)) % len(m.orgs)
			break
		}
	}
	return m.SetOrganization(m.orgs[idx])
}

// SetOrganization mounts a new chart for org with its persisted query state
func (m *Model) SetOrganization(org string) tea.Cmd {
	if org == m.org {
		return nil
	}
	m.org = org
	m.params = params.Params{}
	m.zooming = false
	m.err = nil
	m.loadParams()
	m.mount()
	return m.chart.Init()
}

func (m *Model) resizeChart() {
	w := m.width - 2*marginX
	h := m.height - chromeHeight
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	m.chart.Resize(w, h)
}

// View implements tea.Model
func (m *Model) View() string {
	return m.renderView()
}

// Messages
type orgsLoadedMsg struct {
	orgs []string
}

type errMsg struct {
	err error
}

// Getters for testing
func (m *Model) Organization() string {
	return m.org
}

func (m *Model) Params() params.Params {
	return m.params
}

func (m *Model) Zooming() bool {
	return m.zooming
}

func (m *Model) Chart() *statschart.Model {
	return m.chart
}

func (m *Model) Focused() bool {
	return m.focused
}

func (m *Model) ShowHelp() bool {
	return m.showHelp
}

func (m *Model) Err() error {
	return m.err
}
