package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/orgstats/internal/chart"
	"github.com/chris/orgstats/internal/db"
	"github.com/chris/orgstats/internal/params"
	"github.com/chris/orgstats/pkg/models"
)

// fixedTime returns a function that always returns the given time
func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var today = time.Date(2020, 1, 2, 12, 0, 0, 0, time.UTC)

// setupTestDB creates a test database with the given events
func setupTestDB(t *testing.T, events []models.Event) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database, err := db.NewForTesting(dbPath)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.InsertEvents(events))
	return dbPath
}

// hourlyEvents records hour+1 events at every hour of Jan 1 2020
func hourlyEvents(org string) []models.Event {
	var events []models.Event
	for h := 0; h < 24; h++ {
		events = append(events, models.Event{
			Organization: org,
			Category:     "accepted",
			Quantity:     int64(h + 1),
			Timestamp:    time.Date(2020, 1, 1, h, 30, 0, 0, time.UTC).Unix(),
		})
	}
	return events
}

var jan1 = params.Params{Start: "2020-01-01T00:00:00", End: "2020-01-01T23:59:59"}

// newModel creates a page over dbPath with an immediate-finish chart
func newModel(t *testing.T, dbPath string, store *params.Store, opts ...Option) *Model {
	t.Helper()
	base := []Option{
		WithNow(fixedTime(today)),
		WithStore(store),
		WithUTC(true),
		WithChartOptions(chart.WithFrames(0)),
	}
	return New(dbPath, "acme", append(base, opts...)...)
}

// initModel creates a page and runs its startup commands
func initModel(t *testing.T, dbPath string, store *params.Store, opts ...Option) *Model {
	t.Helper()
	model := newModel(t, dbPath, store, opts...)
	run(t, model, model.Init())
	return model
}

// run executes cmd and every command produced while handling its messages
func run(t *testing.T, model *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 500, "command chain did not settle")
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
		default:
			_, follow := model.Update(msg)
			queue = append(queue, follow)
		}
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// pressKeys simulates key presses and executes any resulting commands
func pressKeys(t *testing.T, model *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := model.Update(keyMsg(k))
		run(t, model, cmd)
	}
}

func TestLaunch_ShowsCommittedRange(t *testing.T) {
	dbPath := setupTestDB(t, hourlyEvents("acme"))
	model := initModel(t, dbPath, params.NewStore(t.TempDir()), WithParams(jan1))

	view := model.View()
	assert.Contains(t, view, "Org Stats")
	assert.Contains(t, view, "acme")
	assert.Contains(t, view, "2020-01-01T00:00:00 → 2020-01-01T23:59:59")
	assert.Contains(t, view, "1h, UTC")
	assert.Contains(t, view, "history 0")
	assert.Contains(t, view, "300 events")
	assert.Len(t, model.Chart().Chart().Series(), 24)
}

func TestZoom_PersistsParamsAfterCommit(t *testing.T) {
	dbPath := setupTestDB(t, hourlyEvents("acme"))
	store := params.NewStore(t.TempDir())
	model := initModel(t, dbPath, store, WithParams(jan1))

	pressKeys(t, model, "l", "l", "l", " ", "l", "l", "l", "l", "enter")

	assert.False(t, model.Zooming(), "commit clears the zoom flag")
	want := params.Params{Start: "2020-01-01T03:00:00", End: "2020-01-01T07:59:59", Zoom: true}
	assert.Equal(t, want, model.Params())

	stored, ok, err := store.Load("acme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, stored)

	// refetched for the zoomed range: hours 3..7 hold 4+5+6+7+8 events
	assert.Len(t, model.Chart().Chart().Series(), 5)
	view := model.View()
	assert.Contains(t, view, "history 1")
	assert.Contains(t, view, "zoomed")
	assert.Contains(t, view, "30 events")
}

func TestZoom_StatusWhileInFlight(t *testing.T) {
	dbPath := setupTestDB(t, hourlyEvents("acme"))
	model := initModel(t, dbPath, params.NewStore(t.TempDir()), WithParams(jan1))
	model.Update(tea.WindowSizeMsg{Width: 200, Height: 40})

	// deliver only the datazoom event, holding back the finished event
	pressKeys(t, model, " ", "l")
	_, cmd := model.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		require.Len(t, batch, 1)
		msg = batch[0]()
	}
	require.IsType(t, chart.DataZoomMsg{}, msg)
	_, finish := model.Update(msg)

	assert.True(t, model.Zooming())
	view := model.View()
	assert.Contains(t, view, "zooming to 2020-01-01T00:00:00 → 2020-01-01T01:59:59")
	assert.Contains(t, view, "pending")
	assert.Equal(t, jan1, model.Params(), "nothing is persisted before the chart finishes")

	run(t, model, finish)
	assert.False(t, model.Zooming())
	assert.Equal(t, "2020-01-01T01:59:59", model.Params().End)
}

func TestBack_ReturnsToPreviousRange(t *testing.T) {
	dbPath := setupTestDB(t, hourlyEvents("acme"))
	store := params.NewStore(t.TempDir())
	model := initModel(t, dbPath, store, WithParams(jan1))

	pressKeys(t, model, "l", "l", "l", " ", "l", "l", "l", "l", "enter")
	require.Equal(t, 1, model.Chart().Controller().Depth())

	pressKeys(t, model, "b")

	assert.Equal(t, 0, model.Chart().Controller().Depth())
	assert.Equal(t, jan1.Start, model.Params().Start)
	assert.Equal(t, jan1.End, model.Params().End)
	assert.Len(t, model.Chart().Chart().Series(), 24)

	// nothing left to step back to
	pressKeys(t, model, "b")
	assert.Equal(t, jan1.Start, model.Params().Start)
}

func TestRestore_ReturnsToRootAfterSeveralZooms(t *testing.T) {
	dbPath := setupTestDB(t, hourlyEvents("acme"))
	model := initModel(t, dbPath, params.NewStore(t.TempDir()), WithParams(jan1))

	pressKeys(t, model, "G", " ", "g", "enter")
	pressKeys(t, model, "l", " ", "G", "enter")
	pressKeys(t, model, " ", "h", "enter")
	require.Equal(t, 3, model.Chart().Controller().Depth())

	pressKeys(t, model, "r")

	assert.Equal(t, 0, model.Chart().Controller().Depth())
	assert.Equal(t, jan1.Start, model.Params().Start)
	assert.Equal(t, jan1.End, model.Params().End)
	assert.True(t, model.Params().Zoom)
}

func TestPeriodPreset_NavigatesAndPersists(t *testing.T) {
	dbPath := setupTestDB(t, hourlyEvents("acme"))
	store := params.NewStore(t.TempDir())
	model := initModel(t, dbPath, store, WithParams(jan1))

	pressKeys(t, model, "7")

	assert.Equal(t, params.Params{StatsPeriod: "7d"}, model.Params())
	stored, ok, err := store.Load("acme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "7d", stored.StatsPeriod)

	req := model.Chart().Request()
	assert.Equal(t, "7d", req.Range.Period)
	assert.Contains(t, model.View(), "Last 7d (1d, UTC)")
}

func TestStartup_LoadsPersistedParams(t *testing.T) {
	dbPath := setupTestDB(t, hourlyEvents("acme"))
	store := params.NewStore(t.TempDir())
	require.NoError(t, store.Save("acme", params.Params{StatsPeriod: "24h"}))

	model := initModel(t, dbPath, store)

	assert.Equal(t, "24h", model.Range().Period)
	assert.Equal(t, "24h", model.Chart().Request().Range.Period)
}

func TestStartup_DefaultPeriod(t *testing.T) {
	dbPath := setupTestDB(t, hourlyEvents("acme"))
	model := initModel(t, dbPath, params.NewStore(t.TempDir()), WithDefaultPeriod("30d"))

	assert.Equal(t, "30d", model.Range().Period)
}

func TestSwitchOrganization_Remounts(t *testing.T) {
	dbPath := setupTestDB(t, append(hourlyEvents("acme"), hourlyEvents("beta")...))
	store := params.NewStore(t.TempDir())
	require.NoError(t, store.Save("beta", params.Params{StatsPeriod: "24h"}))
	model := initModel(t, dbPath, store, WithParams(jan1))

	pressKeys(t, model, " ", "l", "enter")
	before := model.Chart()
	require.Equal(t, 1, before.Controller().Depth())

	pressKeys(t, model, "tab")

	assert.Equal(t, "beta", model.Organization())
	assert.NotSame(t, before, model.Chart())
	assert.Equal(t, 0, model.Chart().Controller().Depth(), "history belongs to the old chart")
	assert.Equal(t, "24h", model.Range().Period)
	assert.True(t, model.Chart().Chart().SelectEnabled(), "new chart got its ready hook")

	pressKeys(t, model, "tab")
	assert.Equal(t, "acme", model.Organization())
}

func TestHelpView(t *testing.T) {
	dbPath := setupTestDB(t, hourlyEvents("acme"))
	model := initModel(t, dbPath, params.NewStore(t.TempDir()), WithParams(jan1))

	pressKeys(t, model, "?")
	assert.True(t, model.ShowHelp())
	assert.Contains(t, model.View(), "Zoom into selection")

	// chart keys are inert while help is open
	pressKeys(t, model, "l")
	assert.Equal(t, 0, model.Chart().Chart().Cursor())

	pressKeys(t, model, "esc")
	assert.False(t, model.ShowHelp())
}

func TestTogglePrevious(t *testing.T) {
	dbPath := setupTestDB(t, hourlyEvents("acme"))
	model := initModel(t, dbPath, params.NewStore(t.TempDir()), WithParams(jan1))

	pressKeys(t, model, "p")

	assert.True(t, model.Chart().IncludePrevious())
	require.NotNil(t, model.Chart().Result().Previous)
	assert.Contains(t, model.View(), "previous on")
}

func TestFetchError_ShownInStatusBar(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")
	model := initModel(t, dbPath, params.NewStore(t.TempDir()), WithParams(jan1))

	require.Error(t, model.Err())
	view := model.View()
	assert.Contains(t, view, "error:")
	assert.Contains(t, view, "init-db")
}

func TestFocusAndBlur(t *testing.T) {
	dbPath := setupTestDB(t, hourlyEvents("acme"))
	model := initModel(t, dbPath, params.NewStore(t.TempDir()), WithParams(jan1))

	model.Update(tea.BlurMsg{})
	assert.False(t, model.Focused())
	assert.Contains(t, model.View(), "○")

	model.Update(tea.FocusMsg{})
	assert.True(t, model.Focused())
}

func TestWindowSize_ResizesChart(t *testing.T) {
	dbPath := setupTestDB(t, hourlyEvents("acme"))
	model := initModel(t, dbPath, params.NewStore(t.TempDir()), WithParams(jan1))

	model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, model.View(), "Org Stats")
}
