package chart

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/chris/orgstats/internal/timerange"
)

const previousDataSet = "previous"

// Styles
var (
	seriesStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	previousStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	axisStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	selectionStyle = lipgloss.NewStyle().Background(lipgloss.Color("237"))
	cursorStyle    = lipgloss.NewStyle().Background(lipgloss.Color("10"))
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	emptyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// xLabelFormatter prints hour-of-day ticks for hourly series and dates for
// daily ones
func xLabelFormatter(interval timerange.Interval, loc *time.Location) linechart.LabelFormatter {
	return func(_ int, v float64) string {
		t := time.Unix(int64(v), 0).In(loc)
		if interval == timerange.Hourly {
			return t.Format("15:04")
		}
		return t.Format("01/02")
	}
}

func yLabelFormatter() linechart.LabelFormatter {
	return func(_ int, v float64) string {
		return humanize.Comma(int64(v))
	}
}

// redraw rebuilds the ntcharts model from the current data, view window and
// selection, and caches its rendering
func (m *Model) redraw() {
	if len(m.series) == 0 {
		m.rendered = m.renderEmpty()
		return
	}

	graphHeight := m.height - 1
	if graphHeight < 3 {
		graphHeight = 3
	}

	full := m.fullWindow()
	maxY := 1.0
	for _, b := range m.series {
		maxY = max(maxY, float64(b.Count))
	}
	for _, b := range m.previous {
		maxY = max(maxY, float64(b.Count))
	}

	lc := timeserieslinechart.New(m.width, graphHeight,
		timeserieslinechart.WithTimeRange(full[0], full[1]),
		timeserieslinechart.WithYRange(0, maxY),
		timeserieslinechart.WithXYSteps(4, 2),
		timeserieslinechart.WithXLabelFormatter(xLabelFormatter(m.interval, m.loc)),
		timeserieslinechart.WithYLabelFormatter(yLabelFormatter()),
		timeserieslinechart.WithAxesStyles(axisStyle, labelStyle),
		timeserieslinechart.WithStyle(seriesStyle),
		timeserieslinechart.WithDataSetStyle(previousDataSet, previousStyle),
	)

	for i, b := range m.series {
		lc.Push(timeserieslinechart.TimePoint{Time: b.Time(), Value: float64(b.Count)})
		// previous window is drawn on the current window's timeline
		if i < len(m.previous) {
			lc.PushDataSet(previousDataSet, timeserieslinechart.TimePoint{
				Time:  b.Time(),
				Value: float64(m.previous[i].Count),
			})
		}
	}

	if !m.view[0].IsZero() && m.view[1].After(m.view[0]) {
		lc.SetViewTimeRange(m.view[0], m.view[1])
	}
	lc.DrawBrailleAll()

	if m.selectEnabled {
		start, end := m.Selection()
		if m.anchor >= 0 {
			for i := start; i <= end; i++ {
				lc.SetColumnBackgroundStyle(m.series[i].Time(), selectionStyle)
			}
		}
		lc.SetColumnBackgroundStyle(m.series[m.cursor].Time(), cursorStyle)
	}

	m.rendered = lc.View() + "\n" + m.renderInfo()
}

// renderInfo describes the bucket under the cursor and the selection
func (m *Model) renderInfo() string {
	b := m.series[m.cursor]
	t := b.Time().In(m.loc)

	var parts []string
	parts = append(parts, fmt.Sprintf("▲ %s  %s", formatBucketTime(t, m.interval), humanize.Comma(b.Count)))
	if m.cursor < len(m.previous) {
		parts = append(parts, fmt.Sprintf("prev %s", humanize.Comma(m.previous[m.cursor].Count)))
	}
	if m.anchor >= 0 {
		start, end := m.Selection()
		parts = append(parts, fmt.Sprintf("selecting %d buckets", end-start+1))
	}

	line := strings.Join(parts, "  ·  ")
	return infoStyle.Render(ansi.Truncate(line, m.width, "…"))
}

func (m *Model) renderEmpty() string {
	msg := "No data"
	pad := (m.width - ansi.StringWidth(msg)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + emptyStyle.Render(msg)
}

func formatBucketTime(t time.Time, interval timerange.Interval) string {
	if interval == timerange.Hourly {
		return t.Format("Jan 2 15:04")
	}
	return t.Format("Mon Jan 2")
}
