package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/chris/orgstats/internal/stats"
	"github.com/chris/orgstats/internal/timerange"
)

// Styles
var (
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	focusDotStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	blurDotStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	rangeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	zoomingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpKeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	helpDescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
)

const (
	marginX = 2
	// header, separator, blank, blank, separator, status, hints
	chromeHeight = 7
)

func (m *Model) renderView() string {
	var b strings.Builder

	width := m.width
	if width == 0 {
		width = 80
	}

	// Content width excludes left and right margins
	contentWidth := width - 2*marginX
	if contentWidth < 20 {
		contentWidth = 20
	}
	margin := strings.Repeat(" ", marginX)

	// Header
	b.WriteString(margin + truncateWithEllipsis(m.renderHeader(), contentWidth))
	b.WriteString("\n")
	b.WriteString(margin + separatorStyle.Render(strings.Repeat("=", contentWidth)))
	b.WriteString("\n\n")

	if m.showHelp {
		b.WriteString(m.renderHelp(margin))
	} else {
		for _, line := range strings.Split(m.chart.View(), "\n") {
			b.WriteString(margin + line + "\n")
		}
	}

	// Status bar
	b.WriteString("\n")
	b.WriteString(margin + separatorStyle.Render(strings.Repeat("─", contentWidth)))
	b.WriteString("\n")
	b.WriteString(margin + truncateWithEllipsis(m.renderStatus(), contentWidth))
	b.WriteString("\n")
	b.WriteString(margin + statusBarStyle.Render(truncateWithEllipsis(m.renderHints(), contentWidth)))

	return b.String()
}

func (m *Model) renderHeader() string {
	dot := focusDotStyle.Render("●")
	if !m.focused {
		dot = blurDotStyle.Render("○")
	}

	org := m.org
	if org == "" {
		org = "(no organization)"
	}
	title := headerStyle.Render("Org Stats") + " " + dot + " " + headerStyle.Render(org)
	if m.category != "" {
		title += headerStyle.Render("/" + m.category)
	}

	r := m.Range()
	zone := "local"
	if m.utc || m.params.UTC {
		zone = "UTC"
	}
	label := fmt.Sprintf("%s (%s, %s)", r, timerange.SelectInterval(r), zone)
	return title + "  " + rangeStyle.Render(label)
}

func (m *Model) renderStatus() string {
	var parts []string

	if m.zooming {
		target := m.zoomTarget.Period
		if target == "" {
			target = m.zoomTarget.Start + " → " + m.zoomTarget.End
		}
		parts = append(parts, zoomingStyle.Render("zooming to "+target))
	}

	ctrl := m.chart.Controller()
	parts = append(parts, fmt.Sprintf("history %d", ctrl.Depth()))
	if ctrl.HasPending() {
		parts = append(parts, "pending")
	}
	if m.params.Zoom {
		parts = append(parts, "zoomed")
	}
	if m.chart.IncludePrevious() {
		parts = append(parts, "previous on")
	}

	if m.chart.Loading() {
		parts = append(parts, "loading…")
	} else if res := m.chart.Result(); res != nil {
		parts = append(parts, fmt.Sprintf("%s events", humanize.Comma(stats.Total(res.Series.Buckets))))
	}

	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	if err := m.firstError(); err != nil {
		parts = append(parts, errorStyle.Render("error: "+err.Error()))
	}

	return strings.Join(parts, "  ·  ")
}

func (m *Model) firstError() error {
	if m.err != nil {
		return m.err
	}
	return m.chart.Err()
}

func (m *Model) renderHints() string {
	return "[h/l] Move  [space] Select  [enter] Zoom  [b] Back  [r] Reset  [tab] Org  [?] Help  [q] Quit"
}

func (m *Model) renderHelp(margin string) string {
	var b strings.Builder
	bindings := chartBindings()

	keyWidth := 0
	for _, hb := range bindings {
		keyWidth = max(keyWidth, ansi.StringWidth(hb.key))
	}

	for _, hb := range bindings {
		pad := strings.Repeat(" ", keyWidth-ansi.StringWidth(hb.key))
		b.WriteString(margin + helpKeyStyle.Render(hb.key) + pad + "  " + helpDescStyle.Render(hb.desc) + "\n")
	}
	return b.String()
}

// truncateWithEllipsis truncates a string to maxWidth, adding … if truncated
func truncateWithEllipsis(s string, maxWidth int) string {
	if ansi.StringWidth(s) <= maxWidth {
		return s
	}
	// Truncate to maxWidth-1 to leave room for …
	truncated := ansi.Truncate(s, maxWidth-1, "")
	return truncated + "…"
}
