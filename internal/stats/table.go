package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	peakStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TableOptions controls FormatTable output
type TableOptions struct {
	Title string
	// Color enables lipgloss styling; callers disable it when stdout is not a
	// terminal
	Color bool
	// Location is the zone bucket labels are printed in
	Location *time.Location
}

// FormatTable formats a fetch result as a table of buckets with a totals line
func FormatTable(res *Result, opts TableOptions) string {
	style := func(s lipgloss.Style, text string) string {
		if !opts.Color {
			return text
		}
		return s.Render(text)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	var sb strings.Builder

	title := opts.Title
	if title == "" {
		title = "Event Counts"
	}
	sb.WriteString(style(tableHeaderStyle, title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", len(title)))
	sb.WriteString("\n\n")

	buckets := res.Series.Buckets
	if len(buckets) == 0 {
		sb.WriteString("No buckets in this range.")
		return sb.String()
	}

	widths := calculateColumnWidths(res, loc)
	sb.WriteString(formatColumnHeaders(widths, res.Previous != nil))
	sb.WriteString("\n")

	peak, _ := Peak(buckets)
	for i, b := range buckets {
		label := FormatBucket(b.Time().In(loc), res.Interval)
		row := fmt.Sprintf("%-*s  %*s", widths.bucket, label, widths.count, humanize.Comma(b.Count))
		if res.Previous != nil {
			row += fmt.Sprintf("  %*s", widths.previous, previousCount(res.Previous, i))
		}
		if b.Count > 0 && b.Timestamp == peak.Timestamp {
			row = style(peakStyle, row)
		} else if b.Count == 0 {
			row = style(dimStyle, row)
		}
		sb.WriteString(row)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(formatSummaryStats(res))
	return sb.String()
}

func formatColumnHeaders(widths columnWidths, withPrevious bool) string {
	header := fmt.Sprintf("%-*s  %*s", widths.bucket, "Bucket", widths.count, "Count")
	if withPrevious {
		header += fmt.Sprintf("  %*s", widths.previous, "Previous")
	}
	return header
}

func formatSummaryStats(res *Result) string {
	total := Total(res.Series.Buckets)
	n := len(res.Series.Buckets)

	plural := ""
	if n != 1 {
		plural = "s"
	}

	line := fmt.Sprintf("Total: %s events across %d %s bucket%s",
		humanize.Comma(total), n, res.Interval, plural)
	if res.Previous != nil {
		line += fmt.Sprintf(" (previous: %s, %s)",
			humanize.Comma(Total(res.Previous.Buckets)), formatChange(Total(res.Previous.Buckets), total))
	}
	return line
}

// formatChange describes the move from prev to cur as a signed percentage
func formatChange(prev, cur int64) string {
	if prev == 0 {
		if cur == 0 {
			return "no change"
		}
		return "new"
	}
	pct := float64(cur-prev) / float64(prev) * 100
	return fmt.Sprintf("%+.0f%%", pct)
}

func previousCount(prev *Series, i int) string {
	if i >= len(prev.Buckets) {
		return "-"
	}
	return humanize.Comma(prev.Buckets[i].Count)
}

type columnWidths struct {
	bucket   int
	count    int
	previous int
}

func calculateColumnWidths(res *Result, loc *time.Location) columnWidths {
	widths := columnWidths{
		bucket:   len("Bucket"),
		count:    len("Count"),
		previous: len("Previous"),
	}

	for _, b := range res.Series.Buckets {
		if l := len(FormatBucket(b.Time().In(loc), res.Interval)); l > widths.bucket {
			widths.bucket = l
		}
		if l := len(humanize.Comma(b.Count)); l > widths.count {
			widths.count = l
		}
	}
	if res.Previous != nil {
		for _, b := range res.Previous.Buckets {
			if l := len(humanize.Comma(b.Count)); l > widths.previous {
				widths.previous = l
			}
		}
	}

	return widths
}
