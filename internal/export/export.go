// Package export renders a fetched series as a standalone ECharts HTML page
// with a dataZoom slider and a toolbox for zooming and restoring in the
// browser.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/chris/orgstats/internal/stats"
	"github.com/chris/orgstats/pkg/models"
)

// Options controls the rendered page
type Options struct {
	Title    string
	Subtitle string
	// SeriesName labels the current window; defaults to "events"
	SeriesName string
	// Location is the zone bucket labels are printed in
	Location *time.Location
	Theme    string
}

// Render writes the HTML page for res to w
func Render(w io.Writer, res *stats.Result, o Options) error {
	if res == nil {
		return fmt.Errorf("nothing to export")
	}
	loc := o.Location
	if loc == nil {
		loc = time.Local
	}
	theme := o.Theme
	if theme == "" {
		theme = types.ThemeWesteros
	}
	name := o.SeriesName
	if name == "" {
		name = "events"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Theme:     theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    o.Title,
			Subtitle: o.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
		charts.WithToolboxOpts(opts.Toolbox{
			Show: true,
			Feature: &opts.ToolBoxFeature{
				DataZoom: &opts.ToolBoxFeatureDataZoom{Show: true},
				Restore:  &opts.ToolBoxFeatureRestore{Show: true},
				SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{
					Show: true,
					Name: "orgstats",
				},
			},
		}),
	)

	line.SetXAxis(Labels(res, loc))
	line.AddSeries(name, lineData(res.Series.Buckets)).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: true}))

	if res.Previous != nil {
		// plotted against the current window's labels
		line.AddSeries("previous", lineData(res.Previous.Buckets)).
			SetSeriesOptions(
				charts.WithLineChartOpts(opts.LineChart{Smooth: true}),
				charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Opacity: 0.6}),
			)
	}

	return line.Render(w)
}

// WriteFile renders res into the HTML file at path
func WriteFile(path string, res *stats.Result, o Options) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := Render(f, res, o); err != nil {
		f.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return nil
}

// Labels returns the x-axis labels of the current window
func Labels(res *stats.Result, loc *time.Location) []string {
	labels := make([]string, len(res.Series.Buckets))
	for i, b := range res.Series.Buckets {
		labels[i] = stats.FormatBucket(b.Time().In(loc), res.Interval)
	}
	return labels
}

func lineData(buckets []models.Bucket) []opts.LineData {
	data := make([]opts.LineData, len(buckets))
	for i, b := range buckets {
		data[i] = opts.LineData{Value: b.Count}
	}
	return data
}
