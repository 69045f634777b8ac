package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chris/orgstats/internal/chart"
	"github.com/chris/orgstats/internal/params"
	"github.com/chris/orgstats/internal/stats/tui"
)

var chartFlags rangeFlags

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Explore event counts in a zoomable chart",
	Long: heredoc.Doc(`
		Open an interactive chart of an organization's event counts.

		Select buckets with space and the arrow keys, press enter to zoom in,
		b to step back and r to return to the range you started from. The
		committed range is saved per organization and restored next time.
	`),
	Example: heredoc.Doc(`
		$ orgstats chart --org acme
		$ orgstats chart --org acme --period 30d --previous
	`),
	Args: cobra.NoArgs,
	RunE: runChart,
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartFlags.register(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	org, err := resolveOrganization()
	if err != nil {
		return err
	}

	model, err := newChartModel(newParamsStore(), org)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run chart: %w", err)
	}
	return nil
}

// newChartModel builds the chart page. Range flags replace the persisted
// query state.
func newChartModel(store *params.Store, org string) (*tui.Model, error) {
	opts := []tui.Option{
		tui.WithStore(store),
		tui.WithLogger(logger),
		tui.WithDefaultPeriod(defaultPeriod()),
		tui.WithUTC(chartFlags.utc || (cfg != nil && cfg.UTC)),
		tui.WithIncludePrevious(chartFlags.previous || (cfg != nil && cfg.Chart.IncludePrevious)),
		tui.WithCategory(chartFlags.category),
	}
	if cfg != nil {
		opts = append(opts, tui.WithChartOptions(
			chart.WithFrames(cfg.Chart.Frames),
			chart.WithFrameInterval(cfg.Chart.FrameInterval),
		))
	}

	p, ok, err := chartFlags.params()
	if err != nil {
		return nil, err
	}
	if ok {
		if err := store.Save(org, p); err != nil {
			return nil, err
		}
		opts = append(opts, tui.WithParams(p))
	}

	return tui.New(dbPath, org, opts...), nil
}
