package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/chris/orgstats/internal/export"
	"github.com/chris/orgstats/internal/stats"
)

var (
	exportFlags rangeFlags
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export event counts as an HTML chart",
	Long:  "Render an organization's event counts as a standalone ECharts page with a zoom slider. Without range flags the range last used in the chart is exported.",
	Example: heredoc.Doc(`
		$ orgstats export --org acme --out acme.html
		$ orgstats export --period 90d --previous
	`),
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: <org>.html)")
}

func runExport(cmd *cobra.Command, args []string) error {
	org, err := resolveOrganization()
	if err != nil {
		return err
	}

	p, err := exportFlags.resolveParams(newParamsStore(), org)
	if err != nil {
		return err
	}
	req, err := exportFlags.request(org, p)
	if err != nil {
		return err
	}

	fetcher := stats.NewDBFetcher(dbPath, stats.WithLogger(logger))
	res, err := fetcher.Fetch(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = org + ".html"
	}
	name := req.Query.Category
	if name == "" {
		name = "events"
	}

	err = export.WriteFile(out, res, export.Options{
		Title:      org,
		Subtitle:   fmt.Sprintf("%s (%s)", req.Range, req.Interval),
		SeriesName: name,
		Location:   req.Location(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d buckets to %s\n", len(res.Series.Buckets), out)
	return nil
}
