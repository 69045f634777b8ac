package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chris/orgstats/internal/stats"
)

var statsFlags rangeFlags

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print bucketed event counts",
	Long:  "Print an organization's event counts for a range as a table. Without range flags the range last used in the chart is shown.",
	Example: heredoc.Doc(`
		$ orgstats stats --org acme --period 7d
		$ orgstats stats --start 2020-01-01T03:00:00 --end 2020-01-01T07:59:59 --utc --previous
	`),
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsFlags.register(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	org, err := resolveOrganization()
	if err != nil {
		return err
	}

	p, err := statsFlags.resolveParams(newParamsStore(), org)
	if err != nil {
		return err
	}
	req, err := statsFlags.request(org, p)
	if err != nil {
		return err
	}

	fetcher := stats.NewDBFetcher(dbPath, stats.WithLogger(logger))
	res, err := fetcher.Fetch(cmd.Context(), req)
	if err != nil {
		return err
	}

	title := org
	if req.Query.Category != "" {
		title += "/" + req.Query.Category
	}
	title = fmt.Sprintf("%s events · %s (%s)", title, req.Range, req.Interval)

	out := stats.FormatTable(res, stats.TableOptions{
		Title:    title,
		Color:    isTerminal(cmd.OutOrStdout()),
		Location: req.Location(),
	})
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// isTerminal returns true if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
