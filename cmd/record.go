package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/chris/orgstats/internal/db"
	"github.com/chris/orgstats/internal/timerange"
	"github.com/chris/orgstats/pkg/models"
)

var (
	recordCategory  string
	recordQuantity  int64
	recordTimestamp string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record events for an organization",
	Long:  "Insert one batch of events into the database. The organization defaults to the owner of the git remote of the working directory.",
	Example: heredoc.Doc(`
		$ orgstats record --org acme --quantity 3
		$ orgstats record --category rejected --timestamp 2020-01-01T03:15:00
	`),
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().StringVar(&recordCategory, "category", "accepted", "Event category")
	recordCmd.Flags().Int64Var(&recordQuantity, "quantity", 1, "Number of events")
	recordCmd.Flags().StringVar(&recordTimestamp, "timestamp", "", "Event time, "+timerange.Layout+" in UTC or RFC3339 (default: now)")
}

func runRecord(cmd *cobra.Command, args []string) error {
	if recordQuantity <= 0 {
		return fmt.Errorf("--quantity must be positive")
	}
	if recordCategory == "" {
		return fmt.Errorf("--category cannot be empty")
	}

	org, err := resolveOrganization()
	if err != nil {
		return err
	}

	event := models.NewEvent(org, recordCategory, recordQuantity)
	if recordTimestamp != "" {
		ts, err := timerange.ParseTime(recordTimestamp)
		if err != nil {
			return fmt.Errorf("invalid --timestamp: %w", err)
		}
		event.Timestamp = ts.Unix()
	}

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	id, err := database.InsertEvent(event)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	logger.Debug("event recorded", "id", id, "org", org, "category", recordCategory, "quantity", recordQuantity)

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d %s events for %s (ID: %d)\n", recordQuantity, recordCategory, org, id)
	return nil
}
