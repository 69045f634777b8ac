package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chris/orgstats/internal/db"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize the database schema",
	Long:  "Creates the orgstats database and applies pending migrations. Safe to run multiple times - will not overwrite existing data.",
	RunE:  runInitDB,
}

var initDBShowSchema bool

func init() {
	initDBCmd.Flags().BoolVar(&initDBShowSchema, "schema", false, "Print the events table columns")
	rootCmd.AddCommand(initDBCmd)
}

func runInitDB(cmd *cobra.Command, args []string) error {
	// Open with SkipSchemaCheck, then call InitSchema to detect new vs existing
	database, err := db.NewWithOptions(dbPath, db.Options{SkipSchemaCheck: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	created, err := database.InitSchema()
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	version, err := database.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Debug("schema ready", "path", database.Path(), "version", version, "created", created)

	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "Database initialized: %s\n", database.Path())
	}
	// Silent if already initialized

	if initDBShowSchema {
		return printSchema(cmd, database)
	}
	return nil
}

func printSchema(cmd *cobra.Command, database *db.DB) error {
	exists, err := database.TableExists()
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("events table missing from %s", database.Path())
	}
	schema, err := database.GetTableSchema()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "events")
	for _, col := range schema {
		fmt.Fprintf(out, "  %s %s\n", col["name"], col["type"])
	}
	return nil
}
