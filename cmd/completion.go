package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chris/orgstats/internal/db"
)

func init() {
	// Register custom completions after all commands are initialized
	cobra.OnInitialize(registerCompletions)
}

func registerCompletions() {
	// --db flag: complete with .db files
	rootCmd.RegisterFlagCompletionFunc("db", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"db"}, cobra.ShellCompDirectiveFilterFileExt
	})

	rootCmd.RegisterFlagCompletionFunc("config", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	rootCmd.RegisterFlagCompletionFunc("org", completeOrganization)

	rootCmd.RegisterFlagCompletionFunc("log-level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	for _, c := range []*cobra.Command{statsCmd, chartCmd, exportCmd} {
		registerRangeCompletions(c)
	}

	recordCmd.RegisterFlagCompletionFunc("category", completeCategory)

	seedCmd.RegisterFlagCompletionFunc("file", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}

func registerRangeCompletions(cmd *cobra.Command) {
	cmd.RegisterFlagCompletionFunc("period", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"24h\tLast 24 hours",
			"7d\tLast 7 days",
			"14d\tLast 14 days",
			"30d\tLast 30 days",
			"90d\tLast 90 days",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.RegisterFlagCompletionFunc("category", completeCategory)
}

// completeOrganization returns completions for --org from the database
func completeOrganization(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	database, err := db.New(dbPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer database.Close()

	orgs, err := database.ListOrganizations()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return orgs, cobra.ShellCompDirectiveNoFileComp
}

// completeCategory returns completions for --category, limited to the
// organization given with --org when there is one
func completeCategory(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	database, err := db.New(dbPath)
	if err != nil {
		return []string{"accepted", "rejected"}, cobra.ShellCompDirectiveNoFileComp
	}
	defer database.Close()

	org, _ := cmd.Flags().GetString("org")
	categories, err := database.ListCategories(org)
	if err != nil || len(categories) == 0 {
		return []string{"accepted", "rejected"}, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, c := range categories {
		completions = append(completions, fmt.Sprintf("%s\t%s events", c, c))
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
