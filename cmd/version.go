package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the current version of orgstats
const Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of orgstats",
	Long:  "Print the version number of orgstats",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "orgstats version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
