package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Inspect or reset the saved chart range",
	Long:  "The chart saves the committed range of each organization as a query string. These commands show or remove it.",
}

var paramsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved range for the organization",
	Args:  cobra.NoArgs,
	RunE:  runParamsShow,
}

var paramsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the saved range for the organization",
	Args:  cobra.NoArgs,
	RunE:  runParamsClear,
}

func init() {
	rootCmd.AddCommand(paramsCmd)
	paramsCmd.AddCommand(paramsShowCmd)
	paramsCmd.AddCommand(paramsClearCmd)
}

func runParamsShow(cmd *cobra.Command, args []string) error {
	org, err := resolveOrganization()
	if err != nil {
		return err
	}

	store := newParamsStore()
	p, ok, err := store.Load(org)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "No saved range for %s\n", org)
		return nil
	}

	r, err := p.Range()
	if err != nil {
		return fmt.Errorf("saved range for %s is invalid: %w", org, err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Organization: %s\n", org)
	fmt.Fprintf(w, "Query:        %s\n", p.Encode())
	fmt.Fprintf(w, "Range:        %s\n", r)
	fmt.Fprintf(w, "Directory:    %s\n", store.Dir())
	return nil
}

func runParamsClear(cmd *cobra.Command, args []string) error {
	org, err := resolveOrganization()
	if err != nil {
		return err
	}

	if err := newParamsStore().Clear(org); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared saved range for %s\n", org)
	return nil
}
