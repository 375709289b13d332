// internal/cli/show.go
package yolometrics

import (
	"fmt"

	"github.com/mwiater/yolometrics/internal/appconfig"
	"github.com/spf13/cobra"
)

// newShowCmd builds the 'show' group for displaying resources.
func (a *app) newShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Group commands for displaying resources",
		Long:  `The 'show' command groups subcommands that display information related to yolometrics.`,
	}

	showConfigCmd := &cobra.Command{
		Use:   "config",
		Short: "Show config settings",
		Long:  `Show config settings, ensuring that the config file is loaded properly and overridden by environment and flags accordingly.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			appconfig.ShowConfig(cmd.OutOrStdout(), a.cfg)
		},
	}
	addScanFlags(showConfigCmd)
	showConfigCmd.Flags().String("output", appconfig.DefaultOutput, "report file, relative to the root unless absolute")
	showConfigCmd.Flags().String("title", appconfig.DefaultTitle, "report title")
	showConfigCmd.Flags().String("manifest", "", "JSON manifest file")

	showMetricsCmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show metric keys and the file stems matched for each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.table()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Metric keys: %s\n", joinKeys(table.Keys()))
			fmt.Fprintf(out, "Extensions:  %v\n\n", table.Extensions())
			for _, k := range table.Keys() {
				fmt.Fprintf(out, "  %-5s %s\n", k, table.CanonicalKey(k))
				for _, stem := range table.BaseStems(k) {
					fmt.Fprintf(out, "        %s\n", stem)
				}
			}
			for _, fb := range table.Fallbacks() {
				fmt.Fprintf(out, "\n  %s falls back to %s\n", fb.To, fb.From)
			}
			return nil
		},
	}
	showMetricsCmd.Flags().String("aliasFile", "", "YAML file with extra metric stems")

	showCmd.AddCommand(showConfigCmd, showMetricsCmd)
	return showCmd
}
