// internal/cli/browse.go
package yolometrics

import (
	"context"

	"github.com/mwiater/yolometrics/internal/scan"
	"github.com/mwiater/yolometrics/internal/tui"
	"github.com/spf13/cobra"
)

func (a *app) newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse runs and configurations in the terminal",
		Long:  `Open an interactive browser over the runs under --root: pick a run, then a configuration, to see which file each metric resolved to.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.table()
			if err != nil {
				return err
			}
			root, err := a.rootPath()
			if err != nil {
				return err
			}
			scanner := a.scanner(table)
			return tui.Run(cmd.Context(), root, table, func(ctx context.Context) ([]scan.Run, error) {
				return scanner.Discover(ctx, root)
			})
		},
	}
	addScanFlags(cmd)
	return cmd
}
