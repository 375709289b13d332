// internal/cli/aliases.go
package yolometrics

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mwiater/yolometrics/internal/appconfig"
	"github.com/spf13/cobra"
)

func (a *app) newAliasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "Print the alias payload embedded in reports",
		Long: `Print the alias payload (metric keys, expanded file stems, extensions, configuration suffix and
fallbacks) that 'generate' embeds for the in-page loader. Stems from --aliasFile are merged in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.table()
			if err != nil {
				return err
			}
			data, err := table.MarshalPayload()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, data, "", "  "); err != nil {
				return fmt.Errorf("format alias payload: %w", err)
			}
			buf.WriteByte('\n')
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().String("aliasFile", "", "YAML file with extra metric stems")
	cmd.Flags().String("configSuffix", appconfig.DefaultConfigSuffix, "name suffix of configuration directories")
	return cmd
}
