// internal/cli/generate.go
package yolometrics

import (
	"fmt"
	"time"

	"github.com/mwiater/yolometrics/internal/appconfig"
	"github.com/mwiater/yolometrics/internal/logging"
	"github.com/mwiater/yolometrics/internal/report"
	"github.com/mwiater/yolometrics/internal/util"
	"github.com/spf13/cobra"
)

func (a *app) newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Scan a root and write the HTML report",
		Long: `Discover runs under --root, resolve every configuration directory into its metric
images and galleries, and write one self-contained HTML report. Relative --output and
--manifest paths are resolved against the root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd)
		},
	}
	addScanFlags(cmd)
	cmd.Flags().String("output", appconfig.DefaultOutput, "report file, relative to the root unless absolute")
	cmd.Flags().String("title", appconfig.DefaultTitle, "report title")
	cmd.Flags().String("manifest", "", "also write a JSON manifest to this file")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	table, runs, err := a.discover(cmd)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, warningText(fmt.Sprintf("No runs with *%s directories found under %s; writing an empty report.", table.ConfigSuffix(), a.cfg.RootDir())))
	}

	doc, err := report.Generate(runs, table, report.Options{Title: a.cfg.Title, Generated: time.Now()})
	if err != nil {
		return err
	}
	outputPath := a.cfg.OutputPath()
	if err := util.WriteFile(a.fs, outputPath, doc); err != nil {
		return err
	}
	configs := 0
	for _, run := range runs {
		configs += len(run.Configs)
	}
	logging.LogEvent("wrote report %s (%s): %d runs, %d configurations", outputPath, util.HumanBytes(len(doc)), len(runs), configs)
	fmt.Fprintln(out, successText("Wrote "+outputPath))

	if manifestPath := a.cfg.ManifestPath(); manifestPath != "" {
		data, err := report.MarshalManifest(runs, table)
		if err != nil {
			return err
		}
		if err := util.WriteFile(a.fs, manifestPath, data); err != nil {
			return err
		}
		fmt.Fprintln(out, successText("Wrote "+manifestPath))
	}
	return nil
}
