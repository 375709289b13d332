// internal/cli/inspect.go
package yolometrics

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/k0kubun/pp"
	"github.com/mwiater/yolometrics/internal/aliases"
	"github.com/mwiater/yolometrics/internal/report"
	"github.com/mwiater/yolometrics/internal/resolve"
	"github.com/mwiater/yolometrics/internal/scan"
	"github.com/spf13/cobra"
)

func (a *app) newInspectCmd() *cobra.Command {
	var (
		asJSON bool
		dump   bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show how every configuration under a root resolves",
		Long: `Scan --root exactly as 'generate' does and print one row per configuration with the file
chosen for each metric. --json prints the report manifest instead; --dump pretty-prints it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, runs, err := a.discover(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				data, err := report.MarshalManifest(runs, tbl)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			case dump:
				_, err := pp.Fprintln(out, report.BuildManifest(runs, tbl))
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, warningText(fmt.Sprintf("No runs with *%s directories found under %s.", tbl.ConfigSuffix(), a.cfg.RootDir())))
				return nil
			}
			renderInspect(out, runs, tbl)
			return nil
		},
	}
	addScanFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the manifest as JSON")
	cmd.Flags().BoolVar(&dump, "dump", false, "pretty-print the manifest structure")
	return cmd
}

// renderInspect prints one table row per configuration: the chosen file per metric, "-" when
// missing, and the number of gallery images.
func renderInspect(w io.Writer, runs []scan.Run, tbl *aliases.Table) {
	headers := []string{"Run", "Config"}
	for _, k := range tbl.Keys() {
		headers = append(headers, string(k))
	}
	headers = append(headers, "Images")

	var rows [][]string
	configs := 0
	for _, run := range runs {
		for _, rec := range run.Configs {
			row := []string{run.Name, rec.Name}
			for _, m := range rec.Metrics {
				row = append(row, metricCell(m))
			}
			row = append(row, fmt.Sprint(galleryImages(rec)))
			rows = append(rows, row)
			configs++
		}
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d runs, %d configurations\n", len(runs), configs)
}

func metricCell(m resolve.MetricMatch) string {
	switch {
	case !m.Found():
		return "-"
	case m.Fallback:
		return m.File + " (fallback)"
	default:
		return m.File
	}
}

func galleryImages(rec *resolve.Record) int {
	n := 0
	for _, tag := range []string{aliases.LabelsTag, aliases.PredTag, aliases.GenericTag} {
		if e, ok := rec.Entry(tag); ok {
			n += len(e.Images())
		}
	}
	return n
}

// joinKeys renders metric keys for help and summaries.
func joinKeys(keys []aliases.MetricKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
