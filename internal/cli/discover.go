// internal/cli/discover.go
package yolometrics

import (
	"fmt"
	"path/filepath"

	"github.com/mwiater/yolometrics/internal/aliases"
	"github.com/mwiater/yolometrics/internal/logging"
	"github.com/mwiater/yolometrics/internal/scan"
	"github.com/spf13/cobra"
)

func (a *app) table() (*aliases.Table, error) {
	return aliases.Build(a.cfg.AliasFile, a.cfg.ConfigSuffix)
}

func (a *app) scanner(table *aliases.Table) *scan.Scanner {
	return scan.New(a.fs, table, scan.Options{
		Workers:         a.cfg.Workers,
		ProbeDimensions: a.cfg.ProbeDimensions,
	})
}

func (a *app) rootPath() (string, error) {
	root, err := filepath.Abs(a.cfg.RootDir())
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", a.cfg.RootDir(), err)
	}
	return root, nil
}

// discover builds the alias table and scans the configured root.
func (a *app) discover(cmd *cobra.Command) (*aliases.Table, []scan.Run, error) {
	table, err := a.table()
	if err != nil {
		return nil, nil, err
	}
	root, err := a.rootPath()
	if err != nil {
		return nil, nil, err
	}
	runs, err := a.scanner(table).Discover(cmd.Context(), root)
	if err != nil {
		return nil, nil, err
	}
	logging.Debugf("discovered %d runs under %s", len(runs), root)
	return table, runs, nil
}
