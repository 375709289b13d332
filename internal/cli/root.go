// internal/cli/root.go
package yolometrics

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/mwiater/yolometrics/internal/appconfig"
	"github.com/mwiater/yolometrics/internal/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	successText = color.New(color.FgGreen).SprintFunc()
	warningText = color.New(color.FgYellow).SprintFunc()
)

// app carries the state shared by every command of one root: the viper instance, the config file
// flag and the merged configuration materialized before each command runs.
type app struct {
	v       *viper.Viper
	fs      afero.Fs
	cfgFile string
	cfg     appconfig.Config
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	a := &app{v: appconfig.New(), fs: afero.NewOsFs()}

	root := &cobra.Command{
		Use:          "yolometrics",
		Short:        "yolometrics: self-contained HTML reports for YOLO evaluation runs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// 1) Merge the config file; only an explicit --config must exist.
			if err := appconfig.ReadFile(a.v, a.cfgFile, cmd.Flags().Changed("config")); err != nil {
				return err
			}

			// 2) Bind the flags this command defines so they override env and file values.
			for _, key := range appconfig.Keys {
				if f := cmd.Flags().Lookup(key); f != nil {
					if err := a.v.BindPFlag(key, f); err != nil {
						return fmt.Errorf("bind flag %s: %w", key, err)
					}
				}
			}

			// 3) Materialize the merged configuration (flags > env > file > defaults).
			cfg, err := appconfig.Decode(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg

			logging.SetDebug(cfg.Debug)
			if err := logging.Init(cfg.LogFile); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			logging.Debugf("config loaded from %q", cfg.ConfigPath)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (yaml, json or toml)")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	root.PersistentFlags().String("logFile", "", "also append log output to this file")

	root.AddCommand(
		a.newGenerateCmd(),
		a.newInspectCmd(),
		a.newAliasesCmd(),
		a.newBrowseCmd(),
		a.newShowCmd(),
		newListCmd(),
		newVersionCmd(),
	)
	return root
}

// addScanFlags registers the flags shared by every command that scans a root.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().String("root", ".", "directory holding the runs (default: working directory)")
	cmd.Flags().String("configSuffix", appconfig.DefaultConfigSuffix, "name suffix of configuration directories")
	cmd.Flags().String("aliasFile", "", "YAML file with extra metric stems")
	cmd.Flags().Int("workers", appconfig.DefaultWorkers, "configurations resolved in parallel per run")
	cmd.Flags().Bool("probeDimensions", false, "decode image headers to record pixel sizes")
}

// Execute runs the root command. Interrupts cancel the scan in progress.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}
