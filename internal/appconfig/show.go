// internal/appconfig/show.go
package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, cfg Config) {
	if cfg.ConfigPath == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", cfg.ConfigPath)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Root:             %s\n", cfg.RootDir())
	fmt.Fprintf(out, "  Output:           %s\n", cfg.OutputPath())
	fmt.Fprintf(out, "  Title:            %s\n", cfg.Title)
	if path := cfg.ManifestPath(); path != "" {
		fmt.Fprintf(out, "  Manifest:         %s\n", path)
	}
	fmt.Fprintf(out, "  Config Suffix:    %s\n", cfg.ConfigSuffix)
	fmt.Fprintf(out, "  Workers:          %d\n", cfg.Workers)
	if cfg.AliasFile != "" {
		fmt.Fprintf(out, "  Alias File:       %s\n", cfg.AliasFile)
	}
	if cfg.LogFile != "" {
		fmt.Fprintf(out, "  Log File:         %s\n", cfg.LogFile)
	}
	fmt.Fprintf(out, "  Debug:            %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Probe Dimensions: %v\n", cfg.ProbeDimensions)
}
