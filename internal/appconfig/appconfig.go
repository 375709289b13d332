// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is the config file read when --config is not given. It may be absent.
	DefaultConfigPath = "yolometrics.yaml"
	// DefaultOutput is the report file name, resolved against the root when relative.
	DefaultOutput = "YOLOmetrics_report.html"
	// DefaultTitle heads the generated report.
	DefaultTitle = "YOLOmetrics Report"
	// DefaultConfigSuffix marks configuration directories.
	DefaultConfigSuffix = "_config"
	// DefaultWorkers resolves configurations sequentially.
	DefaultWorkers = 1
	// EnvPrefix prefixes environment overrides, e.g. YOLOMETRICS_TITLE.
	EnvPrefix = "YOLOMETRICS"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the top-level application configuration.
type Config struct {
	Root            string `json:"root" mapstructure:"root"`
	Output          string `json:"output" mapstructure:"output"`
	Title           string `json:"title" mapstructure:"title"`
	Manifest        string `json:"manifest,omitempty" mapstructure:"manifest"`
	ConfigSuffix    string `json:"configSuffix" mapstructure:"configSuffix"`
	Workers         int    `json:"workers" mapstructure:"workers"`
	AliasFile       string `json:"aliasFile,omitempty" mapstructure:"aliasFile"`
	LogFile         string `json:"logFile,omitempty" mapstructure:"logFile"`
	Debug           bool   `json:"debug" mapstructure:"debug"`
	ProbeDimensions bool   `json:"probeDimensions" mapstructure:"probeDimensions"`
	ConfigPath      string `json:"-" mapstructure:"-"`
}

// Keys lists every configuration key, in the order ShowConfig prints them.
var Keys = []string{
	"root",
	"output",
	"title",
	"manifest",
	"configSuffix",
	"workers",
	"aliasFile",
	"logFile",
	"debug",
	"probeDimensions",
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("title", DefaultTitle)
	v.SetDefault("manifest", "")
	v.SetDefault("configSuffix", DefaultConfigSuffix)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("aliasFile", "")
	v.SetDefault("logFile", "")
	v.SetDefault("debug", false)
	v.SetDefault("probeDimensions", false)
}

// New returns a viper instance carrying the defaults and YOLOMETRICS_* environment overrides.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// ReadFile merges the config file at path into v. A missing file is an error only when the path
// was asked for explicitly. The format follows the file extension.
func ReadFile(v *viper.Viper, path string, explicit bool) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !explicit && (errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)) {
			return nil
		}
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return nil
}

// Decode materializes the merged state of v (flags > env > file > defaults) and validates it.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot drive a generation pass.
func (c Config) Validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	case strings.TrimSpace(c.ConfigSuffix) == "":
		return fmt.Errorf("%w: configSuffix must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Title) == "":
		return fmt.Errorf("%w: title must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Output) == "":
		return fmt.Errorf("%w: output must not be empty", ErrInvalidConfig)
	}
	return nil
}

// RootDir returns the scan root, defaulting to the working directory.
func (c Config) RootDir() string {
	if strings.TrimSpace(c.Root) == "" {
		return "."
	}
	return c.Root
}

// OutputPath resolves the report path against the root when it is relative.
func (c Config) OutputPath() string {
	return c.underRoot(c.Output)
}

// ManifestPath resolves the manifest path like OutputPath. It is empty when no manifest is wanted.
func (c Config) ManifestPath() string {
	if strings.TrimSpace(c.Manifest) == "" {
		return ""
	}
	return c.underRoot(c.Manifest)
}

func (c Config) underRoot(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.RootDir(), p)
}
