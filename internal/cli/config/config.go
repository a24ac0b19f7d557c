// Package config loads and validates the CLI configuration from all
// sources: built-in defaults, a YAML config file, DEODEXER_* environment
// variables, and command-line flags, in ascending priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/odexlab/deodexer/pkg/deodex"
)

const (
	// EnvPrefix namespaces environment overrides, e.g. DEODEXER_API_LEVEL.
	EnvPrefix = "DEODEXER"
	// DefaultConfigName is the config file stem searched in standard
	// locations when --config is not given.
	DefaultConfigName = "deodexer"
)

// Settings is the full CLI configuration: engine options plus the
// CLI-only knobs that never reach the core library.
type Settings struct {
	Options deodex.Options `mapstructure:"-"`

	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
	ReportFormat   string `mapstructure:"reportFormat"`
	ReportDir      string `mapstructure:"reportDir"`
	HistoryPath    string `mapstructure:"historyPath"`
	NoHistory      bool   `mapstructure:"noHistory"`
	NoProgress     bool   `mapstructure:"noProgress"`
}

// LoadAndValidate merges all configuration sources, validates the result,
// and returns populated settings together with the final logger.
func LoadAndValidate(cfgFile string, verbose bool, flags *pflag.FlagSet) (Settings, *slog.Logger, error) {
	var s Settings
	v := viper.New()

	// Temporary logger for faults during loading itself.
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags")
		} else {
			return s, tempLogger, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		tempLogger.Debug("Using configuration file", slog.String("path", v.ConfigFileUsed()))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Flags win over file and environment.
	flagKeys := []string{
		"input", "output", "framework", "tool", "java", "api-level",
		"workers", "timeout", "extension", "exclude", "report-format", "report-dir",
		"history-path", "no-history", "no-progress", "dry-run", "validate",
	}
	for _, key := range flagKeys {
		if flag := flags.Lookup(key); flag != nil {
			if err := v.BindPFlag(configKeyForFlag(key), flag); err != nil {
				return s, tempLogger, fmt.Errorf("error binding flag '--%s': %w", key, err)
			}
		}
	}

	if err := v.Unmarshal(&s); err != nil {
		return s, tempLogger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}
	if err := v.UnmarshalKey("deodex", &s.Options); err != nil {
		return s, tempLogger, fmt.Errorf("error unmarshalling engine options: %w", err)
	}

	// Core paths from explicit flags take absolute precedence.
	applyStringFlag(flags, "input", &s.Options.InputDir)
	applyStringFlag(flags, "output", &s.Options.OutputDir)
	applyStringFlag(flags, "framework", &s.Options.FrameworkDir)
	applyStringFlag(flags, "tool", &s.Options.ToolPath)
	applyBoolFlag(flags, "dry-run", &s.Options.DryRun)
	applyBoolFlag(flags, "no-history", &s.NoHistory)
	applyBoolFlag(flags, "no-progress", &s.NoProgress)
	applyBoolFlag(flags, "validate", &s.Options.ValidateInputs)

	s.Options.Verbose = verbose
	if s.TimeoutSeconds > 0 {
		s.Options.BaseTimeout = time.Duration(s.TimeoutSeconds) * time.Second
	}

	// Final logger, debug level when verbose.
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	s.Options.Logger = logHandler

	if err := validate(&s); err != nil {
		return s, logger, err
	}
	return s, logger, nil
}

// setDefaults registers the built-in defaults for all configuration keys.
func setDefaults(v *viper.Viper) {
	v.SetDefault("deodex.javaPath", deodex.DefaultJavaBinary)
	v.SetDefault("deodex.apiLevel", deodex.DefaultAPILevel)
	v.SetDefault("deodex.maxWorkers", deodex.DefaultMaxWorkers)
	v.SetDefault("deodex.extension", deodex.DefaultExtension)
	v.SetDefault("deodex.validate", false)
	v.SetDefault("timeoutSeconds", int(deodex.DefaultBaseTimeout/time.Second))
	v.SetDefault("reportFormat", string(deodex.ExportJSON))
	v.SetDefault("reportDir", ".")
	v.SetDefault("historyPath", DefaultHistoryPath())
	v.SetDefault("noHistory", false)
	v.SetDefault("noProgress", false)
}

// configKeyForFlag maps flag names onto viper keys.
func configKeyForFlag(flag string) string {
	switch flag {
	case "input":
		return "deodex.inputDir"
	case "output":
		return "deodex.outputDir"
	case "framework":
		return "deodex.frameworkDir"
	case "tool":
		return "deodex.toolPath"
	case "java":
		return "deodex.javaPath"
	case "api-level":
		return "deodex.apiLevel"
	case "workers":
		return "deodex.maxWorkers"
	case "extension":
		return "deodex.extension"
	case "exclude":
		return "deodex.exclude"
	case "dry-run":
		return "deodex.dryRun"
	case "validate":
		return "deodex.validate"
	case "timeout":
		return "timeoutSeconds"
	case "report-format":
		return "reportFormat"
	case "report-dir":
		return "reportDir"
	case "history-path":
		return "historyPath"
	case "no-history":
		return "noHistory"
	case "no-progress":
		return "noProgress"
	}
	return flag
}

// validate checks the merged configuration for the faults the engine would
// otherwise reject later, so errors surface with CLI context attached.
func validate(s *Settings) error {
	if s.Options.InputDir == "" {
		return fmt.Errorf("%w: input directory is required (--input)", deodex.ErrConfigValidation)
	}
	if s.Options.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required (--output)", deodex.ErrConfigValidation)
	}
	if s.Options.FrameworkDir == "" {
		return fmt.Errorf("%w: framework directory is required (--framework)", deodex.ErrConfigValidation)
	}
	if s.Options.ToolPath == "" {
		return fmt.Errorf("%w: baksmali jar path is required (--tool)", deodex.ErrConfigValidation)
	}
	if s.Options.MaxWorkers < 0 || s.Options.MaxWorkers > deodex.MaxWorkersLimit {
		return fmt.Errorf("%w: workers must be between 1 and %d", deodex.ErrConfigValidation, deodex.MaxWorkersLimit)
	}
	if s.Options.APILevel <= 0 {
		return fmt.Errorf("%w: api level must be positive", deodex.ErrConfigValidation)
	}
	switch deodex.ExportFormat(s.ReportFormat) {
	case deodex.ExportJSON, deodex.ExportCSV:
	default:
		return fmt.Errorf("%w: report format must be %q or %q", deodex.ErrConfigValidation, deodex.ExportJSON, deodex.ExportCSV)
	}
	return nil
}

// DefaultHistoryPath places the history database under the user config
// directory, falling back to the working directory.
func DefaultHistoryPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, DefaultConfigName, "history.db")
	}
	return "deodexer_history.db"
}

// defaultConfig is the template written by WriteDefault, mirroring the
// registered viper defaults.
type defaultConfig struct {
	Deodex struct {
		JavaPath     string `yaml:"javaPath"`
		APILevel     int    `yaml:"apiLevel"`
		MaxWorkers   int    `yaml:"maxWorkers"`
		Extension    string `yaml:"extension"`
		FrameworkDir string `yaml:"frameworkDir"`
		ToolPath     string `yaml:"toolPath"`
		Validate     bool   `yaml:"validate"`
	} `yaml:"deodex"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	ReportFormat   string `yaml:"reportFormat"`
	ReportDir      string `yaml:"reportDir"`
	HistoryPath    string `yaml:"historyPath"`
}

// WriteDefault writes a starter YAML configuration to path. An existing
// file is never overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %q already exists", path)
	}

	var cfg defaultConfig
	cfg.Deodex.JavaPath = deodex.DefaultJavaBinary
	cfg.Deodex.APILevel = deodex.DefaultAPILevel
	cfg.Deodex.MaxWorkers = deodex.DefaultMaxWorkers
	cfg.Deodex.Extension = deodex.DefaultExtension
	cfg.TimeoutSeconds = int(deodex.DefaultBaseTimeout / time.Second)
	cfg.ReportFormat = string(deodex.ExportJSON)
	cfg.ReportDir = "."
	cfg.HistoryPath = DefaultHistoryPath()

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}
	return nil
}

func applyStringFlag(flags *pflag.FlagSet, name string, dst *string) {
	if flags != nil && flags.Changed(name) {
		if val, err := flags.GetString(name); err == nil && val != "" {
			*dst = val
		}
	}
}

func applyBoolFlag(flags *pflag.FlagSet, name string, dst *bool) {
	if flags != nil && flags.Changed(name) {
		if val, err := flags.GetBool(name); err == nil {
			*dst = val
		}
	}
}
