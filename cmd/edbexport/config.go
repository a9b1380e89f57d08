package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/andreyvit/edbexport"
	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration file.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Export ExportConfig `yaml:"export"`
	Log    LogConfig    `yaml:"log"`
}

type StoreConfig struct {
	// Path is the Bolt database file.
	Path     string `yaml:"path"`
	MmapSize int    `yaml:"mmap_size"`
}

type ExportConfig struct {
	// Output is the XML file to write; "-" means standard output.
	Output              string          `yaml:"output"`
	Indent              bool            `yaml:"indent"`
	BinaryDataSizeLimit int             `yaml:"binary_data_size_limit"`
	SkipCollections     []string        `yaml:"skip_collections"`
	Redaction           RedactionConfig `yaml:"redaction"`
}

type RedactionConfig struct {
	Collection string   `yaml:"collection"`
	KeyField   string   `yaml:"key_field"`
	Prefixes   []string `yaml:"prefixes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	DefaultStorePath = "data.db"
	DefaultOutput    = "-"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	envPrefix        = "EDBEXPORT_"
	envListSeparator = ","
)

// LoadConfig reads a YAML configuration file and applies defaults, then
// environment overrides, then validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	return finishConfig(&cfg)
}

// DefaultConfig is the configuration used without a config file.
func DefaultConfig() (*Config, error) {
	return finishConfig(&Config{})
}

func finishConfig(cfg *Config) (*Config, error) {
	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ApplyDefaults(cfg *Config) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Export.Output == "" {
		cfg.Export.Output = DefaultOutput
	}
	if cfg.Export.BinaryDataSizeLimit == 0 {
		cfg.Export.BinaryDataSizeLimit = edbexport.DefaultBinaryDataSizeLimit
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// applyEnvOverrides applies EDBEXPORT_SECTION_FIELD variables. Malformed
// numbers and booleans are ignored.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(envPrefix + "STORE_PATH"); val != "" {
		cfg.Store.Path = val
	}
	if val := os.Getenv(envPrefix + "STORE_MMAP_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Store.MmapSize = i
		}
	}
	if val := os.Getenv(envPrefix + "EXPORT_OUTPUT"); val != "" {
		cfg.Export.Output = val
	}
	if val := os.Getenv(envPrefix + "EXPORT_INDENT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Export.Indent = b
		}
	}
	if val := os.Getenv(envPrefix + "EXPORT_BINARY_DATA_SIZE_LIMIT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Export.BinaryDataSizeLimit = i
		}
	}
	if val := os.Getenv(envPrefix + "EXPORT_SKIP_COLLECTIONS"); val != "" {
		cfg.Export.SkipCollections = splitList(val)
	}
	if val := os.Getenv(envPrefix + "EXPORT_REDACTION_PREFIXES"); val != "" {
		cfg.Export.Redaction.Prefixes = splitList(val)
	}
	if val := os.Getenv(envPrefix + "LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv(envPrefix + "LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
}

func splitList(s string) []string {
	var result []string
	for _, item := range strings.Split(s, envListSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

// FieldError is a validation failure of one configuration field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "configuration validation failed: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

func Validate(cfg *Config) error {
	var errs []FieldError
	if cfg.Store.MmapSize < 0 {
		errs = append(errs, FieldError{"store.mmap_size", "must not be negative"})
	}
	if cfg.Export.BinaryDataSizeLimit < 0 {
		errs = append(errs, FieldError{"export.binary_data_size_limit", "must not be negative"})
	}
	for i, p := range cfg.Export.Redaction.Prefixes {
		if p == "" {
			errs = append(errs, FieldError{fmt.Sprintf("export.redaction.prefixes[%d]", i), "must not be empty"})
		}
	}
	if _, err := parseLogLevel(cfg.Log.Level); err != nil {
		errs = append(errs, FieldError{"log.level", err.Error()})
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, FieldError{"log.format", fmt.Sprintf("must be text or json, got %q", cfg.Log.Format)})
	}
	if len(errs) > 0 {
		return ValidationError{errs}
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// ExportOptions maps the export section onto exporter options.
func (cfg *Config) ExportOptions(logger *slog.Logger, verbose bool) edbexport.Options {
	opt := edbexport.Options{
		BinaryDataSizeLimit: cfg.Export.BinaryDataSizeLimit,
		Indent:              cfg.Export.Indent,
		SkipCollections:     cfg.Export.SkipCollections,
		Logger:              logger,
		Verbose:             verbose,
	}
	if len(cfg.Export.Redaction.Prefixes) > 0 {
		opt.Redaction = edbexport.Redaction{
			Collection: cfg.Export.Redaction.Collection,
			KeyField:   cfg.Export.Redaction.KeyField,
			Prefixes:   cfg.Export.Redaction.Prefixes,
		}
	}
	return opt
}

func (cfg *Config) NewLogger(verbose bool) *slog.Logger {
	level, _ := parseLogLevel(cfg.Log.Level)
	if verbose {
		level = slog.LevelDebug
	}
	hopt := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, hopt))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, hopt))
}
