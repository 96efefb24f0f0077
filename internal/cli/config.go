// Package cli implements snapshotctl: read a snapshot file, optionally load
// migration catalogs, hydrate it and print the result.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds snapshotctl settings. Environment variables provide the
// defaults and flags override them.
type Config struct {
	Input         string        `env:"SNAPSHOT_INPUT"`
	Format        string        `env:"SNAPSHOT_FORMAT"`
	TargetVersion string        `env:"SNAPSHOT_TARGET_VERSION"`
	Strict        bool          `env:"SNAPSHOT_STRICT"`
	Validate      bool          `env:"SNAPSHOT_VALIDATE" envDefault:"true"`
	Fallback      bool          `env:"SNAPSHOT_FALLBACK"`
	Timeout       time.Duration `env:"SNAPSHOT_TIMEOUT"`
	Migrations    []string      `env:"SNAPSHOT_MIGRATIONS" envSeparator:","`
	Engine        string        `env:"SNAPSHOT_ENGINE" envDefault:"expr"`
	LogLevel      string        `env:"SNAPSHOT_LOG_LEVEL" envDefault:"warn"`
	OTelEndpoint  string        `env:"SNAPSHOT_OTEL_ENDPOINT"`
	MigrateOnly   bool          `env:"SNAPSHOT_MIGRATE_ONLY"`
	Dump          bool
	Schema        bool
}

// Input formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type listFlag struct {
	values *[]string
	set    bool
}

func (f *listFlag) String() string {
	if f.values == nil {
		return ""
	}
	return strings.Join(*f.values, ",")
}

// Set replaces the env-provided list on first use and appends afterwards.
func (f *listFlag) Set(value string) error {
	if !f.set {
		*f.values = nil
		f.set = true
	}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*f.values = append(*f.values, part)
		}
	}
	return nil
}

// ParseConfig loads defaults from the environment, then parses flags. A
// single positional argument is accepted as the input path.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Input, "in", cfg.Input, "snapshot file to hydrate, - for stdin")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "input format: json or yaml (default from file extension)")
	fs.StringVar(&cfg.TargetVersion, "target", cfg.TargetVersion, "schema version to migrate to")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "fail on the first malformed entity")
	fs.BoolVar(&cfg.Validate, "validate", cfg.Validate, "run the validation stage")
	fs.BoolVar(&cfg.Fallback, "fallback", cfg.Fallback, "hydrate the original payload when migration fails")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "bound the hydration call")
	fs.Var(&listFlag{values: &cfg.Migrations}, "migrations", "migration catalog files, comma separated or repeated")
	fs.StringVar(&cfg.Engine, "engine", cfg.Engine, "expression engine for catalog steps: expr, cel or js")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "OTLP/HTTP endpoint URL for traces")
	fs.BoolVar(&cfg.MigrateOnly, "migrate-only", cfg.MigrateOnly, "print the migrated payload instead of hydrating")
	fs.BoolVar(&cfg.Dump, "dump", false, "print the result with go-spew instead of JSON")
	fs.BoolVar(&cfg.Schema, "schema", false, "print the OpenAPI document of the snapshot format and exit")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		if cfg.Input != "" && cfg.Input != rest[0] {
			return Config{}, errors.New("input given both as -in and as an argument")
		}
		cfg.Input = rest[0]
	default:
		return Config{}, fmt.Errorf("expected one input file, got %d", len(rest))
	}

	if strings.TrimSpace(cfg.Input) == "" && !cfg.Schema {
		return Config{}, errors.New("input is required")
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	switch cfg.Format {
	case "", FormatJSON, FormatYAML:
	case "yml":
		cfg.Format = FormatYAML
	default:
		return Config{}, fmt.Errorf("unsupported format %q", cfg.Format)
	}
	if _, err := cfg.level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
