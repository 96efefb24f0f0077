package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	snapshot "github.com/goliatone/go-snapshot"
	"github.com/goliatone/go-snapshot/eval"
	"github.com/goliatone/go-snapshot/migration"
	"github.com/goliatone/go-snapshot/schema/openapi"
	"gopkg.in/yaml.v3"
)

// ErrHydrationFailed is returned by Run when the printed result is a
// failure. The result itself has already been written.
var ErrHydrationFailed = errors.New("hydration failed")

const shutdownTimeout = 5 * time.Second

// Run hydrates the configured input and writes the result to out. Logs go
// to errOut. stdin is read when the input is "-".
func Run(ctx context.Context, cfg Config, stdin io.Reader, out, errOut io.Writer) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	shutdown, err := setupTracing(ctx, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if shutdownErr := shutdown(shutdownCtx); shutdownErr != nil && err == nil {
			err = fmt.Errorf("shutdown tracing: %w", shutdownErr)
		}
	}()

	hydrator, err := newHydrator(cfg, errOut)
	if err != nil {
		return err
	}
	if cfg.Schema {
		return write(out, cfg.Dump, openapi.Document(
			openapi.WithInfo(openapi.Info{Version: hydrator.TargetVersion()}),
			openapi.WithMediaTypes("application/json", "application/yaml"),
			openapi.WithSchemaVersions(hydrator.Registry().Versions()...),
		))
	}

	payload, err := readPayload(cfg, stdin)
	if err != nil {
		return err
	}

	if cfg.MigrateOnly {
		result := hydrator.Migrate(ctx, payload)
		if !result.Success {
			return fmt.Errorf("migrate: %w", result.Err)
		}
		return write(out, cfg.Dump, result.Data)
	}

	opts := snapshot.HydrationOptions{
		Validate: cfg.Validate,
		Strict:   cfg.Strict,
		Fallback: cfg.Fallback,
		Timeout:  cfg.Timeout,
	}
	result := hydrator.Hydrate(ctx, payload, opts)
	if err := write(out, cfg.Dump, result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%w: %v", ErrHydrationFailed, result.Err)
	}
	return nil
}

func newHydrator(cfg Config, errOut io.Writer) (*snapshot.Hydrator, error) {
	registry := migration.DefaultRegistry()
	for _, path := range cfg.Migrations {
		migrations, err := migration.LoadCatalogFile(path)
		if err != nil {
			return nil, err
		}
		if err := registry.RegisterAll(migrations...); err != nil {
			return nil, fmt.Errorf("register %s: %w", path, err)
		}
	}

	evaluator, err := eval.New(cfg.Engine)
	if err != nil {
		return nil, err
	}

	level, err := cfg.level()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	opts := []snapshot.Option{
		snapshot.WithRegistry(registry),
		snapshot.WithEvaluator(evaluator),
		snapshot.WithLogger(snapshot.SlogLogger(logger)),
	}
	if cfg.TargetVersion != "" {
		opts = append(opts, snapshot.WithTargetVersion(cfg.TargetVersion))
	}
	return snapshot.New(opts...), nil
}

func readPayload(cfg Config, stdin io.Reader) (map[string]any, error) {
	var (
		raw []byte
		err error
	)
	if cfg.Input == "-" {
		if stdin == nil {
			return nil, errors.New("stdin is not available")
		}
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(cfg.Input)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	format := cfg.Format
	if format == "" {
		format = formatFor(cfg.Input)
	}

	var payload map[string]any
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(raw, &payload)
	default:
		err = json.Unmarshal(raw, &payload)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s input: %w", format, err)
	}
	if payload == nil {
		return nil, errors.New("input is empty")
	}
	return payload, nil
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func write(out io.Writer, dump bool, value any) error {
	if dump {
		spew.Fdump(out, value)
		return nil
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
