package snapshot

import (
	"context"
	"log/slog"
	"time"
)

// LogEvent describes one finished hydration stage, or the whole call when
// Stage is empty.
type LogEvent struct {
	RunID    string
	Stage    Stage
	Duration time.Duration
	// Count is the number of entities the stage produced.
	Count int
	// Skipped is the number of entities the stage dropped.
	Skipped int
	Cached  bool
	Err     error
}

// Logger records hydration events.
type Logger interface {
	LogHydration(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogHydration implements Logger.
func (f LoggerFunc) LogHydration(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogHydration(LogEvent) {}

// MultiLogger fans events out to every non-nil logger.
func MultiLogger(loggers ...Logger) Logger {
	out := make([]Logger, 0, len(loggers))
	for _, logger := range loggers {
		if logger != nil {
			out = append(out, logger)
		}
	}
	return LoggerFunc(func(event LogEvent) {
		for _, logger := range out {
			logger.LogHydration(event)
		}
	})
}

// SlogLogger writes events to logger. Failures log at error level, stage
// events at debug and call summaries at info.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return LoggerFunc(func(event LogEvent) {
		attrs := []slog.Attr{
			slog.String("run_id", event.RunID),
			slog.Duration("duration", event.Duration),
		}
		if event.Stage != "" {
			attrs = append(attrs, slog.String("stage", string(event.Stage)))
		}
		if event.Count > 0 {
			attrs = append(attrs, slog.Int("count", event.Count))
		}
		if event.Skipped > 0 {
			attrs = append(attrs, slog.Int("skipped", event.Skipped))
		}
		if event.Cached {
			attrs = append(attrs, slog.Bool("cached", true))
		}

		level := slog.LevelDebug
		msg := "snapshot stage"
		if event.Stage == "" {
			level = slog.LevelInfo
			msg = "snapshot hydrated"
		}
		if event.Err != nil {
			level = slog.LevelError
			msg = "snapshot hydration failed"
			attrs = append(attrs, slog.String("error", event.Err.Error()))
		}
		logger.LogAttrs(context.Background(), level, msg, attrs...)
	})
}

// log forwards event to the configured logger. A panicking logger is
// ignored so it cannot escape a hydration call.
func (h *Hydrator) log(event LogEvent) {
	defer func() {
		_ = recover()
	}()
	h.logger.LogHydration(event)
}
