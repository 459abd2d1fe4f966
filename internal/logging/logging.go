// Package logging builds the application's *slog.Logger. Records go to
// stdout (coloured text through tint, or JSON) and, when configured, are also
// forwarded to a Fluent Bit collector.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"
)

// Config describes where and how log records are written.
type Config struct {
	Writer io.Writer  // defaults to os.Stdout
	Level  slog.Level // minimum level for every handler
	Format string     // "text" (tint) or "json"

	FluentEnabled bool
	FluentHost    string
	FluentPort    int
	FluentTag     string
}

// New returns a logger and a close function that flushes any remote sink.
func New(cfg Config) (*slog.Logger, func() error, error) {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(cfg.Writer, &slog.HandlerOptions{Level: cfg.Level})
	default:
		handler = tint.NewHandler(cfg.Writer, &tint.Options{
			Level:      cfg.Level,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}

	closeFn := func() error { return nil }

	if cfg.FluentEnabled {
		client, err := fluent.New(fluent.Config{
			FluentHost: cfg.FluentHost,
			FluentPort: cfg.FluentPort,
			Async:      true,
		})
		if err != nil {
			return nil, nil, err
		}
		tag := cfg.FluentTag
		if tag == "" {
			tag = "vacation-rentals"
		}
		handler = Fanout(handler, NewFluentHandler(client, tag, cfg.Level))
		closeFn = client.Close
	}

	return slog.New(handler), closeFn, nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("unknown log level " + s)
	}
}

type fanout []slog.Handler

// Fanout returns a handler that hands every record to each of handlers.
func Fanout(handlers ...slog.Handler) slog.Handler {
	return fanout(handlers)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
