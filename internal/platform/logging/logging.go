// Package logging builds the service's slog logger and carries request-scoped
// loggers through context.
//
// Loggers are created once at startup:
//
//	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
//
// The HTTP middleware stores a logger enriched with request_id and
// correlation_id in the request context. Code that runs under a request
// recovers it with FromContext, or FromContextOr when it owns a logger of its
// own:
//
//	logging.FromContextOr(ctx, s.logger).WarnContext(ctx, "component check timed out",
//	    slog.String("component", name),
//	)
//
// Component logs name the component under the "component" key. Errors go
// under "error" via slog.Any so the full chain is kept.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type loggerKey struct{}

type handlerFunc func(io.Writer, *slog.HandlerOptions) slog.Handler

var handlers = map[string]handlerFunc{
	"json": func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewJSONHandler(w, o) },
	"text": func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, o) },
}

// New returns a logger writing to w. Level accepts any name slog understands
// ("debug", "INFO", "warn+2"); anything else logs at info. Format selects the
// "json" or "text" handler, falling back to json. Source locations are only
// attached at debug. Secrets are redacted on every handler.
func New(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	build, ok := handlers[format]
	if !ok {
		build = handlers["json"]
	}

	return slog.New(build(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl <= slog.LevelDebug,
		ReplaceAttr: newRedactAttr(),
	}))
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOr(ctx, slog.Default())
}

// FromContextOr returns the logger stored in ctx, or fallback.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}
