// Package logging provides structured logging tagged with service, version
// and the game session a record belongs to.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samber/oops"
)

type sessionKey struct{}

// WithSession returns a context whose log records carry the session id.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFrom returns the session id stored by WithSession.
func SessionFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok && id != ""
}

// sessionHandler wraps a slog.Handler to add service and session context.
type sessionHandler struct {
	handler slog.Handler
	service string
	version string
}

// Handle adds the service, version and session id to the record.
func (h *sessionHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)
	if id, ok := SessionFrom(ctx); ok {
		r.AddAttrs(slog.String("session_id", id))
	}
	return h.handler.Handle(ctx, r)
}

func (h *sessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionHandler{
		handler: h.handler.WithAttrs(attrs),
		service: h.service,
		version: h.version,
	}
}

func (h *sessionHandler) WithGroup(name string) slog.Handler {
	return &sessionHandler{
		handler: h.handler.WithGroup(name),
		service: h.service,
		version: h.version,
	}
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "text" if empty)
// If w is nil, writes to os.Stderr.
func Setup(service, version, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	var base slog.Handler
	if format == "json" {
		base = slog.NewJSONHandler(w, opts)
	} else {
		base = slog.NewTextHandler(w, opts)
	}

	return slog.New(&sessionHandler{handler: base, service: service, version: version})
}

// SetDefault sets up and installs the default logger.
func SetDefault(service, version, format string, w io.Writer) *slog.Logger {
	logger := Setup(service, version, format, w)
	slog.SetDefault(logger)
	return logger
}

// LogError logs an error with structured context if it's an oops error.
// For oops errors the code and context are logged as attributes.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{"error", oopsErr.Error()}
		if code := ErrorCode(err); code != "" {
			attrs = append(attrs, "code", code)
		}
		if c := oopsErr.Context(); len(c) > 0 {
			attrs = append(attrs, "context", c)
		}
		logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	logger.ErrorContext(ctx, msg, "error", err)
}

// ErrorCode returns the oops code attached to err, or "" if there is none.
func ErrorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code := fmt.Sprint(oopsErr.Code())
	if code == "<nil>" {
		return ""
	}
	return code
}
