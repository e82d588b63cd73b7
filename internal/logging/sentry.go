package logging

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry enables error reporting when dsn is set. The returned func flushes
// pending events and is safe to call when reporting is disabled.
func InitSentry(dsn, environment, release string) func() {
	if dsn == "" {
		return func() {}
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		TracesSampleRate: 0.2,
	}); err != nil {
		slog.Error("sentry init failed", "error", err)
		return func() {}
	}
	return func() { sentry.Flush(2 * time.Second) }
}

// CaptureError logs err and forwards it to Sentry if reporting is enabled.
func CaptureError(err error, msg string, attrs ...any) {
	if err == nil {
		return
	}
	slog.Error(msg, append(attrs, "error", err)...)
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("operation", msg)
			hub.CaptureException(err)
		})
	}
}
