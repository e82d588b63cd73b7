package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMultiHandlerFansOut(t *testing.T) {
	var text, js bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&text, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&js, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	logger := slog.New(h).With("component", "test")

	logger.Info("saved entry")
	logger.Warn("snapshot refresh failed")

	if !strings.Contains(text.String(), "saved entry") || !strings.Contains(text.String(), "snapshot refresh failed") {
		t.Fatalf("text handler missed records: %s", text.String())
	}
	if strings.Contains(js.String(), "saved entry") || !strings.Contains(js.String(), `"component":"test"`) {
		t.Fatalf("json handler level/attrs wrong: %s", js.String())
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) || h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("Enabled should follow the most verbose handler")
	}
}

func TestSetupWritesLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "journal.log")
	closeFn, err := Setup("info", "text", path)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	slog.Info("hello file")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(data), "hello file") {
		t.Fatalf("log file = %q, %v", data, err)
	}
}

func TestSentryDisabledWithoutDSN(t *testing.T) {
	flush := InitSentry("", "test", "")
	flush()
	CaptureError(errors.New("boom"), "test failure")
	CaptureError(nil, "ignored")
}
