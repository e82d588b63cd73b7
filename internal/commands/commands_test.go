package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"daily-journal/internal/model"
	"daily-journal/internal/repository"
	"daily-journal/internal/service"
)

func newTestConfig(t *testing.T) string {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	t.Setenv("DAILYJOURNAL_DATA_DIR", dir)
	t.Setenv("DAILYJOURNAL_PASSCODE", "")
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("DATABASE_URL", "")

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("timezone: UTC\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveDate(t *testing.T) {
	today := time.Date(2026, 10, 19, 22, 30, 0, 0, time.UTC)
	cases := map[string]string{
		"":           "2026-10-19",
		"today":      "2026-10-19",
		"yesterday":  "2026-10-18",
		"2026-01-31": "2026-01-31",
	}
	for in, want := range cases {
		got, err := resolveDate(in, today)
		if err != nil {
			t.Fatalf("resolveDate(%q): %v", in, err)
		}
		if model.DayKey(got) != want {
			t.Errorf("resolveDate(%q) = %s, want %s", in, model.DayKey(got), want)
		}
	}
	if _, err := resolveDate("31/01/2026", today); err == nil {
		t.Fatal("expected an error for an unsupported layout")
	}
}

func TestWriteShowAndDuplicate(t *testing.T) {
	cfg := newTestConfig(t)

	out, err := execute(t, cfg, "write", "-m", "happy", "-t", "family", "--date", "2026-10-18", "--text", "Dinner with the kids")
	if err != nil {
		t.Fatalf("write: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Saved entry for 2026-10-18 (4 words)") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	_, err = execute(t, cfg, "write", "-m", "sad", "--date", "2026-10-18", "--text", "again")
	if !errors.Is(err, repository.ErrUniqueDate) {
		t.Fatalf("second write err = %v, want ErrUniqueDate", err)
	}

	_, err = execute(t, cfg, "write", "-m", "sleepy", "--date", "2026-10-17", "--text", "x")
	if !errors.Is(err, service.ErrUnknownMood) {
		t.Fatalf("unknown mood err = %v", err)
	}

	out, err = execute(t, cfg, "show", "--date", "2026-10-18", "--json")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var entry model.JournalEntry
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if entry.PrimaryMood != "Happy" || entry.Category != model.CategoryPositive {
		t.Fatalf("mood = %q/%q", entry.PrimaryMood, entry.Category)
	}
	if entry.Notes != "<p>Dinner with the kids</p>" {
		t.Fatalf("notes = %q", entry.Notes)
	}
}

func TestPasscodeLocksEntryCommands(t *testing.T) {
	cfg := newTestConfig(t)

	if _, err := execute(t, cfg, "write", "-m", "calm", "--date", "2026-10-18", "--text", "quiet day"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if out, err := execute(t, cfg, "passcode", "set", "2468"); err != nil {
		t.Fatalf("passcode set: %v\n%s", err, out)
	}

	_, err := execute(t, cfg, "show", "--date", "2026-10-18")
	if !errors.Is(err, service.ErrWrongPasscode) {
		t.Fatalf("locked show err = %v", err)
	}
	out, err := execute(t, cfg, "--passcode", "2468", "show", "--date", "2026-10-18")
	if err != nil {
		t.Fatalf("unlocked show: %v", err)
	}
	if !strings.Contains(out, "quiet day") {
		t.Fatalf("entry text missing:\n%s", out)
	}

	out, err = execute(t, cfg, "passcode")
	if err != nil || !strings.Contains(out, "Passcode lock is on.") {
		t.Fatalf("passcode status = %q, %v", out, err)
	}
}

func TestJSONErrorsAreReported(t *testing.T) {
	cfg := newTestConfig(t)

	out, err := execute(t, cfg, "show", "--date", "2026-10-01", "--json")
	if err != nil {
		t.Fatalf("show --json should report errors in the payload, got %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload["error"] == "" {
		t.Fatalf("payload = %v", payload)
	}
}
