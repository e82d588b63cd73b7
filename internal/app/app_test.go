package app

import (
	"context"
	"path/filepath"
	"testing"

	"daily-journal/internal/config"
	"daily-journal/internal/model"
	"daily-journal/internal/service"
)

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	return config.Config{
		DatabaseURL:  filepath.Join(dir, "journal.db"),
		DataDir:      dir,
		ExportDir:    filepath.Join(dir, "exports"),
		HistoryDir:   filepath.Join(dir, "history"),
		StreakPolicy: "strict",
		Timezone:     "UTC",
	}
}

func TestOpenSeedsOnce(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.Streaks.Policy() != service.PolicyStrict {
		t.Fatalf("policy = %v", a.Streaks.Policy())
	}
	if _, err := a.Journal.Create(ctx, service.EntryInput{PrimaryMood: "Curious"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	owner := a.Owner.ID
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()

	if b.Owner.ID != owner {
		t.Fatalf("profile recreated: %v != %v", b.Owner.ID, owner)
	}
	moods, err := b.Catalog.Moods(ctx)
	if err != nil || len(moods) != 15 {
		t.Fatalf("moods = %d, %v", len(moods), err)
	}
	if n, _ := b.Journal.Count(ctx); n != 1 {
		t.Fatalf("entries = %d", n)
	}
	grouped, _ := b.Catalog.MoodsByCategory(ctx)
	if len(grouped[model.CategoryNegative]) != 5 {
		t.Fatalf("negative moods = %v", grouped[model.CategoryNegative])
	}
}

func TestOpenRejectsBadPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.StreakPolicy = "lenient"
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown streak policy")
	}
}
