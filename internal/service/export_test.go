package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"daily-journal/internal/model"
)

type fakeRange struct {
	entries []model.JournalEntry
}

func (f *fakeRange) ListByDateRange(_ context.Context, start, end time.Time) ([]model.JournalEntry, error) {
	var out []model.JournalEntry
	for _, e := range f.entries {
		if !e.Date.Before(start) && !e.Date.After(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func sampleEntries() []model.JournalEntry {
	first := model.JournalEntry{
		Date:           time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Title:          "Back to work",
		PrimaryMood:    "Stressed",
		SecondaryMoods: []string{"Anxious"},
		Category:       model.CategoryNegative,
		Notes:          "<p>Inbox <b>zero</b> &amp; coffee</p>",
		PredefinedTags: []string{"Work"},
		CustomTags:     []string{"inbox"},
	}
	second := model.JournalEntry{
		Date:        time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC),
		PrimaryMood: "Happy",
		Notes:       "<p>Snow day</p>",
	}
	return []model.JournalEntry{second, first}
}

func TestFormatReport(t *testing.T) {
	entries := sampleEntries()
	report := FormatReport(entries[1:], time.Date(2026, 1, 31, 20, 15, 0, 0, time.UTC))

	for _, want := range []string{
		"    JOURNAL EXPORT\n",
		"Generated: 31 Jan 2026 20:15\n",
		"Entries: 1\n",
		"Date: 05 Jan 2026\n",
		"Title: Back to work\n",
		"Mood: Stressed\n",
		"Secondary Moods: Anxious\n",
		"Tags: Work, inbox\n",
		"\nInbox zero & coffee\n",
		"---\n",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
	if strings.Contains(report, "<b>") {
		t.Fatalf("report kept markup:\n%s", report)
	}

	plain := FormatReport(entries[:1], time.Now())
	if strings.Contains(plain, "Secondary Moods:") || strings.Contains(plain, "Title:") || strings.Contains(plain, "Tags:") {
		t.Fatalf("optional lines should be omitted:\n%s", plain)
	}
}

func TestExportFileNameAndRange(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	if got := ExportFileName(from, to, FormatText); got != "journal_2026-01-01_to_2026-01-31.txt" {
		t.Fatalf("ExportFileName = %q", got)
	}

	today := time.Date(2026, 3, 31, 18, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"today": "2026-03-31",
		"week":  "2026-03-24",
		"month": "2026-02-28",
		"year":  "2026-01-01",
	}
	for name, wantFrom := range cases {
		f, to, err := ExportRange(name, today)
		if err != nil || model.DayKey(f) != wantFrom || model.DayKey(to) != "2026-03-31" {
			t.Fatalf("ExportRange(%q) = %s..%s, %v", name, model.DayKey(f), model.DayKey(to), err)
		}
	}
	if _, _, err := ExportRange("decade", today); err == nil {
		t.Fatalf("expected error for unknown range")
	}
}

func TestExportWritesFiles(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "exports")
	svc := NewExportService(&fakeRange{entries: sampleEntries()}, dir, fixedClock(testToday))
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	res, err := svc.Export(ctx, from, to, FormatText)
	if err != nil {
		t.Fatalf("Export txt: %v", err)
	}
	if res.Count != 2 || filepath.Base(res.Path) != "journal_2026-01-01_to_2026-01-31.txt" {
		t.Fatalf("result = %+v", res)
	}
	data, _ := os.ReadFile(res.Path)
	if strings.Index(string(data), "05 Jan 2026") > strings.Index(string(data), "07 Jan 2026") {
		t.Fatalf("export should be chronological:\n%s", data)
	}

	res, err = svc.Export(ctx, to, from, FormatCSV)
	if err != nil {
		t.Fatalf("Export csv: %v", err)
	}
	raw, _ := os.ReadFile(res.Path)
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	if err != nil || len(rows) != 3 || rows[1][0] != "2026-01-05" || rows[1][7] != "Inbox zero & coffee" {
		t.Fatalf("csv rows = %v, %v", rows, err)
	}

	res, err = svc.Export(ctx, from, to, FormatXLSX)
	if err != nil {
		t.Fatalf("Export xlsx: %v", err)
	}
	f, err := excelize.OpenFile(res.Path)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	mood, err := f.GetCellValue("Journal", "C3")
	if err != nil || mood != "Happy" {
		t.Fatalf("C3 = %q, %v", mood, err)
	}
}

func TestExportEmptyRange(t *testing.T) {
	svc := NewExportService(&fakeRange{}, t.TempDir(), fixedClock(testToday))
	_, err := svc.Export(context.Background(), testToday.AddDate(0, 0, -7), testToday, FormatText)
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}

func TestParseExportFormat(t *testing.T) {
	for in, want := range map[string]ExportFormat{"": FormatText, ".CSV": FormatCSV, "excel": FormatXLSX} {
		if got, err := ParseExportFormat(in); err != nil || got != want {
			t.Fatalf("ParseExportFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseExportFormat("pdf"); err == nil {
		t.Fatalf("expected error for pdf")
	}
}
