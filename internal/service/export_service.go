package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"daily-journal/internal/model"
	"daily-journal/internal/richtext"
)

var ErrNothingToExport = errors.New("no entries in the selected range")

// ExportFormat is the output file type.
type ExportFormat string

const (
	FormatText ExportFormat = "txt"
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

func ParseExportFormat(value string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), "."))) {
	case "", FormatText, "text":
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown export format %q", value)
	}
}

const (
	reportRule       = "================================="
	reportDateLayout = "02 Jan 2006"
)

// FormatReport renders entries as a plain text report in the order given.
func FormatReport(entries []model.JournalEntry, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString(reportRule + "\n")
	b.WriteString("    JOURNAL EXPORT\n")
	b.WriteString(reportRule + "\n")
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.Format("02 Jan 2006 15:04"))
	fmt.Fprintf(&b, "Entries: %d\n\n", len(entries))

	for _, e := range entries {
		fmt.Fprintf(&b, "Date: %s\n", e.Date.Format(reportDateLayout))
		if e.Title != "" {
			fmt.Fprintf(&b, "Title: %s\n", e.Title)
		}
		fmt.Fprintf(&b, "Mood: %s\n", e.PrimaryMood)
		if len(e.SecondaryMoods) > 0 {
			fmt.Fprintf(&b, "Secondary Moods: %s\n", strings.Join(e.SecondaryMoods, ", "))
		}
		if tags := e.Tags(); len(tags) > 0 {
			fmt.Fprintf(&b, "Tags: %s\n", strings.Join(tags, ", "))
		}
		if body := richtext.PlainText(e.Notes); body != "" {
			b.WriteString("\n" + body + "\n")
		}
		b.WriteString("---\n\n")
	}
	return b.String()
}

// ExportFileName embeds the range, e.g. journal_2026-01-01_to_2026-01-31.txt.
func ExportFileName(from, to time.Time, format ExportFormat) string {
	return fmt.Sprintf("journal_%s_to_%s.%s", model.DayKey(from), model.DayKey(to), format)
}

// ExportRange resolves a quick range name relative to today. "year" starts on January 1.
func ExportRange(name string, today time.Time) (from, to time.Time, err error) {
	to = model.DateOnly(today)
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "today":
		return to, to, nil
	case "week", "":
		return to.AddDate(0, 0, -7), to, nil
	case "month":
		return model.AddMonths(to, -1), to, nil
	case "year":
		return time.Date(to.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), to, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown range %q, expected today, week, month or year", name)
	}
}

// RangeLister reads entries within an inclusive date range.
type RangeLister interface {
	ListByDateRange(ctx context.Context, start, end time.Time) ([]model.JournalEntry, error)
}

// ExportResult describes a written export file.
type ExportResult struct {
	Path   string `json:"path"`
	Count  int    `json:"count"`
	Format string `json:"format"`
}

// ExportService writes entry ranges to files in a directory.
type ExportService struct {
	entries RangeLister
	dir     string
	now     Clock
}

func NewExportService(entries RangeLister, dir string, now Clock) *ExportService {
	if now == nil {
		now = SystemClock(time.Local)
	}
	return &ExportService{entries: entries, dir: dir, now: now}
}

// Export writes the entries between from and to, oldest first.
func (s *ExportService) Export(ctx context.Context, from, to time.Time, format ExportFormat) (*ExportResult, error) {
	from, to = model.DateOnly(from), model.DateOnly(to)
	if to.Before(from) {
		from, to = to, from
	}
	entries, err := s.entries.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load entries for export: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNothingToExport
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })

	var buf bytes.Buffer
	if err := Render(&buf, entries, format, s.now()); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir %q: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, ExportFileName(from, to, format))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write export: %w", err)
	}
	slog.Info("journal exported", "path", path, "entries", len(entries), "format", format)
	return &ExportResult{Path: path, Count: len(entries), Format: string(format)}, nil
}

// Render writes entries to w in the given format.
func Render(w io.Writer, entries []model.JournalEntry, format ExportFormat, generatedAt time.Time) error {
	switch format {
	case FormatText:
		_, err := io.WriteString(w, FormatReport(entries, generatedAt))
		return err
	case FormatCSV:
		return writeCSV(w, entries)
	case FormatXLSX:
		return writeXLSX(w, entries)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

var exportColumns = []string{"Date", "Title", "Mood", "Category", "Secondary Moods", "Tags", "Words", "Notes"}

func exportRow(e model.JournalEntry) []string {
	plain := richtext.PlainText(e.Notes)
	return []string{
		model.DayKey(e.Date),
		e.Title,
		e.PrimaryMood,
		string(e.Category),
		strings.Join(e.SecondaryMoods, ", "),
		strings.Join(e.Tags(), ", "),
		fmt.Sprint(len(strings.Fields(plain))),
		plain,
	}
}

func writeCSV(w io.Writer, entries []model.JournalEntry) error {
	// UTF-8 BOM so spreadsheet tools pick the right encoding.
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(exportColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := writer.Write(exportRow(e)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeXLSX(w io.Writer, entries []model.JournalEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Journal"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	for i, h := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for r, e := range entries {
		for c, v := range exportRow(e) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "F", 20)
	_ = f.SetColWidth(sheet, "H", "H", 80)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
