package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"daily-journal/internal/model"
	"daily-journal/internal/richtext"
	"daily-journal/internal/service"
)

const listPreviewLength = 60

// PrettyPrint renders journal data for a terminal.
type PrettyPrint struct {
	Out io.Writer
}

func New(out io.Writer) *PrettyPrint {
	if out == nil {
		out = color.Output
	}
	return &PrettyPrint{Out: out}
}

// JSON writes v as indented JSON.
func (pp *PrettyPrint) JSON(v any) error {
	enc := json.NewEncoder(pp.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.Out)
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.Out, title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.Out, title)
	_, _ = c.Fprintf(pp.Out, " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.Out, " entry")
	default:
		_, _ = c.Fprintln(pp.Out, " entries")
	}
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.Out, " none\n\n")
}

// Entries prints one row per entry.
func (pp *PrettyPrint) Entries(title string, entries []model.JournalEntry) {
	pp.TitleWithCount(title, len(entries))
	if len(entries) == 0 {
		pp.none()
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 80
	for _, e := range entries {
		text := e.Title
		if text == "" {
			text = richtext.Preview(e.Notes, listPreviewLength)
		}
		tbl.AddRow(
			color.New(color.FgHiYellow).Sprint(model.DayKey(e.Date)),
			moodLabel(e.PrimaryMood, e.Category),
			text,
			faint(hashtags(e.Tags())),
		)
	}
	_, _ = fmt.Fprintln(pp.Out, tbl)
	pp.NewLine()
}

// Entry prints a single entry in full.
func (pp *PrettyPrint) Entry(e *model.JournalEntry) {
	pp.Title(e.Date.Format("Monday, January 2, 2006"))

	tbl := uitable.New()
	tbl.Separator = "  "
	bold := color.New(color.Bold)
	if e.Title != "" {
		tbl.AddRow(bold.Sprint("Title"), e.Title)
	}
	tbl.AddRow(bold.Sprint("Mood"), moodLabel(e.PrimaryMood, e.Category))
	if len(e.SecondaryMoods) > 0 {
		tbl.AddRow(bold.Sprint("Also"), strings.Join(e.SecondaryMoods, ", "))
	}
	if tags := e.Tags(); len(tags) > 0 {
		tbl.AddRow(bold.Sprint("Tags"), hashtags(tags))
	}
	tbl.AddRow(bold.Sprint("Words"), richtext.WordCount(e.Notes))
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.Out, tbl)

	if body := richtext.PlainText(e.Notes); body != "" {
		_, _ = fmt.Fprintf(pp.Out, "\n%s\n", body)
	}
	pp.NewLine()
}

// Search prints a page of results.
func (pp *PrettyPrint) Search(page service.SearchPage) {
	pp.TitleWithCount("Results", page.Total)
	if len(page.Hits) == 0 {
		pp.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 70
	for _, h := range page.Hits {
		tbl.AddRow(
			color.New(color.FgHiYellow).Sprint(model.DayKey(h.Date)),
			h.PrimaryMood,
			h.Preview,
			faint(fmt.Sprintf("%dw", h.WordCount)),
		)
	}
	_, _ = fmt.Fprintln(pp.Out, tbl)
	if page.Pages > 1 {
		_, _ = color.New(color.Faint).Fprintf(pp.Out, "page %d of %d\n", page.Page, page.Pages)
	}
	pp.NewLine()
}

// Strings prints a titled list such as recent searches.
func (pp *PrettyPrint) Strings(title string, values []string) {
	pp.Title(title)
	if len(values) == 0 {
		pp.none()
		return
	}
	for _, v := range values {
		_, _ = fmt.Fprintf(pp.Out, "  %s\n", v)
	}
	pp.NewLine()
}

// Streak prints the streak summary and achievement badges.
func (pp *PrettyPrint) Streak(summary service.StreakSummary, achievements []service.Achievement) {
	pp.Title("Streak")

	bold := color.New(color.Bold)
	current := fmt.Sprintf("%d days", summary.Current)
	if summary.Active {
		current = color.New(color.FgGreen, color.Bold).Sprint(current)
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Current"), current)
	tbl.AddRow(bold.Sprint("Longest"), fmt.Sprintf("%d days", summary.Longest))
	tbl.AddRow(bold.Sprint("Entries"), summary.TotalEntries)
	tbl.AddRow(bold.Sprint("Active days"), summary.TotalActiveDays)
	if summary.LastEntryDate != nil {
		tbl.AddRow(bold.Sprint("Last entry"), model.DayKey(*summary.LastEntryDate))
	}
	if next := summary.Milestone.Next; next.Days > 0 {
		tbl.AddRow(bold.Sprint("Next"), fmt.Sprintf("%s in %d days", next.Name, summary.Milestone.DaysToNext))
	}
	tbl.AddRow(bold.Sprint("Policy"), summary.Policy)
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.Out, tbl)
	pp.NewLine()

	if len(achievements) == 0 {
		return
	}
	pp.Title("Achievements")
	got := color.New(color.FgHiGreen)
	for _, a := range achievements {
		if a.Unlocked {
			_, _ = got.Fprintf(pp.Out, "  ✔ %s", a.Name)
		} else {
			_, _ = color.New(color.Faint).Fprintf(pp.Out, "  · %s", a.Name)
		}
		_, _ = color.New(color.Faint).Fprintf(pp.Out, "  %s\n", a.Description)
	}
	pp.NewLine()
}

// Moods prints the catalog grouped by category.
func (pp *PrettyPrint) Moods(grouped map[model.MoodCategory][]model.Mood) {
	for _, c := range model.MoodCategories {
		names := make([]string, 0, len(grouped[c]))
		for _, m := range grouped[c] {
			names = append(names, m.Name)
		}
		pp.Title(fmt.Sprintf("%s %s", c.Emoji(), c))
		if len(names) == 0 {
			pp.none()
			continue
		}
		_, _ = fmt.Fprintf(pp.Out, "  %s\n\n", strings.Join(names, ", "))
	}
}

// Tags prints the vocabulary and usage counts.
func (pp *PrettyPrint) Tags(tags []model.Tag, popular []service.TagCount) {
	pp.TitleWithCountLabel("Tags", len(tags), "tag", "tags")
	tbl := uitable.New()
	tbl.Separator = "  "
	const perRow = 4
	row := make([]any, 0, perRow)
	for _, t := range tags {
		label := t.Name
		if _, ok := model.PredefinedTag(t.Name); !ok {
			label = color.New(color.FgCyan).Sprint(t.Name)
		}
		row = append(row, label)
		if len(row) == perRow {
			tbl.AddRow(row...)
			row = row[:0]
		}
	}
	if len(row) > 0 {
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.Out, tbl)
	pp.NewLine()

	if len(popular) == 0 {
		return
	}
	pp.Title("Popular")
	for _, p := range popular {
		_, _ = fmt.Fprintf(pp.Out, "  #%s %s\n", p.Name, faint(fmt.Sprintf("(%d)", p.Count)))
	}
	pp.NewLine()
}

func (pp *PrettyPrint) TitleWithCountLabel(title string, count int, one, many string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)
	_, _ = t.Fprint(pp.Out, title)
	label := many
	if count == 1 {
		label = one
	}
	_, _ = c.Fprintf(pp.Out, " - %d %s\n", count, label)
}

// Reminder prints the reminder schedule.
func (pp *PrettyPrint) Reminder(settings model.ReminderSettings, next time.Time) {
	pp.Title("Reminder")
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Schedule"), service.ScheduleText(settings))
	tbl.AddRow(bold.Sprint("Style"), string(settings.Style))
	tbl.AddRow(bold.Sprint("Message"), service.PreviewMessage(settings.Style))
	if !next.IsZero() {
		tbl.AddRow(bold.Sprint("Next"), next.Format("Mon 02 Jan 15:04"))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.Out, tbl)
	pp.NewLine()
}

func moodLabel(mood string, category model.MoodCategory) string {
	if category == "" {
		return mood
	}
	return category.Emoji() + " " + mood
}

func hashtags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, "#"+strings.ReplaceAll(t, " ", "-"))
	}
	return strings.Join(out, " ")
}

func faint(s string) string {
	return color.New(color.Faint).Sprint(s)
}
