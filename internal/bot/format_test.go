package bot

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"daily-journal/internal/model"
	"daily-journal/internal/service"
)

var today = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func TestPluralDays(t *testing.T) {
	cases := map[int]string{
		0:   "0 дней",
		1:   "1 день",
		2:   "2 дня",
		4:   "4 дня",
		5:   "5 дней",
		11:  "11 дней",
		14:  "14 дней",
		21:  "21 день",
		22:  "22 дня",
		111: "111 дней",
	}
	for n, want := range cases {
		if got := pluralDays(n); got != want {
			t.Errorf("pluralDays(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestParseDay(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"", today},
		{"Сегодня", today},
		{"вчера", today.AddDate(0, 0, -1)},
		{"yesterday", today.AddDate(0, 0, -1)},
		{"2026-02-03", time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)},
		{"03.02.2026", time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseDay(tc.in, today)
		if err != nil {
			t.Fatalf("parseDay(%q): %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Errorf("parseDay(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := parseDay("завтра?", today); !errors.Is(err, errBadDate) {
		t.Fatalf("expected errBadDate, got %v", err)
	}
}

func TestLongDateIsGenitive(t *testing.T) {
	if got := longDate(today); got != "19 октября 2026" {
		t.Fatalf("longDate = %q", got)
	}
	if got := shortText("  один\nдва три  ", 8); got != "один дв…" {
		t.Fatalf("shortText = %q", got)
	}
}

func TestFormatEntryEscapesUserText(t *testing.T) {
	e := &model.JournalEntry{
		Date:           today,
		Title:          "<b>bold</b> & more",
		PrimaryMood:    "Calm",
		Category:       model.CategoryPositive,
		SecondaryMoods: []string{"Tired"},
		PredefinedTags: []string{"Work"},
		CustomTags:     []string{"side project"},
		Notes:          "<p>1 &lt; 2</p>",
	}
	got := formatEntry(e)
	if strings.Contains(got, "<b>bold</b>") {
		t.Fatalf("title was not escaped:\n%s", got)
	}
	for _, want := range []string{"&lt;b&gt;bold&lt;/b&gt; &amp; more", "Calm · Tired", "#Work #side_project", "1 &lt; 2", "Слов: 3"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEntry missing %q:\n%s", want, got)
		}
	}
}

func TestFormatHeatmapStartsOnMonday(t *testing.T) {
	points := slices.Values([]service.ActivityPoint{
		{Date: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Count: 1},
		{Date: time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), Count: 6},
	})
	got := formatHeatmap(points, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), today)

	if !strings.Contains(got, "записей: 7") {
		t.Fatalf("total missing:\n%s", got)
	}
	if !strings.Contains(got, "Октябрь 2026") || strings.Contains(got, "Ноябрь") {
		t.Fatalf("unexpected months:\n%s", got)
	}
	// 1 October 2026 is a Thursday: three blank cells, then levels 1 and 4.
	want := "   " + "   " + "   " + heatCells[1] + " " + heatCells[4] + " " + heatCells[0] + " " + heatCells[0] + " \n"
	if !strings.Contains(got, want) {
		t.Fatalf("first week = missing %q in\n%s", want, got)
	}
}

func TestApplyReminderArgs(t *testing.T) {
	base := service.DefaultReminderSettings()

	got, err := applyReminderArgs(base, "on 7:05 weekdays gentle")
	if err != nil {
		t.Fatalf("applyReminderArgs: %v", err)
	}
	if !got.Enabled || got.TimeOfDay != "07:05" || got.Frequency != model.FrequencyWeekdays || got.Style != model.StyleGentle {
		t.Fatalf("unexpected settings: %+v", got)
	}

	got, err = applyReminderArgs(got, "пт,пн ср")
	if err != nil {
		t.Fatalf("applyReminderArgs days: %v", err)
	}
	if got.Frequency != model.FrequencyCustom || !slices.Equal([]string(got.Days), []string{"Mon", "Wed", "Fri"}) {
		t.Fatalf("custom days = %v %v", got.Frequency, got.Days)
	}

	got, err = applyReminderArgs(got, "выкл")
	if err != nil || got.Enabled {
		t.Fatalf("off: %+v, %v", got, err)
	}

	if _, err := applyReminderArgs(base, "25:00"); !errors.Is(err, service.ErrInvalidReminder) {
		t.Fatalf("bad time err = %v", err)
	}
	if _, err := applyReminderArgs(base, "someday"); !errors.Is(err, service.ErrInvalidReminder) {
		t.Fatalf("bad day err = %v", err)
	}
}

func TestInputPredicates(t *testing.T) {
	if !isSkipInput(btnSkip) || !isSkipInput(" - ") || isSkipInput("skipper") {
		t.Fatal("isSkipInput")
	}
	if !isDoneInput("ГОТОВО") || !isSaveInput(btnSave) || !isConfirmInput("да") || !isCancelInput("Нет") {
		t.Fatal("button aliases are not recognised")
	}
	if !isCancelDialogInput(btnCancelDialog) || isCancelDialogInput(btnCancel) {
		t.Fatal("isCancelDialogInput")
	}
}

func TestLockIdle(t *testing.T) {
	b := &Bot{
		conversations: map[int64]*conversationState{1: {stage: stageText}},
		unlocked:      map[int64]time.Time{},
	}
	now := time.Now()
	b.unlocked[1] = now.Add(-time.Hour)
	b.unlocked[2] = now.Add(-time.Minute)

	if n := b.lockIdle(now, 30*time.Minute); n != 1 {
		t.Fatalf("locked %d sessions, want 1", n)
	}
	if b.isUnlocked(1) || !b.isUnlocked(2) {
		t.Fatalf("sessions after sweep = %v", b.unlocked)
	}
	if b.hasConversation(1) {
		t.Fatal("draft of a locked session should be dropped")
	}
}
