package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"daily-journal/internal/model"
	"daily-journal/internal/repository"
)

var testToday = time.Date(2026, 10, 19, 15, 4, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func daysAgo(n int) time.Time {
	return model.DateOnly(testToday).AddDate(0, 0, -n)
}

func entriesOn(offsets ...int) []model.JournalEntry {
	entries := make([]model.JournalEntry, 0, len(offsets))
	for _, n := range offsets {
		entries = append(entries, model.JournalEntry{Date: daysAgo(n), PrimaryMood: "Happy"})
	}
	return entries
}

type fakeLister struct {
	entries []model.JournalEntry
	err     error
}

func (f *fakeLister) ListAll(context.Context) ([]model.JournalEntry, error) {
	return f.entries, f.err
}

type memorySnapshots struct {
	snap  *model.StreakSnapshot
	saves int
}

func (m *memorySnapshots) Get(context.Context) (*model.StreakSnapshot, error) {
	if m.snap == nil {
		return nil, nil
	}
	cp := *m.snap
	return &cp, nil
}

func (m *memorySnapshots) Save(_ context.Context, snap *model.StreakSnapshot) error {
	cp := *snap
	m.snap = &cp
	m.saves++
	return nil
}

func TestStreakFiguresForScatteredWeek(t *testing.T) {
	summary := Summarize(entriesOn(0, 1, 2, 5), testToday, PolicyGrace)
	if summary.Current != 3 || summary.Longest != 3 || summary.TotalEntries != 4 || summary.TotalActiveDays != 4 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.LastEntryDate == nil || !summary.LastEntryDate.Equal(daysAgo(0)) || !summary.Active {
		t.Fatalf("last entry/active wrong: %+v", summary)
	}
	if strict := Summarize(entriesOn(0, 1, 2, 5), testToday, PolicyStrict); strict.Current != 3 {
		t.Fatalf("strict current = %d", strict.Current)
	}
}

func TestStreakBrokenAfterGap(t *testing.T) {
	for _, policy := range []StreakPolicy{PolicyGrace, PolicyStrict} {
		if got := CurrentStreak(DistinctDays(entriesOn(3)), testToday, policy); got != 0 {
			t.Fatalf("%s: current = %d, want 0", policy, got)
		}
		if got := CurrentStreak(DistinctDays(entriesOn(2, 3, 4)), testToday, policy); got != 0 {
			t.Fatalf("%s: two day gap should break, got %d", policy, got)
		}
	}
}

func TestStreakGraceVersusStrict(t *testing.T) {
	days := DistinctDays(entriesOn(1, 2, 3))
	if got := CurrentStreak(days, testToday, PolicyGrace); got != 3 {
		t.Fatalf("grace current = %d, want 3", got)
	}
	if got := CurrentStreak(days, testToday, PolicyStrict); got != 0 {
		t.Fatalf("strict current = %d, want 0", got)
	}
}

func TestStreakIgnoresFutureAndDuplicates(t *testing.T) {
	entries := entriesOn(-1, 0, 0, 1)
	days := DistinctDays(entries)
	if len(days) != 3 {
		t.Fatalf("distinct days = %d, want 3", len(days))
	}
	if got := CurrentStreak(days, testToday, PolicyStrict); got != 2 {
		t.Fatalf("current = %d, want 2", got)
	}
	if got := LongestStreak(days); got != 3 {
		t.Fatalf("longest = %d, want 3", got)
	}
	summary := Summarize(entries, testToday, PolicyGrace)
	if summary.TotalEntries != 4 || summary.TotalActiveDays != 3 {
		t.Fatalf("totals = %d/%d", summary.TotalEntries, summary.TotalActiveDays)
	}
}

func TestLongestStreak(t *testing.T) {
	cases := []struct {
		name    string
		offsets []int
		want    int
	}{
		{name: "empty", want: 0},
		{name: "single", offsets: []int{10}, want: 1},
		{name: "older run wins", offsets: []int{0, 1, 10, 11, 12, 13}, want: 4},
		{name: "unsorted", offsets: []int{4, 2, 3, 0}, want: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LongestStreak(DistinctDays(entriesOn(tc.offsets...))); got != tc.want {
				t.Fatalf("LongestStreak = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMilestoneProgress(t *testing.T) {
	cases := []struct {
		current  int
		previous int
		next     int
		left     int
	}{
		{current: 0, previous: 0, next: 3, left: 3},
		{current: 3, previous: 3, next: 7, left: 4},
		{current: 29, previous: 14, next: 30, left: 1},
		{current: 400, previous: 365, next: 0, left: 0},
	}
	for _, tc := range cases {
		got := MilestoneProgress(tc.current)
		if got.Previous.Days != tc.previous || got.Next.Days != tc.next || got.DaysToNext != tc.left {
			t.Fatalf("MilestoneProgress(%d) = %+v", tc.current, got)
		}
	}
}

func TestAchievements(t *testing.T) {
	list := Achievements(7, 12)
	unlocked := map[string]bool{}
	for _, a := range list {
		unlocked[a.Name] = a.Unlocked
	}
	if !unlocked["First Words"] || !unlocked["Week Warrior"] || unlocked["Fortnight Focus"] || unlocked["Storyteller"] {
		t.Fatalf("unexpected achievements: %+v", list)
	}
}

func TestRefreshOverwritesDivergentSnapshot(t *testing.T) {
	ctx := context.Background()
	snaps := &memorySnapshots{snap: &model.StreakSnapshot{CurrentStreak: 42, LongestStreak: 99}}
	svc := NewStreakService(&fakeLister{entries: entriesOn(0, 1)}, snaps, PolicyGrace, fixedClock(testToday))

	summary, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if summary.Current != 2 || snaps.snap.CurrentStreak != 2 || snaps.snap.LongestStreak != 2 {
		t.Fatalf("snapshot not overwritten: %+v", snaps.snap)
	}
	if snaps.snap.NextMilestone != 3 || snaps.snap.DaysToNextMilestone != 1 || snaps.snap.NextMilestoneName != "Getting Started" {
		t.Fatalf("milestone fields wrong: %+v", snaps.snap)
	}
}

func TestDialogGate(t *testing.T) {
	ctx := context.Background()
	snaps := &memorySnapshots{}
	svc := NewStreakService(&fakeLister{entries: entriesOn(0)}, snaps, PolicyGrace, fixedClock(testToday))

	show, err := svc.ShouldShowDialog(ctx)
	if err != nil || !show {
		t.Fatalf("first check = %v, %v", show, err)
	}
	if err := svc.MarkDialogShown(ctx); err != nil {
		t.Fatalf("MarkDialogShown: %v", err)
	}
	if show, _ := svc.ShouldShowDialog(ctx); show {
		t.Fatalf("dialog should not fire twice on the same day")
	}

	tomorrow := NewStreakService(&fakeLister{entries: entriesOn(0)}, snaps, PolicyGrace, fixedClock(testToday.AddDate(0, 0, 1)))
	if show, _ := tomorrow.ShouldShowDialog(ctx); !show {
		t.Fatalf("dialog should fire again the next day")
	}
}

func TestStoreFailurePropagates(t *testing.T) {
	ctx := context.Background()
	storeErr := &repository.StoreError{Op: "list entries", Err: errors.New("disk gone")}
	svc := NewStreakService(&fakeLister{err: storeErr}, &memorySnapshots{}, PolicyGrace, fixedClock(testToday))

	if _, err := svc.Summary(ctx); !errors.Is(err, repository.ErrStoreUnavailable) {
		t.Fatalf("Summary error = %v", err)
	}
	if _, err := svc.ActivityLastMonths(ctx, 0); !errors.Is(err, repository.ErrStoreUnavailable) {
		t.Fatalf("Activity error = %v", err)
	}
}

func TestActivityIsSingleUseAndOrdered(t *testing.T) {
	ctx := context.Background()
	entries := append(entriesOn(0, 3, 40, 400), model.JournalEntry{Date: daysAgo(3)})
	svc := NewStreakService(&fakeLister{entries: entries}, &memorySnapshots{}, PolicyGrace, fixedClock(testToday))

	seq, err := svc.ActivityLastMonths(ctx, 0)
	if err != nil {
		t.Fatalf("ActivityLastMonths: %v", err)
	}
	var points []ActivityPoint
	for p := range seq {
		points = append(points, p)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 days in window, got %+v", points)
	}
	if !points[0].Date.Equal(daysAgo(40)) || !points[1].Date.Equal(daysAgo(3)) || points[1].Count != 2 {
		t.Fatalf("unexpected points: %+v", points)
	}

	again := 0
	for range seq {
		again++
	}
	if again != 0 {
		t.Fatalf("sequence yielded %d points on second use", again)
	}

	month, err := svc.CurrentMonthActivity(ctx)
	if err != nil {
		t.Fatalf("CurrentMonthActivity: %v", err)
	}
	n := 0
	for range month {
		n++
	}
	if n != 2 {
		t.Fatalf("current month points = %d, want 2", n)
	}
}

func TestIntensityBuckets(t *testing.T) {
	want := map[int]int{0: 0, 1: 1, 2: 2, 3: 3, 4: 4, 9: 4}
	for count, level := range want {
		if got := (ActivityPoint{Count: count}).Intensity(); got != level {
			t.Fatalf("Intensity(%d) = %d, want %d", count, got, level)
		}
	}
}

func TestParseStreakPolicy(t *testing.T) {
	if p, err := ParseStreakPolicy("STRICT"); err != nil || p != PolicyStrict {
		t.Fatalf("strict = %v, %v", p, err)
	}
	if p, err := ParseStreakPolicy(""); err != nil || p != PolicyGrace {
		t.Fatalf("empty = %v, %v", p, err)
	}
	if _, err := ParseStreakPolicy("lenient"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
