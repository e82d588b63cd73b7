package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"daily-journal/internal/model"
)

// StreakPolicy decides whether a missing entry for today breaks the current streak.
type StreakPolicy int

const (
	// PolicyGrace keeps a streak alive through today while yesterday has an entry.
	PolicyGrace StreakPolicy = iota
	// PolicyStrict requires an entry today.
	PolicyStrict
)

func (p StreakPolicy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "grace"
}

func ParseStreakPolicy(value string) (StreakPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "grace":
		return PolicyGrace, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyGrace, fmt.Errorf("unknown streak policy %q", value)
	}
}

// DistinctDays returns the calendar days that have at least one entry, oldest first.
func DistinctDays(entries []model.JournalEntry) []time.Time {
	seen := make(map[string]struct{}, len(entries))
	days := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		d := model.DateOnly(e.Date)
		key := model.DayKey(d)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// CurrentStreak counts consecutive days with entries ending today. Under
// PolicyGrace a run ending yesterday still counts. Days after today are ignored.
func CurrentStreak(days []time.Time, today time.Time, policy StreakPolicy) int {
	today = model.DateOnly(today)
	set := make(map[string]struct{}, len(days))
	for _, d := range days {
		d = model.DateOnly(d)
		if d.After(today) {
			continue
		}
		set[model.DayKey(d)] = struct{}{}
	}
	has := func(d time.Time) bool {
		_, ok := set[model.DayKey(d)]
		return ok
	}

	cursor := today
	if !has(cursor) {
		yesterday := today.AddDate(0, 0, -1)
		if policy != PolicyGrace || !has(yesterday) {
			return 0
		}
		cursor = yesterday
	}

	streak := 0
	for has(cursor) {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak returns the longest run of consecutive days.
func LongestStreak(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}
	sorted := make([]time.Time, len(days))
	for i, d := range days {
		sorted[i] = model.DateOnly(d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		switch {
		case sorted[i].Equal(sorted[i-1]):
			continue
		case sorted[i].Equal(sorted[i-1].AddDate(0, 0, 1)):
			run++
		default:
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Milestone is a named streak length worth celebrating.
type Milestone struct {
	Days int    `json:"days"`
	Name string `json:"name"`
}

var DefaultMilestones = []Milestone{
	{Days: 3, Name: "Getting Started"},
	{Days: 7, Name: "Week Warrior"},
	{Days: 14, Name: "Fortnight Focus"},
	{Days: 30, Name: "Month Master"},
	{Days: 100, Name: "Century Club"},
	{Days: 365, Name: "Year of Words"},
}

// MilestoneStatus places a streak between the last reached and the next milestone.
// Next is zero once every milestone is reached.
type MilestoneStatus struct {
	Previous   Milestone `json:"previous"`
	Next       Milestone `json:"next"`
	DaysToNext int       `json:"days_to_next"`
}

func MilestoneProgress(current int) MilestoneStatus {
	var status MilestoneStatus
	for _, m := range DefaultMilestones {
		if current >= m.Days {
			status.Previous = m
			continue
		}
		status.Next = m
		status.DaysToNext = m.Days - current
		break
	}
	return status
}

// Achievement is a badge derived from the streak figures.
type Achievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

func Achievements(longest, totalEntries int) []Achievement {
	list := []Achievement{{
		Name:        "First Words",
		Description: "Write your first entry",
		Unlocked:    totalEntries >= 1,
	}}
	for _, m := range DefaultMilestones {
		list = append(list, Achievement{
			Name:        m.Name,
			Description: fmt.Sprintf("Write %d days in a row", m.Days),
			Unlocked:    longest >= m.Days,
		})
	}
	return append(list, Achievement{
		Name:        "Storyteller",
		Description: "Write 50 entries",
		Unlocked:    totalEntries >= 50,
	})
}

// StreakSummary is a fresh computation over the entry set.
type StreakSummary struct {
	Current         int             `json:"current_streak"`
	Longest         int             `json:"longest_streak"`
	TotalEntries    int             `json:"total_entries"`
	TotalActiveDays int             `json:"total_active_days"`
	LastEntryDate   *time.Time      `json:"last_entry_date,omitempty"`
	Active          bool            `json:"is_active"`
	Milestone       MilestoneStatus `json:"milestone"`
	Policy          string          `json:"policy"`
}

// Summarize computes every streak figure from entries as of today.
func Summarize(entries []model.JournalEntry, today time.Time, policy StreakPolicy) StreakSummary {
	days := DistinctDays(entries)
	summary := StreakSummary{
		Current:         CurrentStreak(days, today, policy),
		Longest:         LongestStreak(days),
		TotalEntries:    len(entries),
		TotalActiveDays: len(days),
		Policy:          policy.String(),
	}
	if len(days) > 0 {
		last := days[len(days)-1]
		summary.LastEntryDate = &last
	}
	summary.Active = summary.Current > 0
	summary.Milestone = MilestoneProgress(summary.Current)
	return summary
}
