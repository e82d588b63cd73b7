package service

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync/atomic"
	"time"

	"daily-journal/internal/model"
)

// EntryLister is the read side of the entry store the derived views are computed from.
type EntryLister interface {
	ListAll(ctx context.Context) ([]model.JournalEntry, error)
}

// SnapshotStore persists the cached streak snapshot.
type SnapshotStore interface {
	Get(ctx context.Context) (*model.StreakSnapshot, error)
	Save(ctx context.Context, snap *model.StreakSnapshot) error
}

// Clock returns the current time in the journal's zone.
type Clock func() time.Time

func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

// DefaultActivityMonths is the trailing window of the heatmap.
const DefaultActivityMonths = 12

// StreakService derives streaks and activity from the stored entries.
type StreakService struct {
	entries   EntryLister
	snapshots SnapshotStore
	policy    StreakPolicy
	now       Clock
}

func NewStreakService(entries EntryLister, snapshots SnapshotStore, policy StreakPolicy, now Clock) *StreakService {
	if now == nil {
		now = SystemClock(time.Local)
	}
	return &StreakService{entries: entries, snapshots: snapshots, policy: policy, now: now}
}

func (s *StreakService) Policy() StreakPolicy {
	return s.policy
}

// Summary recomputes the streak figures from the store.
func (s *StreakService) Summary(ctx context.Context) (StreakSummary, error) {
	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return StreakSummary{}, fmt.Errorf("load entries for streak: %w", err)
	}
	return Summarize(entries, s.now(), s.policy), nil
}

// Refresh recomputes the summary and overwrites the cached snapshot with it.
func (s *StreakService) Refresh(ctx context.Context) (StreakSummary, error) {
	return s.refresh(ctx, nil)
}

// ShouldShowDialog reports whether the streak celebration has not been shown today.
func (s *StreakService) ShouldShowDialog(ctx context.Context) (bool, error) {
	snap, err := s.snapshots.Get(ctx)
	if err != nil {
		return false, err
	}
	if snap == nil || snap.CelebratedOn == nil {
		return true, nil
	}
	today := model.DateOnly(s.now())
	return !model.DateOnly(*snap.CelebratedOn).AddDate(0, 0, 1).After(today), nil
}

// MarkDialogShown refreshes the snapshot and records that the celebration fired today.
func (s *StreakService) MarkDialogShown(ctx context.Context) error {
	today := model.DateOnly(s.now())
	_, err := s.refresh(ctx, func(snap *model.StreakSnapshot) {
		snap.CelebratedOn = &today
	})
	return err
}

// Snapshot returns the cached figures without recomputing them.
func (s *StreakService) Snapshot(ctx context.Context) (*model.StreakSnapshot, error) {
	return s.snapshots.Get(ctx)
}

func (s *StreakService) refresh(ctx context.Context, mutate func(*model.StreakSnapshot)) (StreakSummary, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return StreakSummary{}, err
	}
	snap, err := s.snapshots.Get(ctx)
	if err != nil {
		return StreakSummary{}, err
	}
	if snap == nil {
		snap = &model.StreakSnapshot{}
	}
	snap.CurrentStreak = summary.Current
	snap.LongestStreak = summary.Longest
	snap.TotalEntries = summary.TotalEntries
	snap.TotalActiveDays = summary.TotalActiveDays
	snap.LastEntryDate = summary.LastEntryDate
	snap.IsActive = summary.Active
	snap.PreviousMilestone = summary.Milestone.Previous.Days
	snap.NextMilestone = summary.Milestone.Next.Days
	snap.NextMilestoneName = summary.Milestone.Next.Name
	snap.DaysToNextMilestone = summary.Milestone.DaysToNext
	if mutate != nil {
		mutate(snap)
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		return StreakSummary{}, err
	}
	return summary, nil
}

// ActivityPoint is the number of entries written on one day.
type ActivityPoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Intensity buckets the count into heatmap levels 0 to 4.
func (p ActivityPoint) Intensity() int {
	switch {
	case p.Count <= 0:
		return 0
	case p.Count >= 4:
		return 4
	default:
		return p.Count
	}
}

// Activity groups entries per day between from and to inclusive. The sequence is
// ordered by date and can be ranged over once; call Activity again to iterate anew.
func (s *StreakService) Activity(ctx context.Context, from, to time.Time) (iter.Seq[ActivityPoint], error) {
	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries for activity: %w", err)
	}
	return singleUse(GroupActivity(entries, from, to)), nil
}

// ActivityLastMonths covers the trailing months up to today. Non-positive months mean 12.
func (s *StreakService) ActivityLastMonths(ctx context.Context, months int) (iter.Seq[ActivityPoint], error) {
	if months <= 0 {
		months = DefaultActivityMonths
	}
	today := model.DateOnly(s.now())
	return s.Activity(ctx, model.AddMonths(today, -months), today)
}

// CurrentMonthActivity covers the first of this month up to today.
func (s *StreakService) CurrentMonthActivity(ctx context.Context) (iter.Seq[ActivityPoint], error) {
	today := model.DateOnly(s.now())
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.Activity(ctx, first, today)
}

// GroupActivity counts entries per day inside the inclusive window, oldest first.
func GroupActivity(entries []model.JournalEntry, from, to time.Time) []ActivityPoint {
	from, to = model.DateOnly(from), model.DateOnly(to)
	counts := make(map[string]*ActivityPoint)
	for _, e := range entries {
		d := model.DateOnly(e.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		key := model.DayKey(d)
		if p, ok := counts[key]; ok {
			p.Count++
			continue
		}
		counts[key] = &ActivityPoint{Date: d, Count: 1}
	}
	points := make([]ActivityPoint, 0, len(counts))
	for _, p := range counts {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

func singleUse(points []ActivityPoint) iter.Seq[ActivityPoint] {
	var used atomic.Bool
	return func(yield func(ActivityPoint) bool) {
		if used.Swap(true) {
			return
		}
		for _, p := range points {
			if !yield(p) {
				return
			}
		}
	}
}
