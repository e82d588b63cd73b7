package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"daily-journal/internal/model"
	"daily-journal/internal/repository"
	"daily-journal/internal/richtext"
)

// MaxSecondaryMoods bounds how many extra moods an entry carries.
const MaxSecondaryMoods = 2

var (
	ErrMoodRequired          = errors.New("primary mood is required")
	ErrTooManySecondaryMoods = fmt.Errorf("at most %d secondary moods are allowed", MaxSecondaryMoods)
	ErrDuplicateMood         = errors.New("a mood may only be chosen once")
)

// EntryInput is what a surface collects to create or edit an entry.
type EntryInput struct {
	Date           time.Time
	Title          string
	PrimaryMood    string
	SecondaryMoods []string
	Tags           []string
	NotesHTML      string
}

type snapshotRefresher interface {
	Refresh(ctx context.Context) (StreakSummary, error)
}

// JournalService validates entries against the catalog before they reach the store.
type JournalService struct {
	entries *repository.JournalRepository
	catalog *CatalogService
	streaks snapshotRefresher
	now     Clock
}

func NewJournalService(entries *repository.JournalRepository, catalog *CatalogService, streaks snapshotRefresher, now Clock) *JournalService {
	if now == nil {
		now = SystemClock(time.Local)
	}
	return &JournalService{entries: entries, catalog: catalog, streaks: streaks, now: now}
}

// Today is the current calendar date.
func (s *JournalService) Today() time.Time {
	return model.DateOnly(s.now())
}

// Create stores a new entry. A date that already has an entry yields repository.ErrUniqueDate.
func (s *JournalService) Create(ctx context.Context, in EntryInput) (*model.JournalEntry, error) {
	entry := &model.JournalEntry{}
	if err := s.apply(ctx, entry, in); err != nil {
		return nil, err
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.registerTags(ctx, entry.CustomTags)
	slog.Info("journal entry created", "id", entry.ID, "date", model.DayKey(entry.Date))
	s.refreshSnapshot(ctx)
	return entry, nil
}

// Update replaces the content of the entry with the given id.
func (s *JournalService) Update(ctx context.Context, id uuid.UUID, in EntryInput) (*model.JournalEntry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = entry.Date
	}
	if err := s.apply(ctx, entry, in); err != nil {
		return nil, err
	}
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}
	s.registerTags(ctx, entry.CustomTags)
	slog.Info("journal entry updated", "id", entry.ID, "date", model.DayKey(entry.Date))
	s.refreshSnapshot(ctx)
	return entry, nil
}

func (s *JournalService) Get(ctx context.Context, id uuid.UUID) (*model.JournalEntry, error) {
	return s.entries.GetByID(ctx, id)
}

// GetByDate returns nil when nothing was written that day.
func (s *JournalService) GetByDate(ctx context.Context, date time.Time) (*model.JournalEntry, error) {
	return s.entries.GetByDate(ctx, date)
}

func (s *JournalService) Recent(ctx context.Context, n int) ([]model.JournalEntry, error) {
	return s.entries.ListRecent(ctx, n)
}

func (s *JournalService) All(ctx context.Context) ([]model.JournalEntry, error) {
	return s.entries.ListAll(ctx)
}

func (s *JournalService) Range(ctx context.Context, from, to time.Time) ([]model.JournalEntry, error) {
	if to.Before(from) {
		from, to = to, from
	}
	return s.entries.ListByDateRange(ctx, from, to)
}

// Delete removes the entry. Unknown ids are ignored.
func (s *JournalService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.entries.Delete(ctx, &model.JournalEntry{ID: id}); err != nil {
		return err
	}
	slog.Info("journal entry deleted", "id", id)
	s.refreshSnapshot(ctx)
	return nil
}

// DeleteByDate removes the entry of a day and returns it. It fails with
// repository.ErrNotFound when that day is empty.
func (s *JournalService) DeleteByDate(ctx context.Context, date time.Time) (*model.JournalEntry, error) {
	entry, err := s.entries.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("entry for %s: %w", model.DayKey(date), repository.ErrNotFound)
	}
	if err := s.Delete(ctx, entry.ID); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *JournalService) Count(ctx context.Context) (int64, error) {
	return s.entries.Count(ctx)
}

func (s *JournalService) refreshSnapshot(ctx context.Context) {
	if s.streaks == nil {
		return
	}
	if _, err := s.streaks.Refresh(ctx); err != nil {
		slog.Warn("streak snapshot refresh failed", "error", err)
	}
}

// registerTags adds custom tags of a stored entry to the catalog. The entry is
// already saved, so a failure here is logged rather than returned.
func (s *JournalService) registerTags(ctx context.Context, custom []string) {
	for _, name := range custom {
		if _, err := s.catalog.AddCustomTag(ctx, name); err != nil {
			slog.Warn("custom tag not added to catalog", "tag", name, "error", err)
		}
	}
}

// apply validates in and copies it onto entry. It writes nothing.
func (s *JournalService) apply(ctx context.Context, entry *model.JournalEntry, in EntryInput) error {
	if strings.TrimSpace(in.PrimaryMood) == "" {
		return ErrMoodRequired
	}
	primary, err := s.catalog.ResolveMood(ctx, in.PrimaryMood)
	if err != nil {
		return err
	}

	seen := map[string]struct{}{strings.ToLower(primary.Name): {}}
	var secondary []string
	for _, name := range in.SecondaryMoods {
		if strings.TrimSpace(name) == "" {
			continue
		}
		mood, err := s.catalog.ResolveMood(ctx, name)
		if err != nil {
			return err
		}
		key := strings.ToLower(mood.Name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateMood, mood.Name)
		}
		seen[key] = struct{}{}
		secondary = append(secondary, mood.Name)
	}
	if len(secondary) > MaxSecondaryMoods {
		return ErrTooManySecondaryMoods
	}

	predefined, custom := SplitTags(in.Tags)

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	entry.Date = model.DateOnly(date)
	entry.Title = strings.TrimSpace(in.Title)
	entry.PrimaryMood = primary.Name
	entry.Category = primary.Category
	entry.SecondaryMoods = secondary
	entry.PredefinedTags = predefined
	entry.CustomTags = custom
	entry.Notes = richtext.Sanitize(in.NotesHTML)
	return nil
}
