package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"daily-journal/internal/model"
	"daily-journal/internal/repository"
)

type journalEnv struct {
	journal  *JournalService
	streaks  *StreakService
	catalog  *CatalogService
	profile  *ProfileService
	reminder *ReminderService
}

func newJournalEnv(t *testing.T) *journalEnv {
	t.Helper()
	ctx := context.Background()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = repository.Close(db) })

	users := repository.NewUserRepository(db)
	user, err := users.EnsureDefault(ctx)
	if err != nil {
		t.Fatalf("EnsureDefault: %v", err)
	}
	entries := repository.NewJournalRepository(db, user.ID)
	catalog := NewCatalogService(repository.NewMoodRepository(db), repository.NewTagRepository(db))
	if _, _, err := catalog.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	clock := fixedClock(testToday)
	streaks := NewStreakService(entries, repository.NewStreakRepository(db, user.ID), PolicyGrace, clock)
	profile := NewProfileService(users)
	profile.cost = bcrypt.MinCost

	return &journalEnv{
		journal:  NewJournalService(entries, catalog, streaks, clock),
		streaks:  streaks,
		catalog:  catalog,
		profile:  profile,
		reminder: NewReminderService(repository.NewReminderRepository(db, user.ID)),
	}
}

func TestJournalCreateResolvesCatalog(t *testing.T) {
	env := newJournalEnv(t)
	ctx := context.Background()

	entry, err := env.journal.Create(ctx, EntryInput{
		Title:          "  First day  ",
		PrimaryMood:    "happy",
		SecondaryMoods: []string{"calm", ""},
		Tags:           []string{"#work", "side project", "Work"},
		NotesHTML:      `<p>hello<script>alert(1)</script></p>`,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !entry.Date.Equal(model.DateOnly(testToday)) {
		t.Fatalf("date = %v, want today", entry.Date)
	}
	if entry.Title != "First day" || entry.PrimaryMood != "Happy" || entry.Category != model.CategoryPositive {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if len(entry.SecondaryMoods) != 1 || entry.SecondaryMoods[0] != "Calm" {
		t.Fatalf("secondary = %v", entry.SecondaryMoods)
	}
	if len(entry.PredefinedTags) != 1 || entry.PredefinedTags[0] != "Work" ||
		len(entry.CustomTags) != 1 || entry.CustomTags[0] != "side project" {
		t.Fatalf("tags = %v / %v", entry.PredefinedTags, entry.CustomTags)
	}
	if entry.Notes != "<p>hello</p>" {
		t.Fatalf("notes = %q", entry.Notes)
	}

	tags, err := env.catalog.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != len(model.DefaultTags)+1 {
		t.Fatalf("custom tag not registered, %d tags", len(tags))
	}

	snap, err := env.streaks.Snapshot(ctx)
	if err != nil || snap == nil || snap.CurrentStreak != 1 || snap.TotalEntries != 1 {
		t.Fatalf("snapshot not refreshed: %+v, %v", snap, err)
	}
}

func TestJournalCreateValidation(t *testing.T) {
	env := newJournalEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   EntryInput
		want error
	}{
		{"missing mood", EntryInput{PrimaryMood: "  "}, ErrMoodRequired},
		{"unknown mood", EntryInput{PrimaryMood: "Hangry"}, ErrUnknownMood},
		{"unknown secondary", EntryInput{PrimaryMood: "Happy", SecondaryMoods: []string{"Meh"}}, ErrUnknownMood},
		{"repeats primary", EntryInput{PrimaryMood: "Happy", SecondaryMoods: []string{"HAPPY"}}, ErrDuplicateMood},
		{"repeated secondary", EntryInput{PrimaryMood: "Happy", SecondaryMoods: []string{"Calm", "calm"}}, ErrDuplicateMood},
		{"too many", EntryInput{PrimaryMood: "Happy", SecondaryMoods: []string{"Calm", "Bored", "Sad"}}, ErrTooManySecondaryMoods},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.journal.Create(ctx, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("Create = %v, want %v", err, tc.want)
			}
		})
	}
	if n, _ := env.journal.Count(ctx); n != 0 {
		t.Fatalf("invalid input stored %d entries", n)
	}
}

func TestJournalOneEntryPerDay(t *testing.T) {
	env := newJournalEnv(t)
	ctx := context.Background()

	first, err := env.journal.Create(ctx, EntryInput{Date: testToday, PrimaryMood: "Calm", NotesHTML: "morning"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = env.journal.Create(ctx, EntryInput{Date: testToday.Add(-3 * time.Hour), PrimaryMood: "Sad"})
	var dup *repository.UniqueDateError
	if !errors.As(err, &dup) || !errors.Is(err, repository.ErrUniqueDate) {
		t.Fatalf("second create = %v", err)
	}

	updated, err := env.journal.Update(ctx, first.ID, EntryInput{PrimaryMood: "Grateful", NotesHTML: "evening"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Date.Equal(first.Date) || updated.PrimaryMood != "Grateful" {
		t.Fatalf("update lost date or mood: %+v", updated)
	}

	got, err := env.journal.GetByDate(ctx, testToday)
	if err != nil || got == nil || got.Notes != "evening" {
		t.Fatalf("GetByDate = %+v, %v", got, err)
	}
}

func tagNames(t *testing.T, env *journalEnv) map[string]bool {
	t.Helper()
	tags, err := env.catalog.Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	names := make(map[string]bool, len(tags))
	for _, tag := range tags {
		names[tag.Name] = true
	}
	return names
}

func TestJournalRejectedSaveKeepsCatalog(t *testing.T) {
	env := newJournalEnv(t)
	ctx := context.Background()

	first, err := env.journal.Create(ctx, EntryInput{Date: testToday, PrimaryMood: "Calm"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.journal.Create(ctx, EntryInput{Date: daysAgo(1), PrimaryMood: "Calm"}); err != nil {
		t.Fatalf("Create yesterday: %v", err)
	}
	before := tagNames(t, env)

	_, err = env.journal.Create(ctx, EntryInput{Date: testToday, PrimaryMood: "Happy", Tags: []string{"orphan-create"}})
	if !errors.Is(err, repository.ErrUniqueDate) {
		t.Fatalf("second create = %v", err)
	}
	_, err = env.journal.Update(ctx, first.ID, EntryInput{Date: daysAgo(1), PrimaryMood: "Happy", Tags: []string{"orphan-update"}})
	if !errors.Is(err, repository.ErrUniqueDate) {
		t.Fatalf("update onto a taken date = %v", err)
	}

	after := tagNames(t, env)
	if len(after) != len(before) || after["orphan-create"] || after["orphan-update"] {
		t.Fatalf("rejected saves changed the tag catalog: %d tags before, %d after", len(before), len(after))
	}

	if _, err := env.journal.Create(ctx, EntryInput{Date: daysAgo(2), PrimaryMood: "Happy", Tags: []string{"kept"}}); err != nil {
		t.Fatalf("Create with custom tag: %v", err)
	}
	if !tagNames(t, env)["kept"] {
		t.Fatal("custom tag of a stored entry was not added to the catalog")
	}
}

func TestJournalDeleteByDate(t *testing.T) {
	env := newJournalEnv(t)
	ctx := context.Background()

	if _, err := env.journal.DeleteByDate(ctx, testToday); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("delete on empty day = %v", err)
	}
	if err := env.journal.Delete(ctx, uuid.New()); err != nil {
		t.Fatalf("delete of an unknown id should be ignored, got %v", err)
	}
	if _, err := env.journal.Create(ctx, EntryInput{Date: daysAgo(1), PrimaryMood: "Relaxed"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	removed, err := env.journal.DeleteByDate(ctx, daysAgo(1))
	if err != nil || removed.PrimaryMood != "Relaxed" {
		t.Fatalf("DeleteByDate = %+v, %v", removed, err)
	}
	if got, _ := env.journal.GetByDate(ctx, daysAgo(1)); got != nil {
		t.Fatalf("entry still stored: %+v", got)
	}
	snap, _ := env.streaks.Snapshot(ctx)
	if snap == nil || snap.TotalEntries != 0 {
		t.Fatalf("snapshot not refreshed after delete: %+v", snap)
	}
}

func TestProfilePasscode(t *testing.T) {
	env := newJournalEnv(t)
	ctx := context.Background()

	if err := env.profile.VerifyPasscode(ctx, "anything"); err != nil {
		t.Fatalf("no passcode should verify: %v", err)
	}
	if err := env.profile.SetPasscode(ctx, "", "123"); !errors.Is(err, ErrPasscodeTooShort) {
		t.Fatalf("short passcode = %v", err)
	}
	if err := env.profile.SetPasscode(ctx, "", "1234"); err != nil {
		t.Fatalf("SetPasscode: %v", err)
	}
	if err := env.profile.VerifyPasscode(ctx, "4321"); !errors.Is(err, ErrWrongPasscode) {
		t.Fatalf("wrong passcode = %v", err)
	}
	if err := env.profile.VerifyPasscode(ctx, "1234"); err != nil {
		t.Fatalf("VerifyPasscode: %v", err)
	}
	if err := env.profile.SetPasscode(ctx, "0000", "abcdef"); !errors.Is(err, ErrWrongPasscode) {
		t.Fatalf("change without current = %v", err)
	}
	if err := env.profile.ClearPasscode(ctx, "nope"); !errors.Is(err, ErrWrongPasscode) {
		t.Fatalf("clear with wrong passcode = %v", err)
	}
	if err := env.profile.ClearPasscode(ctx, "1234"); err != nil {
		t.Fatalf("ClearPasscode: %v", err)
	}
	user, _ := env.profile.Profile(ctx)
	if user.HasPasscode() {
		t.Fatalf("passcode still set")
	}
}

func TestProfileBindTelegram(t *testing.T) {
	env := newJournalEnv(t)
	ctx := context.Background()

	user, err := env.profile.BindTelegram(ctx, 42, "Ada", "Lovelace", "ada")
	if err != nil || user.TelegramID == nil || *user.TelegramID != 42 || user.Username != "ada" {
		t.Fatalf("BindTelegram = %+v, %v", user, err)
	}
	if _, err := env.profile.BindTelegram(ctx, 42, "Ada", "", ""); err != nil {
		t.Fatalf("same account rebinding: %v", err)
	}
	if _, err := env.profile.BindTelegram(ctx, 7, "Eve", "", "eve"); !errors.Is(err, ErrForeignAccount) {
		t.Fatalf("foreign account = %v", err)
	}
}

func TestReminderSettingsRoundTrip(t *testing.T) {
	env := newJournalEnv(t)
	ctx := context.Background()

	settings, err := env.reminder.Settings(ctx)
	if err != nil || settings.Enabled || settings.TimeOfDay != DefaultReminderTime {
		t.Fatalf("defaults = %+v, %v", settings, err)
	}
	settings.Enabled = true
	settings.TimeOfDay = "7:45"
	settings.Style = model.StyleGentle
	if _, err := env.reminder.Update(ctx, settings); err != nil {
		t.Fatalf("Update: %v", err)
	}
	stored, err := env.reminder.Settings(ctx)
	if err != nil || !stored.Enabled || stored.TimeOfDay != "07:45" || stored.Style != model.StyleGentle {
		t.Fatalf("stored = %+v, %v", stored, err)
	}
	if _, err := env.reminder.SetEnabled(ctx, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if stored, _ = env.reminder.Settings(ctx); stored.Enabled || stored.TimeOfDay != "07:45" {
		t.Fatalf("disable changed schedule: %+v", stored)
	}

	settings.TimeOfDay = "noon"
	if _, err := env.reminder.Update(ctx, settings); !errors.Is(err, ErrInvalidReminder) {
		t.Fatalf("invalid time = %v", err)
	}
}
