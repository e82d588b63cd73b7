package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"daily-journal/internal/model"
)

var entryUpdateColumns = []string{
	"entry_date",
	"title",
	"primary_mood",
	"secondary_moods",
	"category",
	"notes",
	"predefined_tags",
	"custom_tags",
	"updated_at",
}

// JournalRepository stores the entries of one journal owner.
type JournalRepository struct {
	db    *gorm.DB
	owner uuid.UUID
}

func NewJournalRepository(db *gorm.DB, owner uuid.UUID) *JournalRepository {
	return &JournalRepository{db: db, owner: owner}
}

func (r *JournalRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("user_id = ?", r.owner)
}

// Create inserts a new entry. A second entry for the same calendar date is rejected
// with *UniqueDateError and the stored entry is left untouched.
func (r *JournalRepository) Create(ctx context.Context, entry *model.JournalEntry) error {
	entry.UserID = r.owner
	entry.Date = model.DateOnly(entry.Date)

	existing, err := r.GetByDate(ctx, entry.Date)
	if err != nil {
		return err
	}
	if existing != nil {
		return &UniqueDateError{Date: entry.Date}
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if taken, _ := r.GetByDate(ctx, entry.Date); taken != nil {
				return &UniqueDateError{Date: entry.Date}
			}
			return fmt.Errorf("create entry: %w", err)
		}
		return storeError("create entry", err)
	}
	return nil
}

// Update rewrites an existing entry. Moving it onto a date held by another entry fails
// with *UniqueDateError.
func (r *JournalRepository) Update(ctx context.Context, entry *model.JournalEntry) error {
	if entry.ID == uuid.Nil {
		return fmt.Errorf("update entry without id: %w", ErrNotFound)
	}
	entry.UserID = r.owner
	entry.Date = model.DateOnly(entry.Date)

	existing, err := r.GetByDate(ctx, entry.Date)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != entry.ID {
		return &UniqueDateError{Date: entry.Date}
	}

	res := r.db.WithContext(ctx).Model(entry).
		Where("user_id = ?", r.owner).
		Select(entryUpdateColumns).
		Updates(entry)
	if err := res.Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &UniqueDateError{Date: entry.Date}
		}
		return storeError("update entry", err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update entry %s: %w", entry.ID, ErrNotFound)
	}
	return nil
}

func (r *JournalRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.JournalEntry, error) {
	var entry model.JournalEntry
	err := r.scoped(ctx).Where("id = ?", id).First(&entry).Error
	switch {
	case err == nil:
		return &entry, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	default:
		return nil, storeError("get entry", err)
	}
}

// GetByDate returns the entry written on the calendar date of date, or nil.
func (r *JournalRepository) GetByDate(ctx context.Context, date time.Time) (*model.JournalEntry, error) {
	var entry model.JournalEntry
	err := r.scoped(ctx).Where("entry_date = ?", model.DateOnly(date)).First(&entry).Error
	switch {
	case err == nil:
		return &entry, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, storeError("get entry by date", err)
	}
}

// ListAll returns every entry, newest date first.
func (r *JournalRepository) ListAll(ctx context.Context) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	if err := r.scoped(ctx).Order("entry_date DESC").Find(&entries).Error; err != nil {
		return nil, storeError("list entries", err)
	}
	return entries, nil
}

func (r *JournalRepository) ListRecent(ctx context.Context, n int) ([]model.JournalEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	var entries []model.JournalEntry
	if err := r.scoped(ctx).Order("entry_date DESC").Limit(n).Find(&entries).Error; err != nil {
		return nil, storeError("list recent entries", err)
	}
	return entries, nil
}

// ListByDateRange returns entries between start and end inclusive, newest date first.
func (r *JournalRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	if err := r.scoped(ctx).
		Where("entry_date >= ? AND entry_date <= ?", model.DateOnly(start), model.DateOnly(end)).
		Order("entry_date DESC").
		Find(&entries).Error; err != nil {
		return nil, storeError("list entries by range", err)
	}
	return entries, nil
}

// Delete removes the entry by ID. Missing entries are ignored.
func (r *JournalRepository) Delete(ctx context.Context, entry *model.JournalEntry) error {
	if err := r.scoped(ctx).Where("id = ?", entry.ID).Delete(&model.JournalEntry{}).Error; err != nil {
		return storeError("delete entry", err)
	}
	return nil
}

func (r *JournalRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.scoped(ctx).Model(&model.JournalEntry{}).Count(&count).Error; err != nil {
		return 0, storeError("count entries", err)
	}
	return count, nil
}
