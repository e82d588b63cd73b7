package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"daily-journal/internal/model"
)

// StreakRepository persists the cached streak snapshot of one owner.
type StreakRepository struct {
	db    *gorm.DB
	owner uuid.UUID
}

func NewStreakRepository(db *gorm.DB, owner uuid.UUID) *StreakRepository {
	return &StreakRepository{db: db, owner: owner}
}

// Get returns the cached snapshot, or nil if none was written yet.
func (r *StreakRepository) Get(ctx context.Context) (*model.StreakSnapshot, error) {
	var snap model.StreakSnapshot
	err := r.db.WithContext(ctx).Where("user_id = ?", r.owner).First(&snap).Error
	switch {
	case err == nil:
		return &snap, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, storeError("get streak snapshot", err)
	}
}

// Save overwrites the owner's snapshot, creating it on first use.
func (r *StreakRepository) Save(ctx context.Context, snap *model.StreakSnapshot) error {
	snap.UserID = r.owner
	if snap.ID == uuid.Nil {
		current, err := r.Get(ctx)
		if err != nil {
			return err
		}
		if current != nil {
			snap.ID = current.ID
			snap.CreatedAt = current.CreatedAt
		}
	}
	if err := r.db.WithContext(ctx).Save(snap).Error; err != nil {
		return storeError("save streak snapshot", err)
	}
	return nil
}
