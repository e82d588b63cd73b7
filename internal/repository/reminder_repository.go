package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"daily-journal/internal/model"
)

// ReminderRepository persists the writing reminder schedule.
type ReminderRepository struct {
	db    *gorm.DB
	owner uuid.UUID
}

func NewReminderRepository(db *gorm.DB, owner uuid.UUID) *ReminderRepository {
	return &ReminderRepository{db: db, owner: owner}
}

// Get returns the stored settings, or nil when the user never changed them.
func (r *ReminderRepository) Get(ctx context.Context) (*model.ReminderSettings, error) {
	var settings model.ReminderSettings
	err := r.db.WithContext(ctx).Where("user_id = ?", r.owner).First(&settings).Error
	switch {
	case err == nil:
		return &settings, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, storeError("get reminder settings", err)
	}
}

func (r *ReminderRepository) Save(ctx context.Context, settings *model.ReminderSettings) error {
	settings.UserID = r.owner
	if settings.ID == uuid.Nil {
		current, err := r.Get(ctx)
		if err != nil {
			return err
		}
		if current != nil {
			settings.ID = current.ID
			settings.CreatedAt = current.CreatedAt
		}
	}
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return storeError("save reminder settings", err)
	}
	return nil
}
