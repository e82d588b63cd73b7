package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"daily-journal/internal/model"
)

// DefaultUsername names the profile created on first startup.
const DefaultUsername = "journal_user"

// UserRepository handles the local profile.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// EnsureDefault returns the local profile, creating it if the table is empty.
func (r *UserRepository) EnsureDefault(ctx context.Context) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Order("created_at").First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = model.User{Username: DefaultUsername}
		if err := db.Create(&user).Error; err != nil {
			return nil, storeError("create user", err)
		}
		return &user, nil
	default:
		return nil, storeError("find user", err)
	}
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("user with telegram id %d: %w", telegramID, ErrNotFound)
	default:
		return nil, storeError("find user", err)
	}
}

// Update writes the whole profile back.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return storeError("update user", err)
	}
	return nil
}
