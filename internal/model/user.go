package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the local journal owner. Exactly one profile exists per database.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string
	FirstName    string
	LastName     string
	Email        string
	TelegramID   *int64 `gorm:"uniqueIndex"`
	PasscodeHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasPasscode reports whether the journal is locked behind a passcode.
func (u *User) HasPasscode() bool {
	return u.PasscodeHash != ""
}
