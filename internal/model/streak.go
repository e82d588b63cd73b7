package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StreakSnapshot caches the last computed streak figures. The entries table stays the source of truth.
type StreakSnapshot struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CurrentStreak       int        `gorm:"default:0" json:"current_streak"`
	LongestStreak       int        `gorm:"default:0" json:"longest_streak"`
	TotalEntries        int        `gorm:"default:0" json:"total_entries"`
	TotalActiveDays     int        `gorm:"default:0" json:"total_active_days"`
	LastEntryDate       *time.Time `json:"last_entry_date,omitempty"`
	PreviousMilestone   int        `json:"previous_milestone"`
	NextMilestone       int        `json:"next_milestone"`
	NextMilestoneName   string     `gorm:"size:64" json:"next_milestone_name"`
	DaysToNextMilestone int        `json:"days_to_next_milestone"`
	IsActive            bool       `json:"is_active"`
	CelebratedOn        *time.Time `json:"celebrated_on,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (s *StreakSnapshot) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
