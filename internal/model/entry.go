package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JournalEntry is the single diary record of one calendar date.
type JournalEntry struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_entry_user_date" json:"user_id"`
	Date           time.Time                   `gorm:"column:entry_date;not null;uniqueIndex:idx_entry_user_date" json:"date"`
	Title          string                      `gorm:"size:200" json:"title,omitempty"`
	PrimaryMood    string                      `gorm:"size:64;not null" json:"primary_mood"`
	SecondaryMoods datatypes.JSONSlice[string] `json:"secondary_moods,omitempty"`
	Category       MoodCategory                `gorm:"size:16" json:"category"`
	Notes          string                      `gorm:"type:text" json:"notes,omitempty"`
	PredefinedTags datatypes.JSONSlice[string] `json:"predefined_tags,omitempty"`
	CustomTags     datatypes.JSONSlice[string] `json:"custom_tags,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns an ID when the caller did not.
func (e *JournalEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// AfterFind drops whatever zone the driver attached to the stored date.
func (e *JournalEntry) AfterFind(_ *gorm.DB) error {
	e.Date = DateOnly(e.Date.UTC())
	return nil
}

// Tags returns predefined tags followed by custom tags.
func (e *JournalEntry) Tags() []string {
	tags := make([]string, 0, len(e.PredefinedTags)+len(e.CustomTags))
	tags = append(tags, e.PredefinedTags...)
	tags = append(tags, e.CustomTags...)
	return tags
}

// Moods returns the primary mood followed by the secondary ones.
func (e *JournalEntry) Moods() []string {
	moods := make([]string, 0, 1+len(e.SecondaryMoods))
	if e.PrimaryMood != "" {
		moods = append(moods, e.PrimaryMood)
	}
	return append(moods, e.SecondaryMoods...)
}
