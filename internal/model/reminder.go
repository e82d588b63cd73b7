package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReminderFrequency says on which days a reminder fires.
type ReminderFrequency string

const (
	FrequencyDaily    ReminderFrequency = "daily"
	FrequencyWeekdays ReminderFrequency = "weekdays"
	FrequencyCustom   ReminderFrequency = "custom"
)

// ReminderStyle picks the wording of the reminder text.
type ReminderStyle string

const (
	StyleGentle       ReminderStyle = "gentle"
	StyleMotivational ReminderStyle = "motivational"
	StylePrompt       ReminderStyle = "prompt"
)

// ReminderSettings is the local writing-reminder schedule.
type ReminderSettings struct {
	ID        uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Enabled   bool                        `gorm:"default:false" json:"enabled"`
	TimeOfDay string                      `gorm:"size:5;not null" json:"time_of_day"` // HH:MM
	Frequency ReminderFrequency           `gorm:"size:16;not null" json:"frequency"`
	Days      datatypes.JSONSlice[string] `json:"days,omitempty"`
	Style     ReminderStyle               `gorm:"size:16;not null" json:"style"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

func (r *ReminderSettings) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
