package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MoodCategory classifies a mood as positive, neutral or negative.
type MoodCategory string

const (
	CategoryPositive MoodCategory = "Positive"
	CategoryNeutral  MoodCategory = "Neutral"
	CategoryNegative MoodCategory = "Negative"
)

// MoodCategories lists the categories in display order.
var MoodCategories = []MoodCategory{CategoryPositive, CategoryNeutral, CategoryNegative}

// ParseMoodCategory matches a category name case-insensitively.
func ParseMoodCategory(value string) (MoodCategory, bool) {
	for _, c := range MoodCategories {
		if strings.EqualFold(string(c), strings.TrimSpace(value)) {
			return c, true
		}
	}
	return "", false
}

// Emoji is the presentation hint used by the bot and the CLI.
func (c MoodCategory) Emoji() string {
	switch c {
	case CategoryPositive:
		return "😊"
	case CategoryNeutral:
		return "😐"
	case CategoryNegative:
		return "😔"
	default:
		return "🏷️"
	}
}

// Mood is a catalog entry that entries reference by name.
type Mood struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string       `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Category  MoodCategory `gorm:"size:16;not null;index" json:"category"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (m *Mood) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// DefaultMoods is the built-in vocabulary seeded on first startup.
var DefaultMoods = map[MoodCategory][]string{
	CategoryPositive: {"Happy", "Excited", "Relaxed", "Grateful", "Confident"},
	CategoryNeutral:  {"Calm", "Thoughtful", "Curious", "Nostalgic", "Bored"},
	CategoryNegative: {"Sad", "Angry", "Stressed", "Lonely", "Anxious"},
}
