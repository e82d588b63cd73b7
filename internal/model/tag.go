package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is a selectable label. Names are unique regardless of case.
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:64;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Tag) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// DefaultTags is the predefined vocabulary seeded on first startup.
var DefaultTags = []string{
	"Work", "Career", "Studies", "Family", "Friends", "Relationships",
	"Health", "Fitness", "Personal Growth", "Self-care", "Hobbies",
	"Travel", "Nature", "Finance", "Spirituality", "Birthday", "Holiday",
	"Vacation", "Celebration", "Exercise", "Reading", "Writing",
	"Cooking", "Meditation", "Yoga", "Music", "Shopping", "Parenting",
	"Projects", "Planning", "Reflection",
}

// PredefinedTag returns the canonical spelling of name if it belongs to DefaultTags.
func PredefinedTag(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, tag := range DefaultTags {
		if strings.EqualFold(tag, name) {
			return tag, true
		}
	}
	return "", false
}
