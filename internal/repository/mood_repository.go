package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"daily-journal/internal/model"
)

// MoodRepository handles the mood catalog.
type MoodRepository struct {
	db *gorm.DB
}

func NewMoodRepository(db *gorm.DB) *MoodRepository {
	return &MoodRepository{db: db}
}

func (r *MoodRepository) ListAll(ctx context.Context) ([]model.Mood, error) {
	var moods []model.Mood
	if err := r.db.WithContext(ctx).Order("category, name").Find(&moods).Error; err != nil {
		return nil, storeError("list moods", err)
	}
	return moods, nil
}

func (r *MoodRepository) ListByCategory(ctx context.Context, category model.MoodCategory) ([]model.Mood, error) {
	var moods []model.Mood
	if err := r.db.WithContext(ctx).Where("category = ?", category).Order("name").Find(&moods).Error; err != nil {
		return nil, storeError("list moods by category", err)
	}
	return moods, nil
}

// GetByName finds a mood case-insensitively; nil when absent.
func (r *MoodRepository) GetByName(ctx context.Context, name string) (*model.Mood, error) {
	var mood model.Mood
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&mood).Error
	switch {
	case err == nil:
		return &mood, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, storeError("get mood", err)
	}
}

// Save inserts the mood or, when its ID exists, updates it.
func (r *MoodRepository) Save(ctx context.Context, mood *model.Mood) error {
	if err := r.db.WithContext(ctx).Save(mood).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("save mood %q: name already used", mood.Name)
		}
		return storeError("save mood", err)
	}
	return nil
}

func (r *MoodRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Mood{}).Count(&count).Error; err != nil {
		return 0, storeError("count moods", err)
	}
	return count, nil
}

// SeedDefaults inserts the built-in moods when the catalog is empty and returns
// the number of rows inserted. A catalog with any row is left alone.
func (r *MoodRepository) SeedDefaults(ctx context.Context) (int, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	var moods []model.Mood
	for _, category := range model.MoodCategories {
		for _, name := range model.DefaultMoods[category] {
			moods = append(moods, model.Mood{Name: name, Category: category})
		}
	}
	if err := r.db.WithContext(ctx).CreateInBatches(moods, 50).Error; err != nil {
		return 0, storeError("seed moods", err)
	}
	return len(moods), nil
}
