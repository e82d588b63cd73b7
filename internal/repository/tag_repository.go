package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"daily-journal/internal/model"
)

// TagRepository handles the tag catalog. Tag names are compared case-insensitively.
type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) ListAll(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, storeError("list tags", err)
	}
	return tags, nil
}

// GetByName returns the tag with the given name, or nil.
func (r *TagRepository) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).First(&tag).Error
	switch {
	case err == nil:
		return &tag, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, storeError("get tag", err)
	}
}

// Save inserts a new tag. When a tag with the same name exists, that row is
// touched instead and tag is filled from it.
func (r *TagRepository) Save(ctx context.Context, tag *model.Tag) error {
	tag.Name = strings.TrimSpace(tag.Name)
	existing, err := r.GetByName(ctx, tag.Name)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
			return storeError("create tag", err)
		}
		return nil
	}

	if err := r.db.WithContext(ctx).Model(existing).Update("updated_at", r.db.NowFunc()).Error; err != nil {
		return storeError("touch tag", err)
	}
	*tag = *existing
	return nil
}

func (r *TagRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Tag{}).Count(&count).Error; err != nil {
		return 0, storeError("count tags", err)
	}
	return count, nil
}

// SeedDefaults inserts the predefined vocabulary when the catalog is empty.
func (r *TagRepository) SeedDefaults(ctx context.Context) (int, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	tags := make([]model.Tag, 0, len(model.DefaultTags))
	for _, name := range model.DefaultTags {
		tags = append(tags, model.Tag{Name: name})
	}
	if err := r.db.WithContext(ctx).CreateInBatches(tags, 50).Error; err != nil {
		return 0, storeError("seed tags", err)
	}
	return len(tags), nil
}
