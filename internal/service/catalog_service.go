package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"daily-journal/internal/model"
	"daily-journal/internal/repository"
)

var (
	ErrUnknownMood = errors.New("unknown mood")
	ErrBlankTag    = errors.New("tag name is empty")
)

// CatalogService exposes the mood and tag vocabularies.
type CatalogService struct {
	moods *repository.MoodRepository
	tags  *repository.TagRepository
}

func NewCatalogService(moods *repository.MoodRepository, tags *repository.TagRepository) *CatalogService {
	return &CatalogService{moods: moods, tags: tags}
}

// Seed fills empty catalogs with the built-in vocabulary.
func (s *CatalogService) Seed(ctx context.Context) (moods, tags int, err error) {
	if moods, err = s.moods.SeedDefaults(ctx); err != nil {
		return 0, 0, err
	}
	if tags, err = s.tags.SeedDefaults(ctx); err != nil {
		return moods, 0, err
	}
	return moods, tags, nil
}

func (s *CatalogService) Moods(ctx context.Context) ([]model.Mood, error) {
	return s.moods.ListAll(ctx)
}

// MoodsByCategory groups the catalog for display.
func (s *CatalogService) MoodsByCategory(ctx context.Context) (map[model.MoodCategory][]model.Mood, error) {
	moods, err := s.moods.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[model.MoodCategory][]model.Mood, len(model.MoodCategories))
	for _, m := range moods {
		grouped[m.Category] = append(grouped[m.Category], m)
	}
	return grouped, nil
}

// ResolveMood looks a mood up by name, ignoring case.
func (s *CatalogService) ResolveMood(ctx context.Context, name string) (*model.Mood, error) {
	name = strings.TrimSpace(name)
	mood, err := s.moods.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if mood == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMood, name)
	}
	return mood, nil
}

func (s *CatalogService) MoodCategoryOf(ctx context.Context, name string) (model.MoodCategory, error) {
	mood, err := s.ResolveMood(ctx, name)
	if err != nil {
		return "", err
	}
	return mood.Category, nil
}

func (s *CatalogService) Tags(ctx context.Context) ([]model.Tag, error) {
	return s.tags.ListAll(ctx)
}

// AddCustomTag stores a user supplied tag. Adding an existing name returns the stored tag.
func (s *CatalogService) AddCustomTag(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankTag
	}
	tag := &model.Tag{Name: name}
	if err := s.tags.Save(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// SplitTags separates names into the predefined vocabulary (canonical spelling)
// and custom tags. Blank names and case-insensitive repeats are dropped.
func SplitTags(names []string) (predefined, custom []string) {
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if canonical, ok := model.PredefinedTag(name); ok {
			predefined = append(predefined, canonical)
			continue
		}
		custom = append(custom, name)
	}
	return predefined, custom
}

// ParseTagList splits comma separated user input.
func ParseTagList(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
