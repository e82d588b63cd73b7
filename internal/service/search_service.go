package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"daily-journal/internal/model"
	"daily-journal/internal/richtext"
)

const (
	DefaultPageSize  = 10
	PreviewLength    = 200
	PopularTagsLimit = 6
)

// SortOrder names how search results are ordered.
type SortOrder string

const (
	SortDateDesc      SortOrder = "date-desc"
	SortDateAsc       SortOrder = "date-asc"
	SortWordCountDesc SortOrder = "word-count-desc"
)

func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortDateDesc, "newest":
		return SortDateDesc, nil
	case SortDateAsc, "oldest":
		return SortDateAsc, nil
	case SortWordCountDesc, "word-count", "longest":
		return SortWordCountDesc, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", value)
	}
}

// SearchQuery filters entries. Zero values mean "no filter".
type SearchQuery struct {
	Text     string
	From     *time.Time
	To       *time.Time
	Mood     string
	Sort     SortOrder
	Page     int
	PageSize int
}

// SearchHit is the lightweight projection of a matching entry.
type SearchHit struct {
	ID          uuid.UUID `json:"id"`
	Date        time.Time `json:"date"`
	Title       string    `json:"title,omitempty"`
	Preview     string    `json:"preview"`
	WordCount   int       `json:"word_count"`
	PrimaryMood string    `json:"primary_mood"`
	Tags        []string  `json:"tags"`
}

// SearchPage is one page of results with the totals needed to paginate.
type SearchPage struct {
	Hits     []SearchHit `json:"hits"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Pages    int         `json:"pages"`
}

type candidate struct {
	entry *model.JournalEntry
	plain string
	words int
}

// SearchEntries runs q over entries. Text matches notes, moods or tags; the mood
// filter matches the primary or a secondary mood. Both are case-insensitive substrings.
func SearchEntries(entries []model.JournalEntry, q SearchQuery) SearchPage {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	mood := strings.ToLower(strings.TrimSpace(q.Mood))

	var from, to time.Time
	if q.From != nil {
		from = model.DateOnly(*q.From)
	}
	if q.To != nil {
		to = model.DateOnly(*q.To)
	}

	var matches []candidate
	for i := range entries {
		e := &entries[i]
		day := model.DateOnly(e.Date)
		if q.From != nil && day.Before(from) {
			continue
		}
		if q.To != nil && day.After(to) {
			continue
		}
		if mood != "" && !anyContains(e.Moods(), mood) {
			continue
		}
		plain := richtext.PlainText(e.Notes)
		if text != "" && !matchesText(e, plain, text) {
			continue
		}
		matches = append(matches, candidate{entry: e, plain: plain, words: len(strings.Fields(plain))})
	}

	sortCandidates(matches, q.Sort)

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	result := SearchPage{
		Hits:     []SearchHit{},
		Total:    len(matches),
		Page:     page,
		PageSize: size,
		Pages:    (len(matches) + size - 1) / size,
	}
	start := (page - 1) * size
	if start >= len(matches) {
		return result
	}
	end := min(start+size, len(matches))
	for _, c := range matches[start:end] {
		result.Hits = append(result.Hits, SearchHit{
			ID:          c.entry.ID,
			Date:        c.entry.Date,
			Title:       c.entry.Title,
			Preview:     richtext.Preview(c.entry.Notes, PreviewLength),
			WordCount:   c.words,
			PrimaryMood: c.entry.PrimaryMood,
			Tags:        c.entry.Tags(),
		})
	}
	return result
}

// matchesText looks at the notes text, the moods and the tags. Titles are not searched.
func matchesText(e *model.JournalEntry, plain, term string) bool {
	if strings.Contains(strings.ToLower(plain), term) {
		return true
	}
	return anyContains(e.Moods(), term) || anyContains(e.Tags(), term)
}

func anyContains(values []string, term string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

func sortCandidates(c []candidate, order SortOrder) {
	// Newest first is the base order; word count ties keep it.
	sort.SliceStable(c, func(i, j int) bool { return c[i].entry.Date.After(c[j].entry.Date) })
	switch order {
	case SortDateAsc:
		sort.SliceStable(c, func(i, j int) bool { return c[i].entry.Date.Before(c[j].entry.Date) })
	case SortWordCountDesc:
		sort.SliceStable(c, func(i, j int) bool { return c[i].words > c[j].words })
	}
}

// TagCount is a tag with the number of entries using it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

var placeholderTags = []TagCount{{Name: "gratitude"}, {Name: "work"}, {Name: "family"}}

// PopularTags counts tags across entries, case-insensitively, most used first and
// then by name. When no entry has tags a fixed placeholder set with zero counts is returned.
func PopularTags(entries []model.JournalEntry, limit int) []TagCount {
	if limit <= 0 || limit > PopularTagsLimit {
		limit = PopularTagsLimit
	}
	counts := make(map[string]int)
	for i := range entries {
		for _, tag := range entries[i].Tags() {
			key := strings.ToLower(strings.TrimSpace(tag))
			if key == "" {
				continue
			}
			counts[key]++
		}
	}
	if len(counts) == 0 {
		out := make([]TagCount, len(placeholderTags))
		copy(out, placeholderTags)
		return out
	}

	tags := make([]TagCount, 0, len(counts))
	for name, n := range counts {
		tags = append(tags, TagCount{Name: name, Count: n})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}

// TermHistory remembers recent search terms.
type TermHistory interface {
	Add(term string) error
	List() ([]string, error)
}

// SearchService runs searches over a fresh load of the entry store.
type SearchService struct {
	entries EntryLister
	history TermHistory
}

func NewSearchService(entries EntryLister, history TermHistory) *SearchService {
	return &SearchService{entries: entries, history: history}
}

// Search loads every entry, filters and paginates, and records the text term.
func (s *SearchService) Search(ctx context.Context, q SearchQuery) (SearchPage, error) {
	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return SearchPage{}, fmt.Errorf("load entries for search: %w", err)
	}
	page := SearchEntries(entries, q)
	if s.history != nil && strings.TrimSpace(q.Text) != "" {
		if err := s.history.Add(q.Text); err != nil {
			slog.Warn("record search term failed", "error", err)
		}
	}
	return page, nil
}

func (s *SearchService) RecentSearches() ([]string, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List()
}

func (s *SearchService) PopularTags(ctx context.Context) ([]TagCount, error) {
	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries for tags: %w", err)
	}
	return PopularTags(entries, PopularTagsLimit), nil
}
