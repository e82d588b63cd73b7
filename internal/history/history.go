// Package history keeps the most recent distinct search terms on disk.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

// DefaultLimit is how many terms are retained.
const DefaultLimit = 5

const termsKey = "recent-searches"

// Store persists recent search terms, most recent first.
type Store struct {
	mu    sync.Mutex
	d     *diskv.Diskv
	limit int
}

// Open creates a Store rooted at basePath.
func Open(basePath string, limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 64 * 1024,
		}),
		limit: limit,
	}
}

// Add records term. Blank terms and terms already retained (ignoring case) leave the list unchanged.
func (s *Store) Add(term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	terms, err := s.read()
	if err != nil {
		return err
	}
	for _, t := range terms {
		if strings.EqualFold(t, term) {
			return nil
		}
	}
	terms = append([]string{term}, terms...)
	if len(terms) > s.limit {
		terms = terms[:s.limit]
	}
	return s.write(terms)
}

// List returns the retained terms, most recent first.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.d.Has(termsKey) {
		return nil
	}
	if err := s.d.Erase(termsKey); err != nil {
		return fmt.Errorf("clear search history: %w", err)
	}
	return nil
}

func (s *Store) read() ([]string, error) {
	val, err := s.d.Read(termsKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read search history: %w", err)
	}
	var terms []string
	if err := json.Unmarshal(val, &terms); err != nil {
		return nil, fmt.Errorf("decode search history: %w", err)
	}
	return terms, nil
}

func (s *Store) write(terms []string) error {
	val, err := json.Marshal(terms)
	if err != nil {
		return fmt.Errorf("encode search history: %w", err)
	}
	if err := s.d.Write(termsKey, val); err != nil {
		return fmt.Errorf("write search history: %w", err)
	}
	return nil
}
