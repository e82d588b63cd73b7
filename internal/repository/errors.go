package repository

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by lookups that expected a row to exist.
	ErrNotFound = errors.New("record not found")
	// ErrStoreUnavailable marks any failure of the underlying database.
	ErrStoreUnavailable = errors.New("journal store unavailable")
	// ErrUniqueDate marks an attempt to write a second entry for a calendar date.
	ErrUniqueDate = errors.New("an entry already exists for this date")
)

// UniqueDateError names the date that already holds an entry.
type UniqueDateError struct {
	Date time.Time
}

func (e *UniqueDateError) Error() string {
	return fmt.Sprintf("an entry already exists for %s", e.Date.Format("January 02, 2006"))
}

func (e *UniqueDateError) Is(target error) bool {
	return target == ErrUniqueDate
}

// StoreError wraps a database failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
