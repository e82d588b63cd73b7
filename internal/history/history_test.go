package history

import (
	"reflect"
	"testing"
)

func TestAddKeepsFiveMostRecentDistinct(t *testing.T) {
	s := Open(t.TempDir(), 0)

	for _, term := range []string{"one", "two", "three", "four", "five", "six"} {
		if err := s.Add(term); err != nil {
			t.Fatalf("Add(%q): %v", term, err)
		}
	}
	got, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"six", "five", "four", "three", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}

	if err := s.Add("FOUR"); err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	if err := s.Add("   "); err != nil {
		t.Fatalf("Add blank: %v", err)
	}
	got, _ = s.List()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("duplicate or blank changed the list: %v", got)
	}
}

func TestHistorySurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	if err := Open(dir, 3).Add("gratitude"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := Open(dir, 3).List()
	if err != nil || !reflect.DeepEqual(got, []string{"gratitude"}) {
		t.Fatalf("List after reopen = %v, %v", got, err)
	}
}

func TestClear(t *testing.T) {
	s := Open(t.TempDir(), 0)
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}
	_ = s.Add("work")
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err := s.List()
	if err != nil || len(got) != 0 {
		t.Fatalf("List after Clear = %v, %v", got, err)
	}
}
