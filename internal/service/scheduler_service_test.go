package service

import (
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "20:00", want: "0 0 20 * * *"},
		{in: "07:05", want: "0 5 7 * * *"},
		{in: " 0:30 ", want: "0 30 0 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "1:2:3", wantErr: true},
	}
	for _, tc := range cases {
		got, err := buildDailySpec(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("buildDailySpec(%q) expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("buildDailySpec(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestSchedulerRegistersAndRemovesJobs(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	s.Start()
	defer s.Stop()

	id, err := s.ScheduleDaily("00:05", func() {})
	if err != nil {
		t.Fatalf("ScheduleDaily: %v", err)
	}
	// The entry's next time is computed once the scheduler has picked it up.
	deadline := time.Now().Add(2 * time.Second)
	for s.Next(id).IsZero() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	next := s.Next(id)
	if next.IsZero() || next.Hour() != 0 || next.Minute() != 5 {
		t.Fatalf("unexpected next run %v", next)
	}

	if _, err := s.ScheduleSpec("not a spec", func() {}); err == nil {
		t.Fatalf("expected invalid spec error")
	}
	if _, err := s.ScheduleInterval(0, func() {}); err == nil {
		t.Fatalf("expected non-positive interval error")
	}

	s.Remove(id)
	if !s.Next(id).IsZero() {
		t.Fatalf("removed job still scheduled")
	}
}
