package services

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNextStreak_FirstActivity(t *testing.T) {
	streak, changed := NextStreak(0, nil, day("2025-01-01"))
	if streak != 1 || !changed {
		t.Fatalf("expected (1, true), got (%d, %v)", streak, changed)
	}
}

func TestNextStreak_ConsecutiveDay(t *testing.T) {
	last := day("2025-01-01")
	streak, changed := NextStreak(3, &last, day("2025-01-02"))
	if streak != 4 || !changed {
		t.Fatalf("expected (4, true), got (%d, %v)", streak, changed)
	}
}

func TestNextStreak_SameDayIdempotent(t *testing.T) {
	last := day("2025-01-02")
	streak, changed := NextStreak(4, &last, day("2025-01-02"))
	if streak != 4 || changed {
		t.Fatalf("expected (4, false), got (%d, %v)", streak, changed)
	}
}

func TestNextStreak_GapResets(t *testing.T) {
	last := day("2025-01-01")
	streak, changed := NextStreak(9, &last, day("2025-01-05"))
	if streak != 1 || !changed {
		t.Fatalf("expected (1, true), got (%d, %v)", streak, changed)
	}
}

func TestNextStreak_BackdatedIgnored(t *testing.T) {
	last := day("2025-01-10")
	streak, changed := NextStreak(5, &last, day("2025-01-08"))
	if streak != 5 || changed {
		t.Fatalf("expected (5, false), got (%d, %v)", streak, changed)
	}
}

func TestRecordActivity_IncrementAndReset(t *testing.T) {
	db := newTestDB(t)
	seedProfile(t, db, "user-streak")
	svc := NewStreakService(db)

	streak, err := svc.RecordActivity("user-streak", day("2025-03-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if streak != 1 {
		t.Fatalf("expected streak 1, got %d", streak)
	}

	streak, err = svc.RecordActivity("user-streak", day("2025-03-02"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if streak != 2 {
		t.Fatalf("expected streak 2, got %d", streak)
	}

	// duplicate same-day call leaves the streak untouched
	streak, err = svc.RecordActivity("user-streak", day("2025-03-02"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if streak != 2 {
		t.Fatalf("expected streak 2 after duplicate, got %d", streak)
	}

	// gap resets to 1
	streak, err = svc.RecordActivity("user-streak", day("2025-03-09"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if streak != 1 {
		t.Fatalf("expected streak reset to 1, got %d", streak)
	}
}

func TestRecordActivity_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewStreakService(db)
	if _, err := svc.RecordActivity("ghost", day("2025-03-01")); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}
