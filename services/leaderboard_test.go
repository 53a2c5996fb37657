package services

import (
	"errors"
	"testing"
)

func TestRank_GlobalOrdering(t *testing.T) {
	db := newTestDB(t)
	a := seedProfile(t, db, "user-a")
	b := seedProfile(t, db, "user-b")
	db.Model(a).Update("total_xp", 500)
	db.Model(b).Update("total_xp", 800)

	svc := NewLeaderboardService(db)
	board, err := svc.Rank(WindowGlobal, "user-a", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(board.Leaderboard) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board.Leaderboard))
	}
	if board.Leaderboard[0].ExternalUserID != "user-b" || board.Leaderboard[0].Rank != 1 {
		t.Fatalf("expected user-b rank 1, got %s rank %d", board.Leaderboard[0].ExternalUserID, board.Leaderboard[0].Rank)
	}
	if board.Leaderboard[1].ExternalUserID != "user-a" || board.Leaderboard[1].Rank != 2 {
		t.Fatalf("expected user-a rank 2, got %s rank %d", board.Leaderboard[1].ExternalUserID, board.Leaderboard[1].Rank)
	}
	if board.CurrentRank != 2 {
		t.Fatalf("expected requester rank 2, got %d", board.CurrentRank)
	}
	if board.TotalUsers != 2 {
		t.Fatalf("expected population 2, got %d", board.TotalUsers)
	}
	if !board.Leaderboard[1].IsCurrentUser {
		t.Fatalf("requester entry not highlighted")
	}
}

func TestRank_TieBreakOnUserID(t *testing.T) {
	db := newTestDB(t)
	z := seedProfile(t, db, "user-z")
	a := seedProfile(t, db, "user-a")
	db.Model(z).Update("total_xp", 300)
	db.Model(a).Update("total_xp", 300)

	svc := NewLeaderboardService(db)
	board, err := svc.Rank(WindowGlobal, "", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// ties break on ascending external user id
	if board.Leaderboard[0].ExternalUserID != "user-a" {
		t.Fatalf("expected user-a first on tie, got %s", board.Leaderboard[0].ExternalUserID)
	}
}

func TestRank_WindowSelectsField(t *testing.T) {
	db := newTestDB(t)
	a := seedProfile(t, db, "user-a")
	b := seedProfile(t, db, "user-b")
	// a leads weekly, b leads global
	db.Model(a).Updates(map[string]interface{}{"total_xp": 100, "weekly_xp": 90})
	db.Model(b).Updates(map[string]interface{}{"total_xp": 900, "weekly_xp": 10})

	svc := NewLeaderboardService(db)

	weekly, err := svc.Rank(WindowWeekly, "", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weekly.Leaderboard[0].ExternalUserID != "user-a" || weekly.Leaderboard[0].XP != 90 {
		t.Fatalf("weekly window wrong: %s xp=%d", weekly.Leaderboard[0].ExternalUserID, weekly.Leaderboard[0].XP)
	}

	global, err := svc.Rank(WindowGlobal, "", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if global.Leaderboard[0].ExternalUserID != "user-b" {
		t.Fatalf("global window wrong: %s", global.Leaderboard[0].ExternalUserID)
	}
}

func TestRank_UnknownWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)
	if _, err := svc.Rank(LeaderboardWindow("monthly"), "", 25); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
