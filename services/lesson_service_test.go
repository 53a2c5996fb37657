package services

import (
	"errors"
	"testing"

	"learning-progression-system/models"
)

func newLessonFixture(t *testing.T) (*LessonService, *ProgressionService) {
	t.Helper()
	db := newTestDB(t)
	seedProfile(t, db, "user-1")
	prog := NewProgressionService(db)
	streaks := NewStreakService(db)
	ach := NewAchievementService(db)
	if err := ach.SeedAchievementTypes(); err != nil {
		t.Fatalf("seed achievements: %v", err)
	}
	return NewLessonService(db, prog, streaks, ach), prog
}

func TestRecordCompletion_Payout(t *testing.T) {
	svc, prog := newLessonFixture(t)

	// perf 87 on base 100 → 87 XP; score 139 ≥ 110 → +43 bonus
	res, err := svc.RecordCompletion(LessonCompletionInput{
		ExternalUserID:    "user-1",
		LessonID:          "lesson-ai-basics",
		BaseXP:            100,
		AmazingnessRating: 8,
		Score: CompletionScoreInput{
			PerformanceScore:   87,
			SatisfactionRating: intPtr(4),
			EngagementScore:    intPtr(8),
			Quality:            &QualityMetrics{Clarity: 4, Usefulness: 5, Pace: 3, WouldRecommend: true},
		},
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if res.AmazingnessScore != 139 {
		t.Fatalf("expected score 139, got %d", res.AmazingnessScore)
	}
	if res.BaseXPAwarded != 87 {
		t.Fatalf("expected base 87, got %d", res.BaseXPAwarded)
	}
	if res.BonusXP != 43 {
		t.Fatalf("expected bonus 43, got %d", res.BonusXP)
	}
	if res.XP.NewTotalXP != 130 {
		t.Fatalf("expected total 130, got %d", res.XP.NewTotalXP)
	}
	if res.StreakDays != 1 {
		t.Fatalf("expected streak 1, got %d", res.StreakDays)
	}

	prof, err := prog.GetProfile("user-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if prof.TotalLessons != 1 {
		t.Fatalf("expected total_lessons 1, got %d", prof.TotalLessons)
	}
	// the streak commits in the same transaction as the completion
	if prof.StreakDays != res.StreakDays {
		t.Fatalf("streak diverged: profile=%d result=%d", prof.StreakDays, res.StreakDays)
	}
	if prof.LastActivityDate == nil {
		t.Fatalf("last_activity_date not set with the completion")
	}
	if prof.PerfectScores != 0 {
		t.Fatalf("expected no perfect scores, got %d", prof.PerfectScores)
	}
	if res.Completion.AmazingnessRating != 8 {
		t.Fatalf("rating not persisted: %d", res.Completion.AmazingnessRating)
	}
}

func TestRecordCompletion_PerfectScoreCounter(t *testing.T) {
	svc, prog := newLessonFixture(t)

	_, err := svc.RecordCompletion(LessonCompletionInput{
		ExternalUserID: "user-1",
		LessonID:       "lesson-1",
		Score: CompletionScoreInput{
			PerformanceScore:   100,
			SatisfactionRating: intPtr(5),
			EngagementScore:    intPtr(10),
			Quality:            &QualityMetrics{Clarity: 5, Usefulness: 5, Pace: 3, WouldRecommend: true},
		},
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	prof, err := prog.GetProfile("user-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if prof.PerfectScores != 1 {
		t.Fatalf("expected perfect_scores 1, got %d", prof.PerfectScores)
	}

	// PERFECTIONIST unlocks off the counter
	var count int64
	svc.DB.Model(&models.UserAchievement{}).
		Where("external_user_id = ? AND achievement_code = ?", "user-1", "PERFECTIONIST").
		Count(&count)
	if count != 1 {
		t.Fatalf("expected PERFECTIONIST award, got %d rows", count)
	}
}

func TestRecordCompletion_NoBonusBelowThreshold(t *testing.T) {
	svc, _ := newLessonFixture(t)

	res, err := svc.RecordCompletion(LessonCompletionInput{
		ExternalUserID: "user-1",
		LessonID:       "lesson-1",
		BaseXP:         100,
		Score:          CompletionScoreInput{PerformanceScore: 60},
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if res.BonusXP != 0 {
		t.Fatalf("expected no bonus, got %d", res.BonusXP)
	}
	if res.XP.NewTotalXP != 60 {
		t.Fatalf("expected total 60, got %d", res.XP.NewTotalXP)
	}
}

func TestRecordCompletion_Validation(t *testing.T) {
	svc, _ := newLessonFixture(t)

	cases := []LessonCompletionInput{
		{LessonID: "lesson-1"},     // missing user
		{ExternalUserID: "user-1"}, // missing lesson
		{ExternalUserID: "user-1", LessonID: "l", AmazingnessRating: 11},
		{ExternalUserID: "user-1", LessonID: "l", BaseXP: -5},
		{ExternalUserID: "user-1", LessonID: "l", Score: CompletionScoreInput{PerformanceScore: 140}},
	}
	for i, in := range cases {
		if _, err := svc.RecordCompletion(in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestRecordCompletion_UnknownUser(t *testing.T) {
	svc, _ := newLessonFixture(t)
	_, err := svc.RecordCompletion(LessonCompletionInput{
		ExternalUserID: "ghost",
		LessonID:       "lesson-1",
		Score:          CompletionScoreInput{PerformanceScore: 80},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// nothing persisted on rollback
	var count int64
	svc.DB.Model(&models.LessonCompletion{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected rollback, found %d completion rows", count)
	}
}
