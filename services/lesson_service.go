package services

import (
	"encoding/json"
	"fmt"
	"time"

	"learning-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LessonService struct {
	DB           *gorm.DB
	Progression  *ProgressionService
	Streaks      *StreakService
	Achievements *AchievementService
}

func NewLessonService(db *gorm.DB, prog *ProgressionService, streaks *StreakService, ach *AchievementService) *LessonService {
	return &LessonService{DB: db, Progression: prog, Streaks: streaks, Achievements: ach}
}

// LessonCompletionInput is validated at the boundary before any state mutation.
type LessonCompletionInput struct {
	ExternalUserID    string
	LessonID          string
	MissionID         *string
	BaseXP            int64
	CompletionTimeSec int
	AmazingnessRating int // 1-10 self rating, persisted as-is
	Score             CompletionScoreInput
}

// LessonCompletionResult reports the persisted completion plus the XP breakdown.
type LessonCompletionResult struct {
	Completion       *models.LessonCompletion `json:"completion"`
	AmazingnessScore int                      `json:"amazingness_score"`
	QualityTier      string                   `json:"quality_tier"`
	BaseXPAwarded    int64                    `json:"base_xp_awarded"`
	BonusXP          int64                    `json:"bonus_xp"`
	XP               *XPResult                `json:"xp"`
	StreakDays       int                      `json:"streak_days"`
}

// RecordCompletion persists one immutable lesson completion: computes the
// composite score, pays performance-scaled XP plus the high-score bonus, then
// extends the streak and re-evaluates achievements.
func (s *LessonService) RecordCompletion(in LessonCompletionInput) (*LessonCompletionResult, error) {
	if in.ExternalUserID == "" || in.LessonID == "" {
		return nil, fmt.Errorf("%w: user id and lesson id are required", ErrInvalidInput)
	}
	if in.AmazingnessRating == 0 {
		in.AmazingnessRating = 5
	}
	if in.AmazingnessRating < 1 || in.AmazingnessRating > 10 {
		return nil, fmt.Errorf("%w: amazingness rating must be 1-10, got %d", ErrInvalidInput, in.AmazingnessRating)
	}
	if in.BaseXP < 0 {
		return nil, fmt.Errorf("%w: base xp must be >= 0", ErrInvalidInput)
	}
	if in.BaseXP == 0 {
		in.BaseXP = 50 // standard lesson value
	}

	score, err := ScoreCompletion(in.Score)
	if err != nil {
		return nil, err
	}

	baseAwarded := PerformanceXP(in.BaseXP, in.Score.PerformanceScore)
	bonus := AmazingnessBonusXP(baseAwarded, score)
	totalXP := baseAwarded + bonus

	var out *LessonCompletionResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		completion := models.LessonCompletion{
			ID:                uuid.NewString(),
			ExternalUserID:    in.ExternalUserID,
			LessonID:          in.LessonID,
			MissionID:         in.MissionID,
			AmazingnessRating: in.AmazingnessRating,
			AmazingnessScore:  score,
			PerformanceScore:  in.Score.PerformanceScore,
			XPEarned:          totalXP,
			CompletionTimeSec: in.CompletionTimeSec,
		}
		if err := tx.Create(&completion).Error; err != nil {
			return err
		}

		counters := map[string]interface{}{
			"total_lessons": gorm.Expr("total_lessons + 1"),
		}
		if in.Score.PerformanceScore == 100 {
			counters["perfect_scores"] = gorm.Expr("perfect_scores + 1")
		}
		result := tx.Model(&models.Profile{}).
			Where("external_user_id = ?", in.ExternalUserID).
			UpdateColumns(counters)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: profile for %s", ErrNotFound, in.ExternalUserID)
		}

		xpRes, err := s.Progression.ApplyXPTx(tx, in.ExternalUserID, totalXP, "lesson_completed")
		if err != nil {
			return err
		}

		meta, _ := json.Marshal(map[string]interface{}{
			"lesson_id":         in.LessonID,
			"amazingness_score": score,
			"tier":              QualityTier(score),
			"bonus_xp":          bonus,
		})
		event := models.Event{
			ExternalUserID: &in.ExternalUserID,
			Type:           "lesson_completed",
			Category:       models.EventCategoryLearning,
			Meta:           datatypes.JSON(meta),
			XPImpact:       totalXP,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		streak, err := s.Streaks.RecordActivityTx(tx, in.ExternalUserID, time.Now())
		if err != nil {
			return err
		}

		out = &LessonCompletionResult{
			Completion:       &completion,
			AmazingnessScore: score,
			QualityTier:      QualityTier(score),
			BaseXPAwarded:    baseAwarded,
			BonusXP:          bonus,
			XP:               xpRes,
			StreakDays:       streak,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_, _ = s.Achievements.UnlockEligible(in.ExternalUserID)
	return out, nil
}
