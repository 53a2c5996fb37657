package services

import (
	"encoding/json"
	"fmt"
	"time"

	"learning-progression-system/metrics"
	"learning-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MissionService struct {
	DB           *gorm.DB
	Progression  *ProgressionService
	Achievements *AchievementService
}

func NewMissionService(db *gorm.DB, prog *ProgressionService, ach *AchievementService) *MissionService {
	return &MissionService{DB: db, Progression: prog, Achievements: ach}
}

// SelectFromTemplates picks one template for the given day and path. The seed is
// the sum of the character codes of the YYYY-MM-DD string, so every user on a
// path sees the identical mission for a day without any central scheduler, and
// the selection is reproducible without persistence.
func SelectFromTemplates(templates []models.MissionTemplate, date time.Time, path models.LearningPath) (models.MissionTemplate, error) {
	var eligible []models.MissionTemplate
	for _, t := range templates {
		if t.EligibleFor(path) {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		return models.MissionTemplate{}, fmt.Errorf("%w: path %q, %d templates configured", ErrNoEligibleTemplate, path, len(templates))
	}

	seed := 0
	for _, c := range date.UTC().Format(dateLayout) {
		seed += int(c)
	}
	return eligible[seed%len(eligible)], nil
}

// SelectDailyMission picks from the startup template pool.
func (s *MissionService) SelectDailyMission(date time.Time, path models.LearningPath) (models.MissionTemplate, error) {
	return SelectFromTemplates(models.DailyMissionTemplates, date, path)
}

// EnsureDailyMission materializes the day's selected template into a Mission row
// owned by the user, so completion state survives. Idempotent per (user, day).
func (s *MissionService) EnsureDailyMission(externalUserID string, date time.Time, path models.LearningPath) (*models.Mission, error) {
	tpl, err := s.SelectDailyMission(date, path)
	if err != nil {
		return nil, err
	}

	day := time.Date(date.UTC().Year(), date.UTC().Month(), date.UTC().Day(), 0, 0, 0, 0, time.UTC)

	var mission models.Mission
	err = s.DB.Where("external_user_id = ? AND mission_date = ?", externalUserID, day).First(&mission).Error
	if err == nil {
		return &mission, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	code := tpl.Code
	mission = models.Mission{
		ID:              uuid.NewString(),
		ExternalUserID:  externalUserID,
		TemplateCode:    &code,
		Title:           tpl.Title,
		Description:     tpl.Description,
		DifficultyLevel: tpl.DifficultyLevel,
		XPReward:        tpl.XPReward,
		Status:          models.MissionStatusOpen,
		MissionDate:     &day,
	}
	if err := s.DB.Create(&mission).Error; err != nil {
		// Lost a race against a concurrent ensure; the unique (user, date) index
		// guarantees exactly one row, so re-read it.
		var existing models.Mission
		if rerr := s.DB.Where("external_user_id = ? AND mission_date = ?", externalUserID, day).First(&existing).Error; rerr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &mission, nil
}

// CompletionResult is returned from a successful mission completion.
type CompletionResult struct {
	Mission  *models.Mission `json:"mission"`
	XPEarned int64           `json:"xp_earned"`
	XP       *XPResult       `json:"xp"`
}

// CompleteMission transitions open → done exactly once. The transition is a
// conditional UPDATE on status, so two concurrent completes cannot both succeed:
// the loser sees zero rows affected and gets ErrAlreadyCompleted. done is
// terminal; there is no way back.
func (s *MissionService) CompleteMission(missionID string, amazingnessRating int) (*CompletionResult, error) {
	if amazingnessRating == 0 {
		amazingnessRating = 5
	}
	if amazingnessRating < 1 || amazingnessRating > 5 {
		return nil, fmt.Errorf("%w: amazingness rating must be 1-5, got %d", ErrInvalidInput, amazingnessRating)
	}

	var out *CompletionResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var mission models.Mission
		if err := tx.Where("id = ?", missionID).First(&mission).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: mission %s", ErrNotFound, missionID)
			}
			return err
		}
		switch mission.Status {
		case models.MissionStatusDone:
			return fmt.Errorf("%w: mission %s", ErrAlreadyCompleted, missionID)
		case models.MissionStatusLocked:
			return fmt.Errorf("%w: mission %s is locked", ErrInvalidInput, missionID)
		}

		xpEarned := mission.XPReward * int64(amazingnessRating) / 5
		if xpEarned < 1 {
			xpEarned = 1
		}
		now := time.Now()

		result := tx.Model(&models.Mission{}).
			Where("id = ? AND status = ?", missionID, models.MissionStatusOpen).
			Updates(map[string]interface{}{
				"status":             models.MissionStatusDone,
				"completed_at":       &now,
				"amazingness_rating": amazingnessRating,
				"xp_earned":          xpEarned,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Someone else won the transition between our read and this update.
			return fmt.Errorf("%w: mission %s", ErrAlreadyCompleted, missionID)
		}

		if err := tx.Model(&models.Profile{}).
			Where("external_user_id = ?", mission.ExternalUserID).
			UpdateColumn("total_missions", gorm.Expr("total_missions + 1")).Error; err != nil {
			return err
		}

		xpRes, err := s.Progression.ApplyXPTx(tx, mission.ExternalUserID, xpEarned, "mission_completed")
		if err != nil {
			return err
		}

		meta, _ := json.Marshal(map[string]interface{}{
			"mission_id": mission.ID,
			"title":      mission.Title,
			"rating":     amazingnessRating,
		})
		event := models.Event{
			ExternalUserID: &mission.ExternalUserID,
			Type:           "mission_completed",
			Category:       models.EventCategoryLearning,
			Meta:           datatypes.JSON(meta),
			XPImpact:       xpEarned,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		if err := AddNotification(tx, mission.ExternalUserID, "mission_completed",
			fmt.Sprintf("✅ Mission complete: %s (+%d XP)", mission.Title, xpEarned),
			map[string]interface{}{"mission_id": mission.ID, "xp_earned": xpEarned}); err != nil {
			return err
		}

		mission.Status = models.MissionStatusDone
		mission.CompletedAt = &now
		mission.AmazingnessRating = amazingnessRating
		mission.XPEarned = xpEarned
		out = &CompletionResult{Mission: &mission, XPEarned: xpEarned, XP: xpRes}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MissionsCompletedTotal.Inc()
	_, _ = s.Achievements.UnlockEligible(out.Mission.ExternalUserID)
	return out, nil
}

// OpenMissions lists the user's open missions, newest first.
func (s *MissionService) OpenMissions(externalUserID string) ([]models.Mission, error) {
	var missions []models.Mission
	err := s.DB.Where("external_user_id = ? AND status = ?", externalUserID, models.MissionStatusOpen).
		Order("created_at DESC").
		Find(&missions).Error
	return missions, err
}
