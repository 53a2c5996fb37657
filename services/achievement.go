package services

import (
	"fmt"

	"learning-progression-system/metrics"
	"learning-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AchievementService struct {
	DB *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{DB: db}
}

// SeedAchievementTypes upserts the static trigger catalog so icon URLs and
// descriptions live in the DB alongside awarded instances.
func (s *AchievementService) SeedAchievementTypes() error {
	for _, trigger := range models.AchievementTriggers {
		var existing models.AchievementType
		err := s.DB.Where("code = ?", trigger.Code).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			trigger.ID = uuid.NewString()
			if err := s.DB.Create(&trigger).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// UnlockEligible checks every trigger for a user after a progress update and
// awards anything newly earned. Idempotent: the unique (user, code) index plus
// the existence check mean each achievement unlocks at most once.
func (s *AchievementService) UnlockEligible(externalUserID string) ([]string, error) {
	var prof models.Profile
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&prof).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: profile for %s", ErrNotFound, externalUserID)
		}
		return nil, err
	}

	var awarded []string
	for _, trigger := range models.AchievementTriggers {
		if !meetsThreshold(&prof, trigger.Threshold) {
			continue
		}
		var count int64
		s.DB.Model(&models.UserAchievement{}).
			Where("external_user_id = ? AND achievement_code = ?", externalUserID, trigger.Code).
			Count(&count)
		if count > 0 {
			continue
		}

		err := s.DB.Transaction(func(tx *gorm.DB) error {
			ua := models.UserAchievement{
				ID:              uuid.NewString(),
				ExternalUserID:  externalUserID,
				AchievementCode: trigger.Code,
			}
			if err := tx.Create(&ua).Error; err != nil {
				return err
			}
			event := models.Event{
				ExternalUserID: &externalUserID,
				Type:           "achievement_unlocked",
				Category:       models.EventCategoryAchievement,
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}
			return AddNotification(tx, externalUserID, "achievement_unlocked",
				fmt.Sprintf("🎖️ Achievement unlocked: %s", trigger.Name),
				map[string]interface{}{"code": trigger.Code, "rarity": trigger.Rarity})
		})
		if err != nil {
			return awarded, err
		}

		awarded = append(awarded, trigger.Code)
		metrics.AchievementsUnlockedTotal.Inc()
		fmt.Printf("🎖️ Achievement awarded: %s → %s\n", trigger.Name, externalUserID)
	}
	return awarded, nil
}

func meetsThreshold(prof *models.Profile, req map[string]int64) bool {
	for key, required := range req {
		switch key {
		case "streak_days":
			if int64(prof.StreakDays) < required {
				return false
			}
		case "level":
			if int64(prof.Level) < required {
				return false
			}
		case "total_missions":
			if prof.TotalMissions < required {
				return false
			}
		case "total_lessons":
			if prof.TotalLessons < required {
				return false
			}
		case "total_referrals":
			if prof.TotalReferrals < required {
				return false
			}
		case "perfect_scores":
			if prof.PerfectScores < required {
				return false
			}
		case "event": // special: always true (e.g. signup)
			return true
		}
	}
	return true
}

// ListAchievements returns the user's awarded achievements joined with the
// static catalog.
func (s *AchievementService) ListAchievements(externalUserID string) ([]map[string]interface{}, error) {
	var awards []models.UserAchievement
	if err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("awarded_at DESC").
		Find(&awards).Error; err != nil {
		return nil, err
	}

	byCode := make(map[string]models.AchievementType, len(models.AchievementTriggers))
	var types []models.AchievementType
	if err := s.DB.Find(&types).Error; err != nil {
		return nil, err
	}
	for _, t := range types {
		byCode[t.Code] = t
	}

	out := make([]map[string]interface{}, 0, len(awards))
	for _, a := range awards {
		t := byCode[a.AchievementCode]
		out = append(out, map[string]interface{}{
			"id":          a.ID,
			"code":        a.AchievementCode,
			"name":        t.Name,
			"description": t.Description,
			"icon_url":    t.IconURL,
			"rarity":      t.Rarity,
			"awarded_at":  a.AwardedAt,
		})
	}
	return out, nil
}

// SetIconURL points an achievement type at its uploaded icon.
func (s *AchievementService) SetIconURL(code, iconURL string) error {
	result := s.DB.Model(&models.AchievementType{}).
		Where("code = ?", code).
		Update("icon_url", iconURL)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: achievement type %s", ErrNotFound, code)
	}
	return nil
}
