package services

import (
	"fmt"
	"time"

	"learning-progression-system/models"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type StreakService struct {
	DB *gorm.DB
}

func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{DB: db}
}

// NextStreak derives the new streak from the last recorded activity date.
// Comparison is on calendar-day strings so time-of-day never matters.
// Returns the new streak and whether the profile needs updating; a duplicate
// same-day call and a backdated call both leave the streak untouched.
func NextStreak(current int, last *time.Time, activity time.Time) (int, bool) {
	day := activity.UTC().Format(dateLayout)
	if last == nil {
		return 1, true
	}
	lastDay := last.UTC().Format(dateLayout)
	if day == lastDay || day < lastDay {
		return current, false
	}
	yesterday := activity.UTC().AddDate(0, 0, -1).Format(dateLayout)
	if lastDay == yesterday && current > 0 {
		return current + 1, true
	}
	return 1, true
}

// RecordActivity updates the consecutive-day streak for one activity date and
// returns the resulting streak length.
func (s *StreakService) RecordActivity(externalUserID string, activityDate time.Time) (int, error) {
	var newStreak int
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		newStreak, txErr = s.RecordActivityTx(tx, externalUserID, activityDate)
		return txErr
	})
	if err != nil {
		return 0, err
	}
	return newStreak, nil
}

// RecordActivityTx is RecordActivity inside a caller-owned transaction, so
// lesson recording commits its completion row and the streak update together.
func (s *StreakService) RecordActivityTx(tx *gorm.DB, externalUserID string, activityDate time.Time) (int, error) {
	if activityDate.IsZero() {
		return 0, fmt.Errorf("%w: activity date is required", ErrInvalidInput)
	}

	var prof models.Profile
	if err := tx.Where("external_user_id = ?", externalUserID).First(&prof).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, fmt.Errorf("%w: profile for %s", ErrNotFound, externalUserID)
		}
		return 0, err
	}

	streak, changed := NextStreak(prof.StreakDays, prof.LastActivityDate, activityDate)
	if !changed {
		return streak, nil
	}

	day := time.Date(
		activityDate.UTC().Year(), activityDate.UTC().Month(), activityDate.UTC().Day(),
		0, 0, 0, 0, time.UTC,
	)
	if err := tx.Model(&models.Profile{}).
		Where("external_user_id = ?", externalUserID).
		UpdateColumns(map[string]interface{}{
			"streak_days":        streak,
			"last_activity_date": &day,
		}).Error; err != nil {
		return 0, err
	}
	return streak, nil
}
