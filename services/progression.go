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

// BaseXPPerLevel: every level costs a flat 100 XP, so level = totalXP/100 + 1.
const BaseXPPerLevel = 100

// LevelForXP maps total accumulated XP to a level.
func LevelForXP(totalXP int64) int {
	if totalXP < 0 {
		return 1
	}
	return int(totalXP/BaseXPPerLevel) + 1
}

// LevelProgress returns XP accumulated within the current level (0..99).
func LevelProgress(totalXP int64) int64 {
	if totalXP < 0 {
		return 0
	}
	return totalXP % BaseXPPerLevel
}

// XPResult is returned from every XP application.
type XPResult struct {
	NewTotalXP int64 `json:"new_total_xp"`
	NewLevel   int   `json:"new_level"`
	LeveledUp  bool  `json:"leveled_up"`
}

type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

// EnsureProfile ensures a Profile row exists (idempotent).
func (s *ProgressionService) EnsureProfile(externalUserID, displayName string, path models.LearningPath) (*models.Profile, error) {
	if externalUserID == "" {
		return nil, fmt.Errorf("%w: external user id is required", ErrInvalidInput)
	}
	if path == "" {
		path = models.PathNone
	}
	if !path.Valid() {
		return nil, fmt.Errorf("%w: unknown path %q", ErrInvalidInput, path)
	}

	var prof models.Profile
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&prof).Error
	if err == gorm.ErrRecordNotFound {
		prof = models.Profile{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			DisplayName:    displayName,
			Path:           path,
			TotalXP:        0,
			Level:          1,
		}
		if err := s.DB.Create(&prof).Error; err != nil {
			// Lost a race against a concurrent first-sight; the unique
			// external_user_id index guarantees exactly one row, so re-read it.
			var existing models.Profile
			if rerr := s.DB.Where("external_user_id = ?", externalUserID).First(&existing).Error; rerr == nil {
				return &existing, nil
			}
			return nil, err
		}
		return &prof, nil
	}
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

// GetProfile fetches a profile or ErrNotFound.
func (s *ProgressionService) GetProfile(externalUserID string) (*models.Profile, error) {
	var prof models.Profile
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&prof).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: profile for %s", ErrNotFound, externalUserID)
		}
		return nil, err
	}
	return &prof, nil
}

// ApplyXP atomically updates total/weekly/daily XP and level, appends the XP
// ledger row and the gamification event, all in one transaction.
func (s *ProgressionService) ApplyXP(externalUserID string, amount int64, source string) (*XPResult, error) {
	var res *XPResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		res, txErr = s.ApplyXPTx(tx, externalUserID, amount, source)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ApplyXPTx is ApplyXP inside a caller-owned transaction, so mission completion,
// lesson recording and referral claims commit their own rows together with the
// XP mutation. Increments are SQL expressions, not read-then-write, so
// concurrent applies for the same user cannot lose updates.
func (s *ProgressionService) ApplyXPTx(tx *gorm.DB, externalUserID string, amount int64, source string) (*XPResult, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: xp source tag is required", ErrInvalidInput)
	}

	result := tx.Model(&models.Profile{}).
		Where("external_user_id = ?", externalUserID).
		UpdateColumns(map[string]interface{}{
			"total_xp":  gorm.Expr("total_xp + ?", amount),
			"weekly_xp": gorm.Expr("weekly_xp + ?", amount),
			"daily_xp":  gorm.Expr("daily_xp + ?", amount),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: profile for %s", ErrNotFound, externalUserID)
	}

	var prof models.Profile
	if err := tx.Where("external_user_id = ?", externalUserID).First(&prof).Error; err != nil {
		return nil, err
	}

	// Negative amounts are corrections, but the ledger can never owe XP.
	if prof.TotalXP < 0 {
		return nil, fmt.Errorf("%w: correction of %d would drive total XP below zero", ErrInvalidInput, amount)
	}

	oldLevel := prof.Level
	newLevel := LevelForXP(prof.TotalXP)
	leveledUp := newLevel > oldLevel
	if newLevel != oldLevel {
		now := time.Now()
		updates := map[string]interface{}{"level": newLevel}
		if leveledUp {
			updates["last_level_up_at"] = &now
		}
		if err := tx.Model(&models.Profile{}).
			Where("external_user_id = ?", externalUserID).
			UpdateColumns(updates).Error; err != nil {
			return nil, err
		}
	}

	ledger := models.XPEvent{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		Amount:         amount,
		Source:         source,
	}
	if err := tx.Create(&ledger).Error; err != nil {
		return nil, err
	}

	meta, _ := json.Marshal(map[string]interface{}{"source": source, "amount": amount})
	event := models.Event{
		ExternalUserID: &externalUserID,
		Type:           "xp_earned",
		Category:       models.EventCategoryGamification,
		Meta:           datatypes.JSON(meta),
		XPImpact:       amount,
	}
	if err := tx.Create(&event).Error; err != nil {
		return nil, err
	}

	if leveledUp {
		if err := AddNotification(tx, externalUserID, "level_up",
			fmt.Sprintf("🎉 Level up! You reached level %d", newLevel),
			map[string]interface{}{"level": newLevel, "total_xp": prof.TotalXP}); err != nil {
			return nil, err
		}
	}

	metrics.XPAwardsTotal.Inc()
	fmt.Printf("🎮 XP applied: %s → XP=%d, Lvl=%d (source: %s)\n",
		externalUserID, prof.TotalXP, newLevel, source)

	return &XPResult{NewTotalXP: prof.TotalXP, NewLevel: newLevel, LeveledUp: leveledUp}, nil
}

// RecentEvents returns the user's latest activity-log entries, newest first.
func (s *ProgressionService) RecentEvents(externalUserID string, limit int) ([]models.Event, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var events []models.Event
	err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
