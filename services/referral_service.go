package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"learning-progression-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReferralRewardXP is paid to the referrer when the claim succeeds.
const ReferralRewardXP = 50

type ReferralService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewReferralService(db *gorm.DB, prog *ProgressionService) *ReferralService {
	return &ReferralService{DB: db, Progression: prog}
}

// GenerateRefCode builds a readable unique code from the display name, e.g.
// "jane-doe-1a2b3c4d".
func GenerateRefCode(displayName string) string {
	base := slug.Make(displayName)
	if base == "" {
		base = "friend"
	}
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return base + "-" + suffix
}

// CreateReferral issues a pending referral code for the referrer.
func (s *ReferralService) CreateReferral(referrerID, displayName string) (*models.Referral, error) {
	if referrerID == "" {
		return nil, fmt.Errorf("%w: referrer id is required", ErrInvalidInput)
	}
	if _, err := s.Progression.GetProfile(referrerID); err != nil {
		return nil, err
	}

	ref := models.Referral{
		ID:         uuid.NewString(),
		RefCode:    GenerateRefCode(displayName),
		ReferrerID: referrerID,
		Status:     models.ReferralStatusPending,
	}
	if err := s.DB.Create(&ref).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

// CompleteReferral marks a pending referral completed once the referee finishes
// their qualifying first lesson. Conditional update: only pending rows
// transition, so a second complete (or a complete after cancel) cannot clobber
// the state.
func (s *ReferralService) CompleteReferral(refCode, refereeID string) (*models.Referral, error) {
	if refCode == "" || refereeID == "" {
		return nil, fmt.Errorf("%w: ref code and referee id are required", ErrInvalidInput)
	}

	var ref models.Referral
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.Referral{}).
			Where("ref_code = ? AND status = ?", refCode, models.ReferralStatusPending).
			Updates(map[string]interface{}{
				"referee_id":   refereeID,
				"status":       models.ReferralStatusCompleted,
				"completed_at": &now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := tx.Where("ref_code = ?", refCode).First(&ref).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return fmt.Errorf("%w: referral code %s", ErrNotFound, refCode)
				}
				return err
			}
			return fmt.Errorf("%w: referral %s is %s", ErrAlreadyCompleted, refCode, ref.Status)
		}

		if err := tx.Where("ref_code = ?", refCode).First(&ref).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Profile{}).
			Where("external_user_id = ?", ref.ReferrerID).
			UpdateColumn("total_referrals", gorm.Expr("total_referrals + 1")).Error; err != nil {
			return err
		}

		meta, _ := json.Marshal(map[string]interface{}{"ref_code": refCode, "referee_id": refereeID})
		event := models.Event{
			ExternalUserID: &ref.ReferrerID,
			Type:           "referral_completed",
			Category:       models.EventCategorySocial,
			Meta:           datatypes.JSON(meta),
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// ClaimReward pays the referrer exactly once. Preconditions: status completed
// and reward not yet earned; guarded by a conditional update so a double claim
// pays a single reward.
func (s *ReferralService) ClaimReward(referralID string) (*XPResult, error) {
	var xpRes *XPResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.Referral{}).
			Where("id = ? AND status = ? AND reward_earned = ?", referralID, models.ReferralStatusCompleted, false).
			Updates(map[string]interface{}{
				"reward_earned": true,
				"awarded_at":    &now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var ref models.Referral
			if err := tx.Where("id = ?", referralID).First(&ref).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return fmt.Errorf("%w: referral %s", ErrNotFound, referralID)
				}
				return err
			}
			if ref.RewardEarned {
				return fmt.Errorf("%w: referral %s", ErrAlreadyClaimed, referralID)
			}
			return fmt.Errorf("%w: referral %s is %s", ErrNotClaimable, referralID, ref.Status)
		}

		var ref models.Referral
		if err := tx.Where("id = ?", referralID).First(&ref).Error; err != nil {
			return err
		}

		res, err := s.Progression.ApplyXPTx(tx, ref.ReferrerID, ReferralRewardXP, "referral_reward")
		if err != nil {
			return err
		}
		xpRes = res

		return AddNotification(tx, ref.ReferrerID, "referral_reward",
			fmt.Sprintf("🤝 Referral reward claimed: +%d XP", ReferralRewardXP),
			map[string]interface{}{"referral_id": referralID, "xp": ReferralRewardXP})
	})
	if err != nil {
		return nil, err
	}
	return xpRes, nil
}

// CancelReferral marks a pending referral cancelled (terminal).
func (s *ReferralService) CancelReferral(referralID string) error {
	result := s.DB.Model(&models.Referral{}).
		Where("id = ? AND status = ?", referralID, models.ReferralStatusPending).
		Update("status", models.ReferralStatusCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var ref models.Referral
		if err := s.DB.Where("id = ?", referralID).First(&ref).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: referral %s", ErrNotFound, referralID)
			}
			return err
		}
		return fmt.Errorf("%w: referral %s is %s", ErrInvalidInput, referralID, ref.Status)
	}
	return nil
}

// ListReferrals returns all referrals issued by the user, newest first.
func (s *ReferralService) ListReferrals(referrerID string) ([]models.Referral, error) {
	var refs []models.Referral
	err := s.DB.Where("referrer_id = ?", referrerID).
		Order("created_at DESC").
		Find(&refs).Error
	return refs, err
}
