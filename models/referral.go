package models

import "time"

// ReferralStatus is a closed set; cancelled and the claimed reward are terminal.
type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"
	ReferralStatusCompleted ReferralStatus = "completed"
	ReferralStatusCancelled ReferralStatus = "cancelled"
)

// Referral tracks one referral code through pending → completed → reward claimed.
// RefereeID stays nil while pending; RewardEarned can only flip true after the
// referral is completed.
type Referral struct {
	ID         string         `gorm:"primaryKey;type:uuid" json:"id"`
	RefCode    string         `gorm:"uniqueIndex;not null" json:"ref_code"`
	ReferrerID string         `gorm:"index;not null" json:"referrer_id"` // ExternalUserID
	RefereeID  *string        `gorm:"index" json:"referee_id,omitempty"` // set when completed
	Status     ReferralStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`

	RewardEarned bool       `json:"reward_earned" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	AwardedAt    *time.Time `json:"awarded_at,omitempty"`

	Timestamps
}
