package models

import "time"

// XPEvent is one immutable row of the XP ledger. The sum of all rows for a user
// equals that user's Profile.TotalXP; the ledger is the source of truth.
type XPEvent struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"index;not null" json:"external_user_id"`
	Amount         int64     `json:"amount"`                 // negative only for explicit corrections
	Source         string    `gorm:"not null" json:"source"` // e.g. mission_completed, lesson_completed, referral_reward
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}
