package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationOutbox rows are appended inside the same transaction as the state
// change they announce; the notify worker delivers them afterwards. Notification
// failure therefore never fails the triggering operation.
type NotificationOutbox struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalUserID *string        `gorm:"index" json:"external_user_id,omitempty"`
	Kind           string         `gorm:"index;not null" json:"kind"` // level_up | mission_completed | achievement_unlocked | referral_reward
	Message        string         `gorm:"type:text;not null" json:"message"`
	Payload        datatypes.JSON `json:"payload,omitempty"`
	Processed      bool           `gorm:"default:false;index" json:"processed"`
	Attempts       int            `gorm:"default:0" json:"attempts"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
	ProcessedAt    *time.Time     `json:"processed_at,omitempty"`
}

// NotificationDLQ holds outbox rows that exhausted their delivery attempts.
type NotificationDLQ struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	OutboxID  int64 `gorm:"index"`
	Kind      string
	Message   string    `gorm:"type:text"`
	ErrorMsg  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	RetriedAt *time.Time
	Resolved  bool `gorm:"default:false"`
}
