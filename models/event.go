package models

import (
	"time"

	"gorm.io/datatypes"
)

// EventCategory buckets activity-log entries.
type EventCategory string

const (
	EventCategoryGeneral      EventCategory = "general"
	EventCategoryLearning     EventCategory = "learning"
	EventCategoryGamification EventCategory = "gamification"
	EventCategorySocial       EventCategory = "social"
	EventCategoryAchievement  EventCategory = "achievement"
)

// Event is the generic append-only audit/activity log. Every XP-affecting action
// appends exactly one Event recording the delta and its cause. ExternalUserID is
// nil for system-level events (e.g. period rollovers).
type Event struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalUserID *string        `gorm:"index" json:"external_user_id,omitempty"`
	Type           string         `gorm:"not null" json:"type"`
	Category       EventCategory  `gorm:"type:varchar(16);not null;default:'general'" json:"category"`
	Meta           datatypes.JSON `json:"meta,omitempty"`
	XPImpact       int64          `json:"xp_impact" gorm:"default:0"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
}
