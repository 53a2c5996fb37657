package models

import (
	"time"

	"gorm.io/gorm"
)

// LearningPath is the user archetype used to filter daily mission templates.
type LearningPath string

const (
	PathBuilder   LearningPath = "builder"
	PathAutomator LearningPath = "automator"
	PathDealMaker LearningPath = "deal_maker"
	PathNone      LearningPath = "none"
)

// Valid reports whether p is one of the known paths.
func (p LearningPath) Valid() bool {
	switch p {
	case PathBuilder, PathAutomator, PathDealMaker, PathNone:
		return true
	}
	return false
}

// Profile tracks gamified progression for each user (denormalized for performance).
// TotalXP is a materialized cache of the xp_events ledger; level must always equal
// floor(total_xp/100)+1 after any XP mutation.
type Profile struct {
	ID             string       `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string       `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to identity service
	DisplayName    string       `json:"display_name"`
	Path           LearningPath `gorm:"type:varchar(16);default:'none'" json:"path"`

	// Core progression
	TotalXP  int64 `json:"total_xp" gorm:"default:0"`
	WeeklyXP int64 `json:"weekly_xp" gorm:"default:0"` // reset by rollover scheduler, Monday 00:00 UTC
	DailyXP  int64 `json:"daily_xp" gorm:"default:0"`  // reset by rollover scheduler, 00:00 UTC
	Level    int   `json:"level" gorm:"default:1"`

	// Streak
	StreakDays       int        `json:"streak_days" gorm:"default:0"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`

	// Activity counters
	TotalMissions  int64 `json:"total_missions" gorm:"default:0"`
	TotalLessons   int64 `json:"total_lessons" gorm:"default:0"`
	TotalReferrals int64 `json:"total_referrals" gorm:"default:0"`
	PerfectScores  int64 `json:"perfect_scores" gorm:"default:0"`

	// Milestones
	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
