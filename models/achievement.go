package models

import (
	"time"

	"gorm.io/datatypes"
)

// AchievementType: static config (seeded from AchievementTriggers at startup)
type AchievementType struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	Code        string `gorm:"uniqueIndex;not null"` // e.g. "STREAK_7", "PERFECTIONIST"
	Name        string `gorm:"not null"`
	Description string
	IconURL     string           `gorm:"type:text"`                         // R2/CDN URL, set via admin upload
	Rarity      string           `gorm:"type:varchar(16);default:'common'"` // common, rare, epic, legendary
	Threshold   map[string]int64 `gorm:"serializer:json;type:jsonb"`        // e.g. {"streak_days": 7}
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
}

// UserAchievement: awarded instance (many-to-many). One row per user per code.
type UserAchievement struct {
	ID              string         `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID  string         `gorm:"not null;uniqueIndex:idx_user_achievement" json:"external_user_id"`
	AchievementCode string         `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_code"`
	AwardedAt       time.Time      `json:"awarded_at" gorm:"autoCreateTime"`
	Meta            datatypes.JSON `json:"meta,omitempty"`
}

// AchievementTriggers define when each achievement unlocks. All keys in a
// threshold must be met.
var AchievementTriggers = []AchievementType{
	{
		Code:        "WELCOME",
		Name:        "Welcome Aboard!",
		Description: "Joined the platform",
		Rarity:      "common",
		Threshold:   map[string]int64{"event": 1}, // awarded on first evaluation
	},
	{
		Code:        "FIRST_MISSION",
		Name:        "Mission One",
		Description: "Completed your first mission",
		Rarity:      "common",
		Threshold:   map[string]int64{"total_missions": 1},
	},
	{
		Code:        "STREAK_7",
		Name:        "One Week Strong",
		Description: "Kept a 7-day activity streak",
		Rarity:      "rare",
		Threshold:   map[string]int64{"streak_days": 7},
	},
	{
		Code:        "STREAK_30",
		Name:        "Unstoppable",
		Description: "Kept a 30-day activity streak",
		Rarity:      "epic",
		Threshold:   map[string]int64{"streak_days": 30},
	},
	{
		Code:        "PERFECTIONIST",
		Name:        "Perfectionist",
		Description: "Scored a perfect 100 on a lesson",
		Rarity:      "rare",
		Threshold:   map[string]int64{"perfect_scores": 1},
	},
	{
		Code:        "LEVEL_10",
		Name:        "Double Digits",
		Description: "Reached level 10",
		Rarity:      "rare",
		Threshold:   map[string]int64{"level": 10},
	},
	{
		Code:        "MISSION_25",
		Name:        "Mission Veteran",
		Description: "Completed 25 missions",
		Rarity:      "epic",
		Threshold:   map[string]int64{"total_missions": 25},
	},
	{
		Code:        "RECRUITER",
		Name:        "Recruiter",
		Description: "Referred 5 friends who completed their first lesson",
		Rarity:      "rare",
		Threshold:   map[string]int64{"total_referrals": 5},
	},
}
