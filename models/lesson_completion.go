package models

import "time"

// LessonCompletion is immutable once created. AmazingnessRating is the user's
// 1-10 self rating persisted as-is; AmazingnessScore is the richer 0-150 composite
// computed by the scorer. They are distinct values on distinct scales.
type LessonCompletion struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string  `gorm:"index;not null" json:"external_user_id"`
	LessonID       string  `gorm:"index;not null" json:"lesson_id"`
	MissionID      *string `gorm:"index" json:"mission_id,omitempty"`

	AmazingnessRating int `json:"amazingness_rating" gorm:"default:5"` // 1-10
	AmazingnessScore  int `json:"amazingness_score" gorm:"default:0"`  // 0-150
	PerformanceScore  int `json:"performance_score" gorm:"default:0"`  // 0-100

	XPEarned          int64     `json:"xp_earned" gorm:"default:0"`
	CompletionTimeSec int       `json:"completion_time_sec" gorm:"default:0"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
}
