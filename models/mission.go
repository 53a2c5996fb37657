package models

import "time"

// MissionStatus is a closed set; transitions happen only through the mission
// service's guarded update, never by writing the column directly.
type MissionStatus string

const (
	MissionStatusOpen   MissionStatus = "open"
	MissionStatusDone   MissionStatus = "done" // terminal
	MissionStatusLocked MissionStatus = "locked"
)

// Mission is a discrete task with a fixed XP reward owned by one user.
// CompletedAt is set iff status is done; done is terminal.
type Mission struct {
	ID              string        `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID  string        `gorm:"index;not null;uniqueIndex:idx_user_mission_date" json:"external_user_id"`
	TemplateCode    *string       `gorm:"index" json:"template_code,omitempty"` // set for daily missions
	Title           string        `gorm:"not null" json:"title"`
	Description     string        `gorm:"type:text" json:"description"`
	DifficultyLevel int           `json:"difficulty_level" gorm:"default:1"` // 1-10
	XPReward        int64         `json:"xp_reward" gorm:"default:0"`
	Status          MissionStatus `gorm:"type:varchar(16);not null;default:'open'" json:"status"`

	// MissionDate is the calendar day a daily mission was assigned for; one daily
	// mission per user per day.
	MissionDate *time.Time `gorm:"uniqueIndex:idx_user_mission_date" json:"mission_date,omitempty"`

	AmazingnessRating int        `json:"amazingness_rating,omitempty" gorm:"default:0"` // 1-5, set on completion
	XPEarned          int64      `json:"xp_earned" gorm:"default:0"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`

	Timestamps
}

// MissionTemplate is static config for the daily mission pool, defined at startup
// and immutable. An empty PathSpecific means the template is open to every path.
type MissionTemplate struct {
	Code            string
	Title           string
	Description     string
	DifficultyLevel int
	XPReward        int64
	PathSpecific    []LearningPath
}

// EligibleFor reports whether the template applies to the given path.
func (t MissionTemplate) EligibleFor(path LearningPath) bool {
	if len(t.PathSpecific) == 0 {
		return true
	}
	for _, p := range t.PathSpecific {
		if p == path {
			return true
		}
	}
	return false
}

// DailyMissionTemplates is the pool the daily selector draws from.
var DailyMissionTemplates = []MissionTemplate{
	{
		Code:            "SHIP_SOMETHING",
		Title:           "Ship Something Small",
		Description:     "Build and publish one tiny AI-powered tool today.",
		DifficultyLevel: 4,
		XPReward:        60,
		PathSpecific:    []LearningPath{PathBuilder},
	},
	{
		Code:            "AUTOMATE_A_CHORE",
		Title:           "Automate a Chore",
		Description:     "Pick one repetitive task from your week and automate it end to end.",
		DifficultyLevel: 4,
		XPReward:        60,
		PathSpecific:    []LearningPath{PathAutomator},
	},
	{
		Code:            "PITCH_PRACTICE",
		Title:           "Pitch Practice",
		Description:     "Record a 60-second pitch for an AI service and critique it.",
		DifficultyLevel: 3,
		XPReward:        50,
		PathSpecific:    []LearningPath{PathDealMaker},
	},
	{
		Code:            "PROMPT_REMIX",
		Title:           "Prompt Remix",
		Description:     "Take yesterday's best prompt and rewrite it three different ways.",
		DifficultyLevel: 2,
		XPReward:        40,
	},
	{
		Code:            "TEACH_BACK",
		Title:           "Teach It Back",
		Description:     "Explain today's lesson to someone else in under five minutes.",
		DifficultyLevel: 3,
		XPReward:        45,
	},
	{
		Code:            "DEEP_DIVE",
		Title:           "Deep Dive",
		Description:     "Spend 25 focused minutes going one level deeper on a concept you only half understand.",
		DifficultyLevel: 5,
		XPReward:        70,
	},
	{
		Code:            "SHARE_A_WIN",
		Title:           "Share a Win",
		Description:     "Post one concrete result from this week to the community board.",
		DifficultyLevel: 1,
		XPReward:        25,
	},
	{
		Code:            "WORKFLOW_AUDIT",
		Title:           "Workflow Audit",
		Description:     "List your top three time sinks and sketch how AI could remove one.",
		DifficultyLevel: 2,
		XPReward:        35,
		PathSpecific:    []LearningPath{PathAutomator, PathBuilder},
	},
}
