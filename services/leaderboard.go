package services

import (
	"fmt"

	"learning-progression-system/models"

	"gorm.io/gorm"
)

// LeaderboardWindow selects which XP field the ranking reads.
type LeaderboardWindow string

const (
	WindowDaily  LeaderboardWindow = "daily"
	WindowWeekly LeaderboardWindow = "weekly"
	WindowGlobal LeaderboardWindow = "global"
)

func (w LeaderboardWindow) column() (string, bool) {
	switch w {
	case WindowDaily:
		return "daily_xp", true
	case WindowWeekly:
		return "weekly_xp", true
	case WindowGlobal:
		return "total_xp", true
	}
	return "", false
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank           int                 `json:"rank"`
	ExternalUserID string              `json:"external_user_id"`
	DisplayName    string              `json:"display_name"`
	Path           models.LearningPath `json:"path"`
	XP             int64               `json:"xp"`
	Level          int                 `json:"level"`
	StreakDays     int                 `json:"streak_days"`
	IsCurrentUser  bool                `json:"is_current_user"`
}

// LeaderboardResponse reports the ranked page plus the requester's own position
// and the total population.
type LeaderboardResponse struct {
	Window      LeaderboardWindow  `json:"window"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	CurrentRank int                `json:"current_rank,omitempty"`
	TotalUsers  int64              `json:"total_users"`
}

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// Rank orders users descending by the window's XP field and assigns 1-based
// positional ranks. Ties break deterministically on ascending external user id.
func (s *LeaderboardService) Rank(window LeaderboardWindow, requestingUserID string, limit int) (*LeaderboardResponse, error) {
	col, ok := window.column()
	if !ok {
		return nil, fmt.Errorf("%w: unknown leaderboard window %q", ErrInvalidInput, window)
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	var profiles []models.Profile
	if err := s.DB.Order(col + " DESC, external_user_id ASC").
		Limit(limit).
		Find(&profiles).Error; err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(profiles))
	for i, p := range profiles {
		xp := p.TotalXP
		switch window {
		case WindowDaily:
			xp = p.DailyXP
		case WindowWeekly:
			xp = p.WeeklyXP
		}
		entries[i] = LeaderboardEntry{
			Rank:           i + 1,
			ExternalUserID: p.ExternalUserID,
			DisplayName:    p.DisplayName,
			Path:           p.Path,
			XP:             xp,
			Level:          p.Level,
			StreakDays:     p.StreakDays,
			IsCurrentUser:  p.ExternalUserID == requestingUserID,
		}
	}

	var total int64
	if err := s.DB.Model(&models.Profile{}).Count(&total).Error; err != nil {
		return nil, err
	}

	resp := &LeaderboardResponse{Window: window, Leaderboard: entries, TotalUsers: total}

	if requestingUserID != "" {
		var me models.Profile
		err := s.DB.Where("external_user_id = ?", requestingUserID).First(&me).Error
		if err == nil {
			myXP := me.TotalXP
			switch window {
			case WindowDaily:
				myXP = me.DailyXP
			case WindowWeekly:
				myXP = me.WeeklyXP
			}
			var ahead int64
			if err := s.DB.Model(&models.Profile{}).
				Where(col+" > ? OR ("+col+" = ? AND external_user_id < ?)", myXP, myXP, requestingUserID).
				Count(&ahead).Error; err != nil {
				return nil, err
			}
			resp.CurrentRank = int(ahead) + 1
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	return resp, nil
}
