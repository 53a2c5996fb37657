package services

import (
	"log"
	"time"

	"learning-progression-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartRolloverScheduler resets daily XP at midnight UTC and weekly XP on
// Monday midnight UTC. The period counters are caches for leaderboard windows;
// the XP ledger is untouched.
func (s *ProgressionService) StartRolloverScheduler() {
	sched, _ := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	sched.Start()

	_, _ = sched.NewJob(
		gocron.CronJob("0 0 * * *", false),
		gocron.NewTask(func() {
			s.rollover("daily_xp", "daily_xp_reset")
		}),
	)

	_, _ = sched.NewJob(
		gocron.CronJob("0 0 * * 1", false),
		gocron.NewTask(func() {
			s.rollover("weekly_xp", "weekly_xp_reset")
		}),
	)
}

func (s *ProgressionService) rollover(column, eventType string) {
	result := s.DB.Model(&models.Profile{}).
		Where(column+" <> 0").
		Update(column, 0)
	if result.Error != nil {
		log.Printf("[Rollover] DB error resetting %s: %v", column, result.Error)
		return
	}

	event := models.Event{
		Type:     eventType,
		Category: models.EventCategoryGeneral,
	}
	if err := s.DB.Create(&event).Error; err != nil {
		log.Printf("[Rollover] Failed to record %s event: %v", eventType, err)
	}
	log.Printf("✅ Period rollover: %s zeroed for %d profiles", column, result.RowsAffected)
}
