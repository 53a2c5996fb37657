package services

import (
	"testing"

	"learning-progression-system/models"
)

func TestRollover_DailyReset(t *testing.T) {
	db := newTestDB(t)
	a := seedProfile(t, db, "user-a")
	b := seedProfile(t, db, "user-b")
	db.Model(a).Updates(map[string]interface{}{"total_xp": 500, "weekly_xp": 120, "daily_xp": 40})
	db.Model(b).Updates(map[string]interface{}{"total_xp": 300, "weekly_xp": 60, "daily_xp": 15})

	svc := NewProgressionService(db)
	svc.rollover("daily_xp", "daily_xp_reset")

	var profiles []models.Profile
	if err := db.Order("external_user_id ASC").Find(&profiles).Error; err != nil {
		t.Fatalf("load profiles: %v", err)
	}
	for _, p := range profiles {
		if p.DailyXP != 0 {
			t.Fatalf("%s: daily_xp not zeroed, got %d", p.ExternalUserID, p.DailyXP)
		}
	}
	// only the period counter resets; ledger cache and weekly window untouched
	if profiles[0].TotalXP != 500 || profiles[0].WeeklyXP != 120 {
		t.Fatalf("rollover touched other columns: total=%d weekly=%d", profiles[0].TotalXP, profiles[0].WeeklyXP)
	}

	var events []models.Event
	if err := db.Where("type = ?", "daily_xp_reset").Find(&events).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(events))
	}
	if events[0].Category != models.EventCategoryGeneral || events[0].ExternalUserID != nil {
		t.Fatalf("audit event should be a system-level general event")
	}
}

func TestRollover_WeeklyReset(t *testing.T) {
	db := newTestDB(t)
	a := seedProfile(t, db, "user-a")
	db.Model(a).Updates(map[string]interface{}{"weekly_xp": 90, "daily_xp": 30})

	svc := NewProgressionService(db)
	svc.rollover("weekly_xp", "weekly_xp_reset")

	var prof models.Profile
	if err := db.Where("external_user_id = ?", "user-a").First(&prof).Error; err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if prof.WeeklyXP != 0 {
		t.Fatalf("weekly_xp not zeroed, got %d", prof.WeeklyXP)
	}
	if prof.DailyXP != 30 {
		t.Fatalf("daily_xp should be untouched, got %d", prof.DailyXP)
	}
}
