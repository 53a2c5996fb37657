package services

import (
	"testing"

	"learning-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// every connection to a :memory: DSN is its own database; pin the pool to one
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.XPEvent{},
		&models.Event{},
		&models.Mission{},
		&models.LessonCompletion{},
		&models.Referral{},
		&models.AchievementType{},
		&models.UserAchievement{},
		&models.NotificationOutbox{},
		&models.NotificationDLQ{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, externalUserID string) *models.Profile {
	t.Helper()
	prof := &models.Profile{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		DisplayName:    externalUserID,
		Path:           models.PathBuilder,
		Level:          1,
	}
	if err := db.Create(prof).Error; err != nil {
		t.Fatalf("failed to seed profile %s: %v", externalUserID, err)
	}
	return prof
}
