package workers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"learning-progression-system/models"
	"learning-progression-system/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func newFailingClient() *http.Client {
	return &http.Client{Transport: failingTransport{}}
}

func newWorkerDB(t *testing.T) *gorm.DB {
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
	if err := db.AutoMigrate(&models.NotificationOutbox{}, &models.NotificationDLQ{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func TestDrain_LogOnlyDelivery(t *testing.T) {
	db := newWorkerDB(t)
	// no bot token configured: delivery is log-only and always succeeds
	w := &NotifyWorker{DB: db, HTTPClient: utils.HTTPClient}

	userID := "user-1"
	rows := []models.NotificationOutbox{
		{ExternalUserID: &userID, Kind: "level_up", Message: "🎉 Level up!"},
		{ExternalUserID: &userID, Kind: "mission_completed", Message: "✅ Mission complete"},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed outbox: %v", err)
		}
	}

	w.drain(context.Background())

	var unprocessed int64
	db.Model(&models.NotificationOutbox{}).Where("processed = false").Count(&unprocessed)
	if unprocessed != 0 {
		t.Fatalf("expected all rows processed, %d remain", unprocessed)
	}
	var row models.NotificationOutbox
	if err := db.First(&row, rows[0].ID).Error; err != nil {
		t.Fatalf("reload row: %v", err)
	}
	if row.ProcessedAt == nil {
		t.Fatalf("processed_at not set")
	}
}

func TestDrain_ParksInDLQAfterMaxAttempts(t *testing.T) {
	db := newWorkerDB(t)
	// a token without a reachable endpoint forces delivery failures
	w := &NotifyWorker{
		DB:         db,
		BotToken:   "test-token",
		ChatID:     "test-chat",
		HTTPClient: newFailingClient(),
	}

	userID := "user-1"
	row := models.NotificationOutbox{ExternalUserID: &userID, Kind: "level_up", Message: "🎉"}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed outbox: %v", err)
	}

	for i := 0; i < maxDeliveryAttempts; i++ {
		w.drain(context.Background())
	}

	var reloaded models.NotificationOutbox
	if err := db.First(&reloaded, row.ID).Error; err != nil {
		t.Fatalf("reload row: %v", err)
	}
	if reloaded.Attempts != maxDeliveryAttempts {
		t.Fatalf("expected %d attempts, got %d", maxDeliveryAttempts, reloaded.Attempts)
	}
	if !reloaded.Processed {
		t.Fatalf("exhausted row should be marked processed")
	}

	var dlqCount int64
	db.Model(&models.NotificationDLQ{}).Where("outbox_id = ?", row.ID).Count(&dlqCount)
	if dlqCount != 1 {
		t.Fatalf("expected 1 DLQ row, got %d", dlqCount)
	}

	// parked rows are not picked up again
	w.drain(context.Background())
	db.First(&reloaded, row.ID)
	if reloaded.Attempts != maxDeliveryAttempts {
		t.Fatalf("processed row was retried: attempts=%d", reloaded.Attempts)
	}
}

func TestRetryParked_ResolvesOnSuccess(t *testing.T) {
	db := newWorkerDB(t)
	// log-only delivery: retries always succeed
	w := &NotifyWorker{DB: db, HTTPClient: utils.HTTPClient}

	dlq := models.NotificationDLQ{OutboxID: 7, Kind: "level_up", Message: "🎉", ErrorMsg: "connection refused"}
	if err := db.Create(&dlq).Error; err != nil {
		t.Fatalf("seed dlq: %v", err)
	}

	w.retryParked(context.Background())

	var reloaded models.NotificationDLQ
	if err := db.First(&reloaded, dlq.ID).Error; err != nil {
		t.Fatalf("reload dlq: %v", err)
	}
	if !reloaded.Resolved {
		t.Fatalf("dlq row not resolved after successful retry")
	}
	if reloaded.RetriedAt == nil {
		t.Fatalf("retried_at not set")
	}

	// resolved rows are not retried again
	w.retryParked(context.Background())
	var unresolved int64
	db.Model(&models.NotificationDLQ{}).Where("resolved = false").Count(&unresolved)
	if unresolved != 0 {
		t.Fatalf("expected no unresolved rows, got %d", unresolved)
	}
}

func TestRetryParked_StaysParkedOnFailure(t *testing.T) {
	db := newWorkerDB(t)
	w := &NotifyWorker{
		DB:         db,
		BotToken:   "test-token",
		ChatID:     "test-chat",
		HTTPClient: newFailingClient(),
	}

	dlq := models.NotificationDLQ{OutboxID: 8, Kind: "level_up", Message: "🎉", ErrorMsg: "connection refused"}
	if err := db.Create(&dlq).Error; err != nil {
		t.Fatalf("seed dlq: %v", err)
	}

	w.retryParked(context.Background())

	var reloaded models.NotificationDLQ
	if err := db.First(&reloaded, dlq.ID).Error; err != nil {
		t.Fatalf("reload dlq: %v", err)
	}
	if reloaded.Resolved || reloaded.RetriedAt != nil {
		t.Fatalf("failed retry must leave the row parked")
	}
}
