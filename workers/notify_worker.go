package workers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"learning-progression-system/metrics"
	"learning-progression-system/models"

	"gorm.io/gorm"
)

const maxDeliveryAttempts = 5

// NotifyWorker drains the notification outbox and delivers messages to the
// Telegram sink. Delivery is fire-and-forget from the core's point of view:
// failures are logged, retried, and eventually parked in the DLQ; they never
// touch the operation that queued them.
type NotifyWorker struct {
	DB         *gorm.DB
	BotToken   string
	ChatID     string
	HTTPClient *http.Client
}

func NewNotifyWorker(db *gorm.DB, httpClient *http.Client) *NotifyWorker {
	return &NotifyWorker{
		DB:         db,
		BotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChatID:     os.Getenv("TELEGRAM_CHAT_ID"),
		HTTPClient: httpClient,
	}
}

// Run polls for unprocessed outbox rows and delivers them.
func (w *NotifyWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *NotifyWorker) drain(ctx context.Context) {
	var rows []models.NotificationOutbox
	if err := w.DB.Where("processed = false").Order("id ASC").Limit(50).Find(&rows).Error; err != nil {
		log.Printf("Outbox fetch error: %v", err)
		return
	}

	for _, row := range rows {
		if err := w.send(ctx, row.Message); err != nil {
			metrics.NotificationsFailedTotal.Inc()
			attempts := row.Attempts + 1
			log.Printf("⚠️ Notify failed (attempt %d/%d) outbox id=%d: %v", attempts, maxDeliveryAttempts, row.ID, err)

			updates := map[string]any{"attempts": attempts}
			if attempts >= maxDeliveryAttempts {
				w.parkInDLQ(row, err.Error())
				now := time.Now()
				updates["processed"] = true
				updates["processed_at"] = &now
			}
			w.DB.Model(&models.NotificationOutbox{}).Where("id = ?", row.ID).Updates(updates)
			continue
		}

		now := time.Now()
		w.DB.Model(&models.NotificationOutbox{}).Where("id = ?", row.ID).Updates(map[string]any{
			"processed":    true,
			"processed_at": &now,
		})
		metrics.NotificationsSentTotal.Inc()
	}
}

func (w *NotifyWorker) parkInDLQ(row models.NotificationOutbox, errMsg string) {
	dlq := models.NotificationDLQ{
		OutboxID: row.ID,
		Kind:     row.Kind,
		Message:  row.Message,
		ErrorMsg: errMsg,
	}
	if err := w.DB.Create(&dlq).Error; err != nil {
		log.Printf("❌ Failed to park outbox id=%d in DLQ: %v", row.ID, err)
		return
	}
	metrics.NotificationsDLQTotal.Inc()
	log.Printf("📦 Outbox id=%d moved to DLQ after %d attempts", row.ID, maxDeliveryAttempts)
}

// RetryDLQ periodically re-attempts parked notifications.
func (w *NotifyWorker) RetryDLQ(ctx context.Context) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.retryParked(ctx)
		}
	}
}

func (w *NotifyWorker) retryParked(ctx context.Context) {
	var dlqs []models.NotificationDLQ
	if err := w.DB.Where("resolved = false").Limit(50).Find(&dlqs).Error; err != nil {
		log.Printf("DLQ fetch error: %v", err)
		return
	}
	for _, d := range dlqs {
		log.Printf("♻️ Retrying DLQ id=%d kind=%s", d.ID, d.Kind)
		if err := w.send(ctx, d.Message); err != nil {
			continue
		}
		now := time.Now()
		w.DB.Model(&models.NotificationDLQ{}).Where("id = ?", d.ID).Updates(map[string]any{
			"resolved":   true,
			"retried_at": &now,
		})
		metrics.NotificationsSentTotal.Inc()
		log.Printf("✅ DLQ id=%d resolved", d.ID)
	}
}

// send posts one message to the Telegram sendMessage endpoint. Without a bot
// token configured the message is logged and counted as delivered, which keeps
// dev environments quiet.
func (w *NotifyWorker) send(ctx context.Context, message string) error {
	if w.BotToken == "" || w.ChatID == "" {
		log.Printf("🔔 [notify] %s", message)
		return nil
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", w.BotToken)
	form := url.Values{}
	form.Set("chat_id", w.ChatID)
	form.Set("text", message)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}
