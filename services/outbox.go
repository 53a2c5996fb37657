package services

import (
	"encoding/json"
	"log"

	"learning-progression-system/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AddNotification inserts one notification into the outbox inside the caller's
// transaction. Delivery is the notify worker's problem; a datastore failure here
// rolls the whole operation back, a delivery failure later does not.
func AddNotification(tx *gorm.DB, externalUserID, kind, message string, payload any) error {
	data, _ := json.Marshal(payload)

	row := models.NotificationOutbox{
		ExternalUserID: &externalUserID,
		Kind:           kind,
		Message:        message,
		Payload:        datatypes.JSON(data),
	}

	if err := tx.Create(&row).Error; err != nil {
		log.Printf("❌ Failed to create outbox notification: %v", err)
		return err
	}
	return nil
}
