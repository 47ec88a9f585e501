package notifications

import (
	"encoding/json"
	"log"

	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/google/uuid"
)

// Notify inserts an in-app notification row. data, when non-nil, is stored
// as a JSON payload alongside the message.
func Notify(userID uuid.UUID, notificationType, title, message string, data map[string]string) {
	notification := models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
	}

	if data != nil {
		encoded, err := json.Marshal(data)
		if err == nil {
			payload := string(encoded)
			notification.Data = &payload
		}
	}

	if err := database.DB.Create(&notification).Error; err != nil {
		log.Printf("🔥 Failed to create notification for user %s: %v", userID, err)
	}
}
