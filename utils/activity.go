package utils

import (
	"encoding/json"
	"log"

	"github.com/punamchanne/Property-Dealing/models"
	"github.com/punamchanne/Property-Dealing/storage"
)

// LogActivity records an action in the activity trail. Failures are logged
// and swallowed so a missing log row never fails the primary operation.
func LogActivity(userID uint, action, details string, metadata map[string]string) {
	var metadataStr string
	if metadata != nil {
		if m, err := json.Marshal(metadata); err == nil {
			metadataStr = string(m)
		}
	}

	entry := models.ActivityLog{UserID: userID, Action: action, Details: details, Metadata: metadataStr}
	if err := storage.DB.Create(&entry).Error; err != nil {
		log.Printf("failed to write activity log (%s): %v", action, err)
	}
}
