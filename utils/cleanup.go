package utils

import (
	"log"
	"time"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/config"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
)

// StartOrphanSignupSweeper launches a background goroutine that periodically
// deletes signup rows whose event no longer exists. Event deletion does not
// cascade, so a hard-deleted event leaves its roster behind; ledger rows are
// deliberately never touched. Best-effort, failures are logged.
func StartOrphanSignupSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			res := db.Where("event_id NOT IN (?)", db.Model(&models.Event{}).Select("id")).
				Delete(&models.Signup{})
			if res.Error != nil {
				log.Printf("orphan signup sweep failed: %v", res.Error)
				continue
			}
			if res.RowsAffected > 0 {
				Sugar.Infof("orphan signup sweep removed %d rows", res.RowsAffected)
			}
		}
	}()
}
