package notify

import (
	"time"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/config"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/utils"
)

const dispatchBatchSize = 50

// StartDispatcher launches the background goroutine that drains pending outbox
// rows. Sends are strictly sequential with a delay between each to stay under
// the Telegram burst limits; throughput is capped on purpose. Failures mark
// the row and never surface to the operation that enqueued it.
func StartDispatcher(interval, sendDelay time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		for {
			time.Sleep(interval)
			DispatchPending(sendDelay)
		}
	}()
}

// DispatchPending sends one batch of pending notifications.
func DispatchPending(sendDelay time.Duration) {
	db := config.DB()
	if db == nil {
		return
	}

	var pending []models.Notification
	if err := db.Where("status = ?", models.NotifyStatusPending).
		Order("id ASC").Limit(dispatchBatchSize).Find(&pending).Error; err != nil {
		utils.Sugar.Warnf("outbox query failed: %v", err)
		return
	}

	for i, n := range pending {
		if i > 0 && sendDelay > 0 {
			time.Sleep(sendDelay)
		}

		var staff models.Staff
		if err := db.First(&staff, n.StaffID).Error; err != nil {
			db.Model(&models.Notification{}).Where("id = ?", n.ID).Updates(map[string]interface{}{
				"status":   models.NotifyStatusFailed,
				"attempts": n.Attempts + 1,
			})
			continue
		}

		err := deliver(&staff, &n)
		now := time.Now()
		if err != nil {
			utils.Sugar.Warnf("notification %d to staff %d failed: %v", n.ID, staff.ID, err)
			db.Model(&models.Notification{}).Where("id = ?", n.ID).Updates(map[string]interface{}{
				"status":   models.NotifyStatusFailed,
				"attempts": n.Attempts + 1,
			})
			continue
		}
		db.Model(&models.Notification{}).Where("id = ?", n.ID).Updates(map[string]interface{}{
			"status":   models.NotifyStatusSent,
			"attempts": n.Attempts + 1,
			"sent_at":  &now,
		})
	}
}

func deliver(staff *models.Staff, n *models.Notification) error {
	if staff.NotifyChannelID != "" {
		return SendTelegram(staff.NotifyChannelID, n.Message)
	}
	return utils.SendMail(staff.Email, subjectFor(n.Kind), n.Message)
}

func subjectFor(kind string) string {
	switch kind {
	case models.NotifySelected:
		return "You have been selected"
	case models.NotifyNotSelected:
		return "Selection update"
	case models.NotifyEventCancelled:
		return "Event cancelled"
	case models.NotifyEventUpdated:
		return "Event updated"
	default:
		return "New event"
	}
}
