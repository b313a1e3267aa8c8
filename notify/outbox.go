package notify

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
)

// Enqueue writes outbox rows for the given recipients inside tx, so the rows
// commit or roll back together with the mutation that caused them. Staff that
// are not active or have no reachable channel are skipped silently.
func Enqueue(tx *gorm.DB, recipients []models.Staff, kind string, event *models.Event, message string) error {
	rows := make([]models.Notification, 0, len(recipients))
	for _, s := range recipients {
		if !s.CanReceiveNotifications() {
			continue
		}
		var eventID *uint
		if event != nil {
			id := event.ID
			eventID = &id
		}
		rows = append(rows, models.Notification{
			StaffID: s.ID,
			EventID: eventID,
			Kind:    kind,
			Message: message,
			Status:  models.NotifyStatusPending,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// EnqueueByIDs loads the staff rows for ids and enqueues one message each.
func EnqueueByIDs(tx *gorm.DB, staffIDs []uint, kind string, event *models.Event, message string) error {
	if len(staffIDs) == 0 {
		return nil
	}
	var recipients []models.Staff
	if err := tx.Where("id IN ?", staffIDs).Find(&recipients).Error; err != nil {
		return err
	}
	return Enqueue(tx, recipients, kind, event, message)
}

// EventOpenMessage renders the push body for a newly opened event.
func EventOpenMessage(event *models.Event) string {
	return fmt.Sprintf("New event: %s on %s. Sign up if you want to take part.", event.Name, event.StartDate)
}

// EventUpdatedMessage renders the push body for a changed event.
func EventUpdatedMessage(event *models.Event) string {
	return fmt.Sprintf("Event updated: %s on %s. Check the latest details.", event.Name, event.StartDate)
}

// EventCancelledMessage renders the push body for a cancelled event.
func EventCancelledMessage(event *models.Event) string {
	return fmt.Sprintf("Event cancelled: %s on %s.", event.Name, event.StartDate)
}

// SelectedMessage renders the push body for a staff member picked at closure.
func SelectedMessage(event *models.Event) string {
	return fmt.Sprintf("You have been selected for %s on %s.", event.Name, event.StartDate)
}

// NotSelectedMessage renders the push body for a staff member not picked.
func NotSelectedMessage(event *models.Event) string {
	return fmt.Sprintf("You were not selected for %s on %s this time.", event.Name, event.StartDate)
}
