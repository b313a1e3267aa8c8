package models

import "time"

// Notification kinds.
const (
	NotifyEventOpen      = "event_open"
	NotifyEventUpdated   = "event_updated"
	NotifyEventCancelled = "event_cancelled"
	NotifySelected       = "selected"
	NotifyNotSelected    = "not_selected"
)

// Notification outbox states.
const (
	NotifyStatusPending = "pending"
	NotifyStatusSent    = "sent"
	NotifyStatusFailed  = "failed"
)

// Notification is an outbox row. Rows are written in the same transaction as
// the lifecycle/ledger mutation that caused them and drained later by the
// dispatcher, so delivery failures can never roll back or block the mutation.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	StaffID   uint       `gorm:"not null;index" json:"staff_id"`
	EventID   *uint      `gorm:"index" json:"event_id"`
	Kind      string     `gorm:"size:32;not null" json:"kind"`
	Message   string     `gorm:"size:512" json:"message"`
	Status    string     `gorm:"size:16;default:'pending';index" json:"status"`
	Attempts  int        `gorm:"default:0" json:"attempts"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at"`
}
