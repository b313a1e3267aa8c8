package models

import "time"

// Event lifecycle states.
const (
	EventStatusDraft     = "draft"
	EventStatusOpen      = "open"
	EventStatusClosed    = "closed"
	EventStatusCancelled = "cancelled"
)

// DateLayout is the calendar-date format used on event start/end dates. The
// signup cutoff compares dates only, never time of day.
const DateLayout = "2006-01-02"

// Event is a schedulable activity with a point reward and a required level.
// HasBeenClosedBefore is a one-way flag: once the event has been closed, later
// closures only notify staff whose selection actually changed.
type Event struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Name                string    `gorm:"size:255;not null" json:"name"`
	StartDate           string    `gorm:"size:10;not null" json:"start_date"`
	EndDate             string    `gorm:"size:10" json:"end_date"`
	Time                string    `gorm:"size:16" json:"time"`
	Duration            string    `gorm:"size:32" json:"duration"`
	Location            string    `gorm:"size:255" json:"location"`
	Description         string    `gorm:"type:text" json:"description"`
	Notes               string    `gorm:"type:text" json:"notes"`
	RequiredLevel       string    `gorm:"size:64" json:"required_level"`
	Points              int       `gorm:"not null" json:"points"`
	Status              string    `gorm:"size:16;default:'draft';index" json:"status"`
	HasBeenClosedBefore bool      `gorm:"default:false" json:"has_been_closed_before"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ValidEventStatus reports whether s is a known lifecycle state.
func ValidEventStatus(s string) bool {
	switch s {
	case EventStatusDraft, EventStatusOpen, EventStatusClosed, EventStatusCancelled:
		return true
	}
	return false
}
