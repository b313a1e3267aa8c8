package models

import "time"

// Signup is one staff member's registration of interest in an event. The
// composite unique index is the safety net against duplicate registration
// under concurrent requests; the application-level pre-check only exists to
// produce a friendlier error. IsSelected/ConfirmedAt are overwritten on every
// closure of the event.
type Signup struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EventID     uint       `gorm:"not null;uniqueIndex:idx_signups_event_staff" json:"event_id"`
	StaffID     uint       `gorm:"not null;uniqueIndex:idx_signups_event_staff;index" json:"staff_id"`
	SignedUpAt  time.Time  `json:"signed_up_at"`
	IsSelected  bool       `gorm:"default:false" json:"is_selected"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
}
