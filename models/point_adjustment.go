package models

import "time"

// PointAdjustment is an append-only ledger entry. Entries tied to an event
// carry a composite unique index on (event_id, staff_id): at most one award
// per event per staff member, enforced by the database so concurrent awards
// cannot double-credit. Manual adjustments have a NULL event_id, which the
// unique index does not constrain. Rows are never updated or deleted.
type PointAdjustment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StaffID   uint      `gorm:"not null;index;uniqueIndex:idx_awards_event_staff" json:"staff_id"`
	EventID   *uint     `gorm:"uniqueIndex:idx_awards_event_staff" json:"event_id"`
	Points    int       `gorm:"not null" json:"points"`
	Reason    string    `gorm:"size:255" json:"reason"`
	AdminID   uint      `gorm:"not null" json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
}
