package models

import (
	"time"

	"gorm.io/gorm"
)

// Staff account states.
const (
	StaffStatusActive   = "active"
	StaffStatusPending  = "pending"
	StaffStatusInactive = "inactive"
)

// Staff roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Staff represents a staff/volunteer account. Points and Level are a projection
// recomputed from the point ledger; they are never edited directly.
type Staff struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email           string         `gorm:"size:255" json:"email"`
	PasswordHash    string         `gorm:"size:255" json:"-"`
	Role            string         `gorm:"size:16;default:'staff'" json:"role"`
	Status          string         `gorm:"size:16;default:'pending';index" json:"status"`
	Points          int            `gorm:"default:0" json:"points"`
	Level           string         `gorm:"size:64" json:"level"`
	NotifyChannelID string         `gorm:"size:64" json:"notify_channel_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (s *Staff) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = time.Now()
	return nil
}

// IsAdmin reports whether the account carries the admin role.
func (s *Staff) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// CanReceiveNotifications reports whether dispatch should target this account.
func (s *Staff) CanReceiveNotifications() bool {
	return s.Status == StaffStatusActive && (s.NotifyChannelID != "" || s.Email != "")
}
