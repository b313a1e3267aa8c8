package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/utils"
)

// SignupController manages the signup roster: self signup with the one-day
// cutoff, unconditional self cancellation, and admin bulk signup.
type SignupController struct {
	db *gorm.DB
}

// NewSignupController creates a new controller instance.
func NewSignupController(db *gorm.DB) *SignupController {
	return &SignupController{db: db}
}

// SignUp registers the calling staff member for an event. Staff must register
// at least one full day before the event's start date; the cutoff compares
// calendar dates only. The unique index on (event_id, staff_id) is the real
// guard against concurrent duplicate registration.
func (s *SignupController) SignUp(ctx *gin.Context) {
	staffID, ok := getStaffID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	var req struct {
		EventID uint `json:"event_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	var event models.Event
	if err := s.db.First(&event, req.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load event")
		return
	}

	eventDate, err := time.Parse(models.DateLayout, event.StartDate)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "event has an invalid start date")
		return
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !eventDate.After(today) {
		utils.Error(ctx, http.StatusBadRequest, 40031, "signup is closed for this event")
		return
	}

	var existing models.Signup
	if err := s.db.Where("event_id = ? AND staff_id = ?", req.EventID, staffID).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40930, "already signed up for this event")
		return
	}

	signup := models.Signup{
		EventID:    req.EventID,
		StaffID:    staffID,
		SignedUpAt: now,
	}
	if err := s.db.Create(&signup).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Raced a concurrent signup; the constraint is authoritative
			utils.Error(ctx, http.StatusConflict, 40930, "already signed up for this event")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to sign up")
		return
	}

	utils.Success(ctx, gin.H{"signup": signup})
}

// CancelSignUp removes the caller's signup for an event. There is no time
// cutoff on cancellation; a selected staff member cancelling after closure
// simply drops out of the confirmed set without a deselection notification.
func (s *SignupController) CancelSignUp(ctx *gin.Context) {
	staffID, ok := getStaffID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	res := s.db.Where("event_id = ? AND staff_id = ?", ctx.Param("eventId"), staffID).
		Delete(&models.Signup{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to cancel signup")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40430, "signup not found")
		return
	}

	utils.Success(ctx, gin.H{"message": "signup cancelled"})
}

// AdminSignUp bulk-registers staff onto an event. Already-registered staff
// are skipped rather than rejected, so re-submitting the same list is a
// no-op; unknown staff ids fail the whole request before anything is
// inserted. Cancelled events reject the operation entirely.
func (s *SignupController) AdminSignUp(ctx *gin.Context) {
	var req struct {
		EventID  uint   `json:"event_id" binding:"required"`
		StaffIDs []uint `json:"staff_ids" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid request payload")
		return
	}

	var event models.Event
	if err := s.db.First(&event, req.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load event")
		return
	}

	if event.Status == models.EventStatusCancelled {
		utils.Error(ctx, http.StatusConflict, 40931, "cannot sign staff up for a cancelled event")
		return
	}

	staffIDs := utils.UniqueUint(req.StaffIDs)

	var known int64
	if err := s.db.Model(&models.Staff{}).Where("id IN ?", staffIDs).Count(&known).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to validate staff")
		return
	}
	if known != int64(len(staffIDs)) {
		utils.Error(ctx, http.StatusNotFound, 40431, "one or more staff ids are unknown")
		return
	}

	var existing []uint
	if err := s.db.Model(&models.Signup{}).
		Where("event_id = ? AND staff_id IN ?", req.EventID, staffIDs).
		Pluck("staff_id", &existing).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load existing signups")
		return
	}

	existingSet := utils.ToUintSet(existing)
	now := time.Now()
	added := []uint{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range staffIDs {
			if existingSet[id] {
				continue
			}
			signup := models.Signup{EventID: req.EventID, StaffID: id, SignedUpAt: now}
			if err := tx.Create(&signup).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				return err
			}
			added = append(added, id)
		}
		return nil
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to sign staff up")
		return
	}

	utils.Success(ctx, gin.H{
		"added":   added,
		"skipped": existing,
	})
}
