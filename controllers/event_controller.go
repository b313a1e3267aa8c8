package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/notify"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/utils"
)

// EventController owns the event lifecycle: create, update, close with staff
// selection, cancel, reinstate, delete, and the staff-facing listings.
type EventController struct {
	db *gorm.DB
}

// NewEventController creates a new controller instance.
func NewEventController(db *gorm.DB) *EventController {
	return &EventController{db: db}
}

type eventPayload struct {
	Name          *string `json:"name"`
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
	Time          *string `json:"time"`
	Duration      *string `json:"duration"`
	Location      *string `json:"location"`
	Description   *string `json:"description"`
	Notes         *string `json:"notes"`
	RequiredLevel *string `json:"required_level"`
	Points        *int    `json:"points"`
	Status        *string `json:"status"`
}

// CreateEvent creates an event in draft or open status. An unresolved required
// level is a validation error, never silently nulled. Creating directly as
// open notifies every level-eligible active staff member.
func (e *EventController) CreateEvent(ctx *gin.Context) {
	var req eventPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "name is required")
		return
	}
	if req.StartDate == nil || !validDate(*req.StartDate) {
		utils.Error(ctx, http.StatusBadRequest, 40022, "start_date must be YYYY-MM-DD")
		return
	}
	if req.EndDate != nil && *req.EndDate != "" && !validDate(*req.EndDate) {
		utils.Error(ctx, http.StatusBadRequest, 40022, "end_date must be YYYY-MM-DD")
		return
	}
	if req.Points == nil || *req.Points <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40023, "points must be greater than zero")
		return
	}

	status := models.EventStatusDraft
	if req.Status != nil && *req.Status != "" {
		status = *req.Status
		if status != models.EventStatusDraft && status != models.EventStatusOpen {
			utils.Error(ctx, http.StatusBadRequest, 40024, "status must be draft or open")
			return
		}
	}

	var levels []models.Level
	if err := e.db.Find(&levels).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load levels")
		return
	}

	requiredLevel := ""
	if req.RequiredLevel != nil {
		requiredLevel = strings.TrimSpace(*req.RequiredLevel)
	}
	if requiredLevel != "" && models.FindLevelByName(levels, requiredLevel) == nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, "unknown required level")
		return
	}

	event := models.Event{
		Name:          strings.TrimSpace(*req.Name),
		StartDate:     *req.StartDate,
		RequiredLevel: requiredLevel,
		Points:        *req.Points,
		Status:        status,
	}
	if req.EndDate != nil {
		event.EndDate = *req.EndDate
	}
	if req.Time != nil {
		event.Time = *req.Time
	}
	if req.Duration != nil {
		event.Duration = *req.Duration
	}
	if req.Location != nil {
		event.Location = strings.TrimSpace(*req.Location)
	}
	if req.Description != nil {
		event.Description = utils.Sanitize(*req.Description)
	}
	if req.Notes != nil {
		event.Notes = utils.Sanitize(*req.Notes)
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		if event.Status == models.EventStatusOpen {
			return e.notifyEligible(tx, &event, levels)
		}
		return nil
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to create event")
		return
	}

	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{"event": event, "signed_up_staff": []uint{}})
}

// UpdateEvent merges a partial patch onto an event, preserving the roster and
// created_at. A draft going open re-triggers new-event notifications; field
// changes on a non-draft event notify the currently relevant staff (signed-up
// when open, confirmed when closed). Draft edits are silent.
func (e *EventController) UpdateEvent(ctx *gin.Context) {
	var event models.Event
	if err := e.db.First(&event, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load event")
		return
	}

	var req eventPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	var levels []models.Level
	if err := e.db.Find(&levels).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load levels")
		return
	}

	wasDraft := event.Status == models.EventStatusDraft
	fieldsChanged := false

	setString := func(dst *string, src *string, sanitize bool) {
		if src == nil {
			return
		}
		v := *src
		if sanitize {
			v = utils.Sanitize(v)
		}
		if *dst != v {
			*dst = v
			fieldsChanged = true
		}
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "name cannot be empty")
		return
	}
	if req.StartDate != nil && !validDate(*req.StartDate) {
		utils.Error(ctx, http.StatusBadRequest, 40022, "start_date must be YYYY-MM-DD")
		return
	}
	if req.EndDate != nil && *req.EndDate != "" && !validDate(*req.EndDate) {
		utils.Error(ctx, http.StatusBadRequest, 40022, "end_date must be YYYY-MM-DD")
		return
	}
	if req.Points != nil && *req.Points <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40023, "points must be greater than zero")
		return
	}
	if req.RequiredLevel != nil {
		rl := strings.TrimSpace(*req.RequiredLevel)
		if rl != "" && models.FindLevelByName(levels, rl) == nil {
			utils.Error(ctx, http.StatusBadRequest, 40025, "unknown required level")
			return
		}
		if event.RequiredLevel != rl {
			event.RequiredLevel = rl
			fieldsChanged = true
		}
	}

	setString(&event.Name, req.Name, false)
	setString(&event.StartDate, req.StartDate, false)
	setString(&event.EndDate, req.EndDate, false)
	setString(&event.Time, req.Time, false)
	setString(&event.Duration, req.Duration, false)
	setString(&event.Location, req.Location, false)
	setString(&event.Description, req.Description, true)
	setString(&event.Notes, req.Notes, true)
	if req.Points != nil && event.Points != *req.Points {
		event.Points = *req.Points
		fieldsChanged = true
	}

	openedNow := false
	if req.Status != nil && *req.Status != event.Status {
		if !wasDraft || *req.Status != models.EventStatusOpen {
			utils.Error(ctx, http.StatusBadRequest, 40026, "status can only move draft to open here")
			return
		}
		event.Status = models.EventStatusOpen
		openedNow = true
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		if openedNow {
			return e.notifyEligible(tx, &event, levels)
		}
		if fieldsChanged && !wasDraft {
			recipients, err := e.relevantStaffIDs(tx, &event)
			if err != nil {
				return err
			}
			return notify.EnqueueByIDs(tx, recipients, models.NotifyEventUpdated, &event, notify.EventUpdatedMessage(&event))
		}
		return nil
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to update event")
		return
	}

	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{"event": event})
}

type closeRequest struct {
	EventID          uint   `json:"event_id" binding:"required"`
	ApprovedStaffIDs []uint `json:"approved_staff_ids"`
}

// CloseEvent sets an event to closed and overwrites the roster selection with
// the approved set: approved signups get is_selected/confirmed_at, everyone
// else signed up is marked rejected. Re-closing fully replaces the previous
// selection, and only staff whose status actually changed since the last
// closure are notified.
func (e *EventController) CloseEvent(ctx *gin.Context) {
	var req closeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40027, "invalid request payload")
		return
	}

	var event models.Event
	if err := e.db.First(&event, req.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load event")
		return
	}

	if event.Status != models.EventStatusOpen && event.Status != models.EventStatusClosed {
		utils.Error(ctx, http.StatusConflict, 40920, "event cannot be closed from its current status")
		return
	}

	approved := utils.UniqueUint(req.ApprovedStaffIDs)

	var diff notify.SelectionDiff
	var confirmed []uint

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var signups []models.Signup
		if err := tx.Where("event_id = ?", event.ID).Find(&signups).Error; err != nil {
			return err
		}

		signedUp := make([]uint, 0, len(signups))
		previouslyConfirmed := make([]uint, 0, len(signups))
		for _, s := range signups {
			signedUp = append(signedUp, s.StaffID)
			if s.IsSelected {
				previouslyConfirmed = append(previouslyConfirmed, s.StaffID)
			}
		}

		firstClosure := !event.HasBeenClosedBefore
		diff = notify.DiffSelection(firstClosure, signedUp, previouslyConfirmed, approved)

		now := time.Now()
		approvedSet := utils.ToUintSet(approved)
		for i := range signups {
			if approvedSet[signups[i].StaffID] {
				signups[i].IsSelected = true
				signups[i].ConfirmedAt = &now
				confirmed = append(confirmed, signups[i].StaffID)
			} else {
				signups[i].IsSelected = false
				signups[i].ConfirmedAt = nil
			}
			if err := tx.Save(&signups[i]).Error; err != nil {
				return err
			}
		}

		event.Status = models.EventStatusClosed
		event.HasBeenClosedBefore = true
		if err := tx.Save(&event).Error; err != nil {
			return err
		}

		if err := notify.EnqueueByIDs(tx, diff.NewlySelected, models.NotifySelected, &event, notify.SelectedMessage(&event)); err != nil {
			return err
		}
		return notify.EnqueueByIDs(tx, diff.NewlyDeselected, models.NotifyNotSelected, &event, notify.NotSelectedMessage(&event))
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to close event")
		return
	}

	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{
		"event":            event,
		"confirmed_staff":  confirmed,
		"newly_selected":   diff.NewlySelected,
		"newly_deselected": diff.NewlyDeselected,
	})
}

// CancelEvent cancels an event without touching the roster, so reinstating
// later restores the exact pre-cancel state. Recipients depend on the status
// before cancellation: previously confirmed staff for a closed event, the
// whole signed-up set for an open one, nobody for a draft.
func (e *EventController) CancelEvent(ctx *gin.Context) {
	var event models.Event
	if err := e.db.First(&event, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load event")
		return
	}

	if event.Status == models.EventStatusCancelled {
		utils.Error(ctx, http.StatusConflict, 40921, "event already cancelled")
		return
	}

	prevStatus := event.Status

	err := e.db.Transaction(func(tx *gorm.DB) error {
		event.Status = models.EventStatusCancelled
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		if prevStatus == models.EventStatusDraft {
			return nil
		}
		recipients, err := e.relevantStaffIDsForStatus(tx, &event, prevStatus)
		if err != nil {
			return err
		}
		return notify.EnqueueByIDs(tx, recipients, models.NotifyEventCancelled, &event, notify.EventCancelledMessage(&event))
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to cancel event")
		return
	}

	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{"event": event})
}

// ReinstateEvent reopens a cancelled or closed event. The roster is preserved
// and nobody is notified; reopening is silent.
func (e *EventController) ReinstateEvent(ctx *gin.Context) {
	var event models.Event
	if err := e.db.First(&event, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load event")
		return
	}

	if event.Status != models.EventStatusCancelled && event.Status != models.EventStatusClosed {
		utils.Error(ctx, http.StatusConflict, 40922, "only cancelled or closed events can be reinstated")
		return
	}

	event.Status = models.EventStatusOpen
	if err := e.db.Save(&event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to reinstate event")
		return
	}

	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{"event": event})
}

// DeleteEvent hard-deletes the event row. Ledger entries referencing it are
// preserved as history; orphaned signups are swept by a background job.
func (e *EventController) DeleteEvent(ctx *gin.Context) {
	var event models.Event
	if err := e.db.First(&event, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load event")
		return
	}

	if err := e.db.Delete(&event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to delete event")
		return
	}

	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{"message": "event deleted"})
}

// ListEvents returns events visible to the caller. Admins see every status
// (optionally filtered); staff only see open and closed events whose required
// level their own level satisfies.
func (e *EventController) ListEvents(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := e.db.Model(&models.Event{}).Order("start_date ASC, id ASC")

	if getRole(ctx) == models.RoleAdmin {
		if status := strings.TrimSpace(ctx.Query("status")); status != "" {
			if !models.ValidEventStatus(status) {
				utils.Error(ctx, http.StatusBadRequest, 40024, "unknown status filter")
				return
			}
			query = query.Where("status = ?", status)
		}
	} else {
		staffID, ok := getStaffID(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
			return
		}
		var staff models.Staff
		if err := e.db.First(&staff, staffID).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to load account")
			return
		}
		var levels []models.Level
		if err := e.db.Find(&levels).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load levels")
			return
		}

		allowedLevels := []string{""}
		if own := models.FindLevelByName(levels, staff.Level); own != nil {
			for _, lv := range levels {
				if lv.TierOrder <= own.TierOrder {
					allowedLevels = append(allowedLevels, lv.Name)
				}
			}
		}
		query = query.
			Where("status IN ?", []string{models.EventStatusOpen, models.EventStatusClosed}).
			Where("required_level IN ?", allowedLevels)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to count events")
		return
	}

	var events []models.Event
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&events).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to list events")
		return
	}

	utils.Success(ctx, gin.H{
		"items": events,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// GetEvent returns one event with its roster. Draft and cancelled events are
// hidden from non-admin staff.
func (e *EventController) GetEvent(ctx *gin.Context) {
	var event models.Event
	if err := e.db.First(&event, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load event")
		return
	}

	if getRole(ctx) != models.RoleAdmin &&
		(event.Status == models.EventStatusDraft || event.Status == models.EventStatusCancelled) {
		utils.Error(ctx, http.StatusNotFound, 40420, "event not found")
		return
	}

	var signups []models.Signup
	if err := e.db.Where("event_id = ?", event.ID).Order("signed_up_at ASC").Find(&signups).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load roster")
		return
	}

	signedUp := make([]uint, 0, len(signups))
	confirmed := make([]uint, 0, len(signups))
	for _, s := range signups {
		signedUp = append(signedUp, s.StaffID)
		if s.IsSelected {
			confirmed = append(confirmed, s.StaffID)
		}
	}

	utils.Success(ctx, gin.H{
		"event":           event,
		"signups":         signups,
		"signed_up_staff": signedUp,
		"confirmed_staff": confirmed,
	})
}

// notifyEligible enqueues new-event notifications for active staff whose level
// grants access to the event.
func (e *EventController) notifyEligible(tx *gorm.DB, event *models.Event, levels []models.Level) error {
	var staff []models.Staff
	if err := tx.Where("status = ?", models.StaffStatusActive).Find(&staff).Error; err != nil {
		return err
	}
	eligible := notify.EligibleStaff(staff, levels, event.RequiredLevel)
	return notify.Enqueue(tx, eligible, models.NotifyEventOpen, event, notify.EventOpenMessage(event))
}

// relevantStaffIDs resolves who cares about an event in its current status.
func (e *EventController) relevantStaffIDs(tx *gorm.DB, event *models.Event) ([]uint, error) {
	return e.relevantStaffIDsForStatus(tx, event, event.Status)
}

func (e *EventController) relevantStaffIDsForStatus(tx *gorm.DB, event *models.Event, status string) ([]uint, error) {
	query := tx.Model(&models.Signup{}).Where("event_id = ?", event.ID)
	if status == models.EventStatusClosed {
		query = query.Where("is_selected = ?", true)
	}
	var ids []uint
	if err := query.Pluck("staff_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func validDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}
