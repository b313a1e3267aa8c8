package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/utils"
)

// ParticipationController owns the point ledger: the idempotent per-event
// award, the batch award over the confirmed set, and manual adjustments.
type ParticipationController struct {
	db *gorm.DB
}

var errDuplicateAward = errors.New("points already awarded for this event")

// NewParticipationController creates a new controller instance.
func NewParticipationController(db *gorm.DB) *ParticipationController {
	return &ParticipationController{db: db}
}

// Confirm awards an event's points to one confirmed staff member exactly
// once. The unique ledger index on (event_id, staff_id) is what actually
// prevents a double award under concurrency; the pre-check only shortcuts the
// friendly conflict response.
func (p *ParticipationController) Confirm(ctx *gin.Context) {
	adminID, _ := getStaffID(ctx)

	var req struct {
		EventID uint `json:"event_id" binding:"required"`
		StaffID uint `json:"staff_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	var event models.Event
	if err := p.db.First(&event, req.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load event")
		return
	}

	var signup models.Signup
	if err := p.db.Where("event_id = ? AND staff_id = ?", req.EventID, req.StaffID).First(&signup).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40440, "staff is not signed up for this event")
		return
	}
	if !signup.IsSelected {
		utils.Error(ctx, http.StatusConflict, 40940, "staff is not in the confirmed set")
		return
	}

	var count int64
	if err := p.db.Model(&models.PointAdjustment{}).
		Where("event_id = ? AND staff_id = ?", req.EventID, req.StaffID).
		Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to check ledger")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40941, "points already awarded for this event")
		return
	}

	var staff models.Staff
	var leveledUp bool
	err := p.db.Transaction(func(tx *gorm.DB) error {
		up, err := p.award(tx, &event, req.StaffID, adminID, &staff)
		leveledUp = up
		return err
	})
	if err != nil {
		if errors.Is(err, errDuplicateAward) {
			utils.Error(ctx, http.StatusConflict, 40941, "points already awarded for this event")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to award points")
		return
	}

	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{
		"staff":      staff,
		"leveled_up": leveledUp,
	})
}

// ConfirmAll awards the event's points to every confirmed staff member not
// yet present in the ledger for the event. Already-paid staff are skipped
// silently, so running it twice is safe.
func (p *ParticipationController) ConfirmAll(ctx *gin.Context) {
	adminID, _ := getStaffID(ctx)

	var req struct {
		EventID uint `json:"event_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid request payload")
		return
	}

	var event models.Event
	if err := p.db.First(&event, req.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load event")
		return
	}

	var confirmed []uint
	if err := p.db.Model(&models.Signup{}).
		Where("event_id = ? AND is_selected = ?", req.EventID, true).
		Pluck("staff_id", &confirmed).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load confirmed staff")
		return
	}

	var paid []uint
	if err := p.db.Model(&models.PointAdjustment{}).
		Where("event_id = ?", req.EventID).
		Pluck("staff_id", &paid).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to check ledger")
		return
	}
	paidSet := utils.ToUintSet(paid)

	processed := 0
	skipped := 0
	for _, staffID := range confirmed {
		if paidSet[staffID] {
			skipped++
			continue
		}
		err := p.db.Transaction(func(tx *gorm.DB) error {
			var staff models.Staff
			_, err := p.award(tx, &event, staffID, adminID, &staff)
			return err
		})
		if err != nil {
			if errors.Is(err, errDuplicateAward) {
				skipped++
				continue
			}
			utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to award points")
			return
		}
		processed++
	}

	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{
		"processed": processed,
		"skipped":   skipped,
	})
}

// AdjustPoints appends a manual, event-less ledger entry for an arbitrary
// signed delta. The resulting balance is clamped at zero and the level
// projection is recomputed through the same path as awards.
func (p *ParticipationController) AdjustPoints(ctx *gin.Context) {
	adminID, _ := getStaffID(ctx)

	var req struct {
		StaffID uint   `json:"staff_id" binding:"required"`
		Points  int    `json:"points" binding:"required"`
		Reason  string `json:"reason" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid request payload")
		return
	}

	reason := utils.Sanitize(strings.TrimSpace(req.Reason))
	if reason == "" {
		utils.Error(ctx, http.StatusBadRequest, 40043, "reason cannot be empty")
		return
	}

	var staff models.Staff
	var leveledUp bool
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&staff, req.StaffID).Error; err != nil {
			return err
		}

		entry := models.PointAdjustment{
			StaffID: staff.ID,
			Points:  req.Points,
			Reason:  reason,
			AdminID: adminID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		var levels []models.Level
		if err := tx.Find(&levels).Error; err != nil {
			return err
		}
		leveledUp = models.ApplyPointDelta(&staff, req.Points, levels)
		return tx.Save(&staff).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "staff not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to adjust points")
		return
	}

	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{
		"staff":      staff,
		"leveled_up": leveledUp,
	})
}

// award appends the ledger entry and recomputes the staff projection inside
// tx. A duplicate-key error from the ledger index is translated into
// errDuplicateAward.
func (p *ParticipationController) award(tx *gorm.DB, event *models.Event, staffID, adminID uint, staff *models.Staff) (bool, error) {
	eventID := event.ID
	entry := models.PointAdjustment{
		StaffID: staffID,
		EventID: &eventID,
		Points:  event.Points,
		Reason:  fmt.Sprintf("Completed Event: %s", event.Name),
		AdminID: adminID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, errDuplicateAward
		}
		return false, err
	}

	if err := tx.First(staff, staffID).Error; err != nil {
		return false, err
	}

	var levels []models.Level
	if err := tx.Find(&levels).Error; err != nil {
		return false, err
	}

	leveledUp := models.ApplyPointDelta(staff, event.Points, levels)
	if err := tx.Save(staff).Error; err != nil {
		return false, err
	}
	return leveledUp, nil
}
