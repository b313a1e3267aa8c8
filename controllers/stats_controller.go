package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/utils"
)

const statsCacheKey = "cache:stats"

// StatsController provides aggregate statistics: staff and event counts,
// signup volume, points issued, and the current top balances.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

type topStaff struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
	Level    string `json:"level"`
}

// GetStats returns aggregate statistics, cached for a minute.
func (s *StatsController) GetStats(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(statsCacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	var staffCount int64
	var signupCount int64
	var pointsIssued int64

	if err := s.db.Model(&models.Staff{}).Count(&staffCount).Error; err != nil {
		staffCount = 0
	}
	if err := s.db.Model(&models.Signup{}).Count(&signupCount).Error; err != nil {
		signupCount = 0
	}
	if err := s.db.Model(&models.PointAdjustment{}).
		Where("points > 0").
		Select("COALESCE(SUM(points),0)").
		Scan(&pointsIssued).Error; err != nil {
		pointsIssued = 0
	}

	eventsByStatus := map[string]int64{}
	for _, status := range []string{models.EventStatusDraft, models.EventStatusOpen, models.EventStatusClosed, models.EventStatusCancelled} {
		var n int64
		if err := s.db.Model(&models.Event{}).Where("status = ?", status).Count(&n).Error; err == nil {
			eventsByStatus[status] = n
		}
	}

	var top []topStaff
	_ = s.db.Model(&models.Staff{}).
		Select("id, username, points, level").
		Order("points DESC").Limit(10).
		Scan(&top).Error

	payload := gin.H{
		"staff_count":      staffCount,
		"signup_count":     signupCount,
		"points_issued":    pointsIssued,
		"events_by_status": eventsByStatus,
		"top_staff":        top,
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(statsCacheKey, wrapper, time.Minute)
	utils.Success(ctx, payload)
}
