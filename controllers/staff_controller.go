package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/utils"
)

// StaffController provides the admin view of staff accounts.
type StaffController struct {
	db *gorm.DB
}

// NewStaffController creates a new controller instance.
func NewStaffController(db *gorm.DB) *StaffController {
	return &StaffController{db: db}
}

// ListStaff returns paginated staff accounts, optionally filtered by status.
func (s *StaffController) ListStaff(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := s.db.Model(&models.Staff{})
	if status := strings.TrimSpace(ctx.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to count staff")
		return
	}

	var staff []models.Staff
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&staff).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to list staff")
		return
	}

	utils.Success(ctx, gin.H{
		"items": staff,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// UpdateStaff lets an admin change an account's status, role or notification
// channel. Points and level stay ledger-controlled.
func (s *StaffController) UpdateStaff(ctx *gin.Context) {
	var staff models.Staff
	if err := s.db.First(&staff, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "staff not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load staff")
		return
	}

	var req struct {
		Status          *string `json:"status"`
		Role            *string `json:"role"`
		NotifyChannelID *string `json:"notify_channel_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	if req.Status != nil {
		switch *req.Status {
		case models.StaffStatusActive, models.StaffStatusPending, models.StaffStatusInactive:
			staff.Status = *req.Status
		default:
			utils.Error(ctx, http.StatusBadRequest, 40061, "unknown status")
			return
		}
	}
	if req.Role != nil {
		switch *req.Role {
		case models.RoleAdmin, models.RoleStaff:
			staff.Role = *req.Role
		default:
			utils.Error(ctx, http.StatusBadRequest, 40062, "unknown role")
			return
		}
	}
	if req.NotifyChannelID != nil {
		staff.NotifyChannelID = strings.TrimSpace(*req.NotifyChannelID)
	}

	if err := s.db.Save(&staff).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to update staff")
		return
	}

	utils.InvalidateByPrefix("cache:stats")
	utils.Success(ctx, gin.H{"staff": staff})
}
