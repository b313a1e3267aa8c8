package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/utils"
)

const levelsCacheKey = "cache:levels"

// LevelController manages the level table: CRUD plus adjacent-swap reorder.
type LevelController struct {
	db *gorm.DB
}

// NewLevelController creates a new controller instance.
func NewLevelController(db *gorm.DB) *LevelController {
	return &LevelController{db: db}
}

// ListLevels returns all levels ordered by tier, cached in Redis.
func (l *LevelController) ListLevels(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(levelsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var levels []models.Level
	if err := l.db.Order("tier_order ASC").Find(&levels).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to list levels")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"levels": levels}}
	utils.CacheSetJSON(levelsCacheKey, wrapper, time.Hour)
	utils.Success(ctx, gin.H{"levels": levels})
}

// CreateLevel adds a tier. When no explicit order is given the new tier goes
// on top of the current ordering.
func (l *LevelController) CreateLevel(ctx *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		MinPoints int    `json:"min_points"`
		Order     *int   `json:"order"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40051, "name cannot be empty")
		return
	}
	if req.MinPoints < 0 {
		utils.Error(ctx, http.StatusBadRequest, 40052, "min_points cannot be negative")
		return
	}

	level := models.Level{Name: name, MinPoints: req.MinPoints}
	if req.Order != nil {
		level.TierOrder = *req.Order
	} else {
		var maxOrder *int
		if err := l.db.Model(&models.Level{}).Select("MAX(tier_order)").Scan(&maxOrder).Error; err == nil && maxOrder != nil {
			level.TierOrder = *maxOrder + 1
		}
	}

	if err := l.db.Create(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40950, "level name already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to create level")
		return
	}

	utils.InvalidateByPrefix(levelsCacheKey)
	utils.Success(ctx, gin.H{"level": level})
}

// UpdateLevel edits a tier's name or threshold. Order changes go through the
// reorder endpoint so swaps stay consistent.
func (l *LevelController) UpdateLevel(ctx *gin.Context) {
	var level models.Level
	if err := l.db.First(&level, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40450, "level not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load level")
		return
	}

	var req struct {
		Name      *string `json:"name"`
		MinPoints *int    `json:"min_points"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40051, "name cannot be empty")
			return
		}
		level.Name = name
	}
	if req.MinPoints != nil {
		if *req.MinPoints < 0 {
			utils.Error(ctx, http.StatusBadRequest, 40052, "min_points cannot be negative")
			return
		}
		level.MinPoints = *req.MinPoints
	}

	if err := l.db.Save(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40950, "level name already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to update level")
		return
	}

	utils.InvalidateByPrefix(levelsCacheKey)
	utils.Success(ctx, gin.H{"level": level})
}

// DeleteLevel removes a tier. Staff and events still naming the deleted level
// keep the stale name; the system tolerates that the same way it tolerates
// threshold misconfiguration.
func (l *LevelController) DeleteLevel(ctx *gin.Context) {
	res := l.db.Delete(&models.Level{}, ctx.Param("id"))
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to delete level")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40450, "level not found")
		return
	}

	utils.InvalidateByPrefix(levelsCacheKey)
	utils.Success(ctx, gin.H{"message": "level deleted"})
}

// ReorderLevel swaps a tier's order with its neighbour. "up" moves the tier
// toward more senior (higher order), "down" toward less senior. Names and
// thresholds are untouched.
func (l *LevelController) ReorderLevel(ctx *gin.Context) {
	var req struct {
		LevelID   uint   `json:"level_id" binding:"required"`
		Direction string `json:"direction" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}
	if req.Direction != "up" && req.Direction != "down" {
		utils.Error(ctx, http.StatusBadRequest, 40053, "direction must be up or down")
		return
	}

	var level models.Level
	if err := l.db.First(&level, req.LevelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40450, "level not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load level")
		return
	}

	var neighbour models.Level
	query := l.db.Model(&models.Level{})
	if req.Direction == "up" {
		query = query.Where("tier_order > ?", level.TierOrder).Order("tier_order ASC")
	} else {
		query = query.Where("tier_order < ?", level.TierOrder).Order("tier_order DESC")
	}
	if err := query.First(&neighbour).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusBadRequest, 40054, "level is already at the edge of the ordering")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load neighbour level")
		return
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		level.TierOrder, neighbour.TierOrder = neighbour.TierOrder, level.TierOrder
		if err := tx.Save(&level).Error; err != nil {
			return err
		}
		return tx.Save(&neighbour).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to reorder levels")
		return
	}

	utils.InvalidateByPrefix(levelsCacheKey)
	utils.Success(ctx, gin.H{"levels": []models.Level{level, neighbour}})
}
