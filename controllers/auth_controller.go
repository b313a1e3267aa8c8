package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/config"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/utils"
)

const tokenDuration = 72 * time.Hour

// AuthController handles account registration, login and profile endpoints.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register handles local account registration with bcrypt hashing. Accounts
// start in pending status and the bottom level; usernames listed in the admin
// config register directly as active admins.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to hash password")
		return
	}

	var levels []models.Level
	if err := a.db.Find(&levels).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load levels")
		return
	}

	staff := models.Staff{
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         models.RoleStaff,
		Status:       models.StaffStatusPending,
		Level:        models.LevelForPoints(0, levels),
	}

	cfg := config.Get()
	for _, admin := range cfg.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(admin), username) {
			staff.Role = models.RoleAdmin
			staff.Status = models.StaffStatusActive
			break
		}
	}

	if err := a.db.Create(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40910, "username already taken")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to create account")
		return
	}

	utils.Success(ctx, gin.H{"staff": staff})
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	var staff models.Staff
	if err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&staff).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
		return
	}

	if !utils.CheckPassword(staff.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
		return
	}

	if staff.Status == models.StaffStatusInactive {
		utils.Error(ctx, http.StatusForbidden, 40310, "account deactivated")
		return
	}

	token, err := utils.GenerateToken(staff.ID, staff.Username, staff.Role, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"token": token, "staff": staff})
}

// Logout blacklists the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusBadRequest, 40012, "missing bearer token")
		return
	}
	tokenString := strings.TrimSpace(parts[1])

	claims, err := utils.ParseToken(tokenString)
	if err == nil && claims.ExpiresAt != nil {
		utils.BlacklistToken(tokenString, claims.ExpiresAt.Time)
	}

	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated staff record.
func (a *AuthController) Me(ctx *gin.Context) {
	staffID, ok := getStaffID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	var staff models.Staff
	if err := a.db.First(&staff, staffID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "staff not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load account")
		return
	}

	utils.Success(ctx, gin.H{"staff": staff})
}

// UpdateProfile lets a staff member change their own email and notification
// channel id. Points, level, role and status stay admin/ledger controlled.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	staffID, ok := getStaffID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	type request struct {
		Email           *string `json:"email"`
		NotifyChannelID *string `json:"notify_channel_id"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}

	var staff models.Staff
	if err := a.db.First(&staff, staffID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "staff not found")
		return
	}

	if req.Email != nil {
		staff.Email = strings.TrimSpace(*req.Email)
	}
	if req.NotifyChannelID != nil {
		staff.NotifyChannelID = strings.TrimSpace(*req.NotifyChannelID)
	}

	if err := a.db.Save(&staff).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to update profile")
		return
	}

	utils.Success(ctx, gin.H{"staff": staff})
}
