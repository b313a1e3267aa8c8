package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/config"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/controllers"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/middleware"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/utils"
)

// SetupRouter wires middlewares and the API onto a fresh engine.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))
	r.Use(middleware.RequestID())

	RegisterAPI(r, db)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}

// RegisterAPI mounts the versioned API onto r. Split out from SetupRouter so
// tests can mount the routes on a bare engine without the logging stack.
func RegisterAPI(r *gin.Engine, db *gorm.DB) {
	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	staffController := controllers.NewStaffController(db)
	eventController := controllers.NewEventController(db)
	signupController := controllers.NewSignupController(db)
	participationController := controllers.NewParticipationController(db)
	levelController := controllers.NewLevelController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public aggregate stats
	api.GET("/stats", statsController.GetStats)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired())
	authed.GET("/events", eventController.ListEvents)
	authed.GET("/events/:id", eventController.GetEvent)
	authed.GET("/levels", levelController.ListLevels)
	authed.POST("/signups", signupController.SignUp)
	authed.DELETE("/signups/:eventId", signupController.CancelSignUp)

	admin := api.Group("")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	admin.GET("/staff", staffController.ListStaff)
	admin.PATCH("/staff/:id", staffController.UpdateStaff)
	admin.POST("/events", eventController.CreateEvent)
	admin.PUT("/events/:id", eventController.UpdateEvent)
	admin.DELETE("/events/:id", eventController.DeleteEvent)
	admin.POST("/events/:id/cancel", eventController.CancelEvent)
	admin.POST("/events/:id/reinstate", eventController.ReinstateEvent)
	admin.POST("/events/close", eventController.CloseEvent)
	admin.POST("/signups/admin", signupController.AdminSignUp)
	admin.POST("/participation/confirm", participationController.Confirm)
	admin.POST("/participation/confirm-all", participationController.ConfirmAll)
	admin.POST("/points/adjust", participationController.AdjustPoints)
	admin.POST("/levels", levelController.CreateLevel)
	admin.PUT("/levels/:id", levelController.UpdateLevel)
	admin.DELETE("/levels/:id", levelController.DeleteLevel)
	admin.POST("/levels/reorder", levelController.ReorderLevel)
}
