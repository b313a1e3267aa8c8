package main

import (
	"log"
	"time"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/config"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/notify"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/routes"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(
		&models.Staff{},
		&models.Level{},
		&models.Event{},
		&models.Signup{},
		&models.PointAdjustment{},
		&models.Notification{},
	)

	r := routes.SetupRouter(db)

	notify.StartDispatcher(
		time.Duration(cfg.NotifyDispatchIntervalSec)*time.Second,
		time.Duration(cfg.NotifySendDelayMs)*time.Millisecond,
	)
	utils.StartOrphanSignupSweeper(time.Duration(cfg.OrphanSweepIntervalMin) * time.Minute)

	utils.Sugar.Infof("eventhub listening on :%s", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server exited: %v", err)
	}
}
