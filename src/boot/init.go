package boot

import (
	"context"
	"log"
	"time"

	"backoffice/src/common"
	"backoffice/src/db"
	"backoffice/src/lib"
	"backoffice/src/models"
	"backoffice/src/types"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.Account{},
		&models.Offer{},
		&models.Transaction{},
		&models.Installment{},
		&models.Voucher{},
		&models.Invoice{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler wires the daily settlement run for daemon mode. The redis
// lock makes an overlapping trigger from another instance a no-op.
func InitScheduler() {
	_, err := lib.CreateDailyJob("fechamento-diario", 3, 0, func() {
		ctx := context.Background()
		if !lib.AcquireRunLock(ctx, "fechamento", 2*time.Hour) {
			return
		}
		defer lib.ReleaseRunLock(ctx, "fechamento")
		report := common.RunFechamento(time.Now(), types.ModeApply, common.FechamentoOpts{})
		report.Print()
	})
	if err != nil {
		log.Printf("Error scheduling daily settlement: %s\n", err.Error())
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	sched.Start()
	log.Printf("Scheduler started with %d job(s)\n", len(sched.Jobs()))
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
