package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-booking/internal/audit"
	"github.com/BruksfildServices01/slot-booking/internal/cache"
	"github.com/BruksfildServices01/slot-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/slot-booking/internal/db"
	infraRepo "github.com/BruksfildServices01/slot-booking/internal/infra/repository"
	"github.com/BruksfildServices01/slot-booking/internal/logger"
	"github.com/BruksfildServices01/slot-booking/internal/seed"
	"github.com/BruksfildServices01/slot-booking/internal/timezone"
	ucBooking "github.com/BruksfildServices01/slot-booking/internal/usecase/booking"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		zlog.Fatal("database init failed", zap.Error(err))
	}

	bookings := infraRepo.NewBookingGormRepository(db)
	users := infraRepo.NewUserGormRepository(db)
	clock := timezone.NewClock(cfg.Timezone)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// A running API may hold the overlay; the sample booking must invalidate it.
	var slotCache ucBooking.SlotCache
	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		zlog.Warn("slot cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		slotCache = cache.NewSlotCache(redisClient, cfg.SlotCacheTTL)
	}

	dispatcher := audit.NewDispatcher(audit.New(infraRepo.NewAuditGormRepository(db)), zlog)
	bookSlot := ucBooking.NewBookSlot(bookings, slotCache, clock, dispatcher, nil, zlog)

	res, err := seed.New(users, bookings, bookSlot, clock, zlog).Run(ctx)
	if err != nil {
		zlog.Fatal("seed failed", zap.Error(err))
	}
	if err := dispatcher.Close(ctx); err != nil {
		zlog.Warn("audit queue not drained", zap.Error(err))
	}

	zlog.Info("database seeded",
		zap.String("admin", seed.AdminEmail),
		zap.String("patient", seed.PatientEmail),
		zap.Int("slots_created", res.SlotsCreated),
	)
}
