package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-booking/internal/audit"
	"github.com/BruksfildServices01/slot-booking/internal/cache"
	"github.com/BruksfildServices01/slot-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/slot-booking/internal/db"
	"github.com/BruksfildServices01/slot-booking/internal/infra/memstore"
	infraRepo "github.com/BruksfildServices01/slot-booking/internal/infra/repository"
	"github.com/BruksfildServices01/slot-booking/internal/logger"
	"github.com/BruksfildServices01/slot-booking/internal/routes"
	"github.com/BruksfildServices01/slot-booking/internal/timezone"
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
	zap.ReplaceGlobals(zlog)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	deps := routes.Deps{
		Config: cfg,
		Log:    zlog,
		Clock:  timezone.NewClock(cfg.Timezone),
	}

	// ======================================================
	// STORAGE
	// ======================================================
	switch cfg.StorageDriver {
	case config.DriverMemory:
		store := memstore.New()
		deps.Bookings, deps.Users, deps.AuditLog = store, store, store
		zlog.Warn("using in-memory storage, data is lost on restart")
	default:
		db, err := dbpkg.NewDB(cfg)
		if err != nil {
			zlog.Fatal("database init failed", zap.Error(err))
		}
		deps.Bookings = infraRepo.NewBookingGormRepository(db)
		deps.Users = infraRepo.NewUserGormRepository(db)
		deps.AuditLog = infraRepo.NewAuditGormRepository(db)
	}

	// ======================================================
	// CACHE
	// ======================================================
	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		zlog.Warn("slot cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		deps.Cache = cache.NewSlotCache(redisClient, cfg.SlotCacheTTL)
	}

	// ======================================================
	// AUDIT + METRICS
	// ======================================================
	dispatcher := audit.NewDispatcher(audit.New(deps.AuditLog), zlog)
	deps.Audit = dispatcher

	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		deps.Registry = reg
	}

	r := gin.New()
	r.Use(gin.Recovery())
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		zlog.Info("server running", zap.String("addr", cfg.Addr()), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		zlog.Warn("audit queue not drained", zap.Error(err))
	}
}
