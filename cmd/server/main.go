package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdboard/internal/config"
	"github.com/mamadbah2/herdboard/internal/metrics"
	"github.com/mamadbah2/herdboard/internal/repository/sheets"
	"github.com/mamadbah2/herdboard/internal/scheduler"
	"github.com/mamadbah2/herdboard/internal/server/handlers"
	"github.com/mamadbah2/herdboard/internal/server/router"
	"github.com/mamadbah2/herdboard/internal/service/cache"
	"github.com/mamadbah2/herdboard/internal/service/dashboard"
	"github.com/mamadbah2/herdboard/internal/service/export"
	"github.com/mamadbah2/herdboard/internal/service/persistence"
	"github.com/mamadbah2/herdboard/internal/service/records"
	"github.com/mamadbah2/herdboard/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	m := metrics.New()

	kv, err := openStore(context.Background(), cfg.Storage, baseLogger.Named("repo."+cfg.Storage.Driver))
	if err != nil {
		baseLogger.Fatal("failed to init key-value store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := kv.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close key-value store", zap.Error(err))
		}
	}()

	gateway := persistence.NewGateway(kv, m, baseLogger.Named("svc.persistence"))
	store := records.NewStore(gateway, baseLogger.Named("svc.records"))
	memo := cache.New(gateway, cfg.Cache.TTL, m, baseLogger.Named("svc.cache"))

	dashboardSvc := dashboard.NewService(store, memo, gateway, m, baseLogger.Named("svc.dashboard"), dashboard.Options{
		SimulatedLatency: cfg.Dashboard.SimulatedLatency,
		SeedDemoHerd:     cfg.Dashboard.SeedDemoHerd,
	})
	dashboardSvc.Init(context.Background())

	exporter := export.New(export.ModeFromConfig(cfg.Export.CSVMode), baseLogger.Named("svc.export"))

	var sink handlers.SheetWriter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sink = sheetsRepo
		baseLogger.Info("sheets export enabled", zap.String("range", cfg.Sheets.Range))
	} else {
		baseLogger.Warn("sheets credentials missing, sheets export disabled")
	}

	reportLoc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("failed to load report timezone", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	}

	engine := router.New(router.Handlers{
		Dashboard: handlers.NewDashboardHandler(dashboardSvc, reportLoc, baseLogger.Named("handlers.dashboard")),
		Export:    handlers.NewExportHandler(dashboardSvc, exporter, sink, baseLogger.Named("handlers.export")),
		Events:    handlers.NewEventsHandler(dashboardSvc, baseLogger.Named("handlers.events")),
		Metrics:   m.Handler(),
	}, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(*cfg, memo, dashboardSvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: /api/events keeps the response open.
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
