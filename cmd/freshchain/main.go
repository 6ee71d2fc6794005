package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/freshchain/freshchain/internal/analytics"
	"github.com/freshchain/freshchain/internal/app"
	"github.com/freshchain/freshchain/internal/inventory"
	"github.com/freshchain/freshchain/internal/observability"
	"github.com/freshchain/freshchain/internal/platform/cache"
	"github.com/freshchain/freshchain/internal/platform/db"
	"github.com/freshchain/freshchain/internal/procurement"
	"github.com/freshchain/freshchain/internal/quality"
	"github.com/freshchain/freshchain/internal/returns"
	"github.com/freshchain/freshchain/internal/shared"
	"github.com/freshchain/freshchain/internal/workflow"
	"github.com/freshchain/freshchain/jobs"
	"github.com/freshchain/freshchain/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	roleStore := shared.NewRoleStore(pool)
	changeFeed := shared.NewChangeFeed(redisClient, logger)

	workflowRepo := workflow.NewRepository(pool)
	runner := workflow.NewRunner(workflowRepo, logger, metrics)
	workflowHandler := workflow.NewHandler(logger, runner)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, auditLogger, changeFeed)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	procurementRepo := procurement.NewRepository(pool)
	procurementService := procurement.NewService(procurementRepo, inventoryService, runner, auditLogger, changeFeed, idempotencyStore)
	procurementHandler := procurement.NewHandler(logger, procurementService)

	qualityRepo := quality.NewRepository(pool)
	qualityService := quality.NewService(qualityRepo, inventoryService, roleStore, runner, auditLogger, changeFeed)
	qualityHandler := quality.NewHandler(logger, qualityService)

	returnsRepo := returns.NewRepository(pool)
	returnsService := returns.NewService(returnsRepo, auditLogger, changeFeed)
	returnsHandler := returns.NewHandler(logger, returnsService)

	analyticsRepo := analytics.NewRepository(pool)
	analyticsCache := analytics.NewCache(redisClient, 10*time.Minute)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache, int64(cfg.LowStockThreshold))

	reportClient := report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout)
	reportRenderer := report.NewRenderer(reportClient)
	reportHandler := report.NewHandler(reportClient, reportRenderer, procurementService, logger)

	analyticsHandler := analytics.NewHandler(logger, analyticsService, reportRenderer)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	if err := analyticsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	if err := analyticsService.WatchChangeFeed(ctx, shared.ChangeFeedChannel); err != nil {
		logger.Warn("change feed watcher", slog.Any("error", err))
	}

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Roles:              roleStore,
		InventoryHandler:   inventoryHandler,
		ProcurementHandler: procurementHandler,
		QualityHandler:     qualityHandler,
		ReturnsHandler:     returnsHandler,
		AnalyticsHandler:   analyticsHandler,
		WorkflowHandler:    workflowHandler,
		ReportHandler:      reportHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
