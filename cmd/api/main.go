package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sangkips/studio-ledger/internal/application/service"
	"github.com/sangkips/studio-ledger/internal/config"
	domainRepo "github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/internal/infrastructure/database"
	"github.com/sangkips/studio-ledger/internal/infrastructure/repository"
	"github.com/sangkips/studio-ledger/internal/presentation/http/handler"
	"github.com/sangkips/studio-ledger/internal/presentation/http/routes"
	"github.com/sangkips/studio-ledger/pkg/logger"
	"github.com/sangkips/studio-ledger/pkg/metrics"
	"github.com/sangkips/studio-ledger/pkg/printer"
	"github.com/sangkips/studio-ledger/pkg/utils"
	"go.uber.org/zap"
)

const idempotencyCleanupInterval = time.Hour

func main() {
	cfg := config.Load()

	log := logger.New(cfg.App.Name, cfg.App.IsProduction(), cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.AutoMigrate(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := database.SeedDefaultData(ctx, db, &cfg.Admin, log); err != nil {
		log.Warn("failed to seed default data", zap.Error(err))
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedger(registry)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	printJobRepo := repository.NewPrintJobRepository(db)
	photoSessionRepo := repository.NewPhotoSessionRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	photographerRepo := repository.NewPhotographerRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db, cfg.Ledger.LockTimeout)

	retry := service.RetryPolicy{
		MaxRetries: cfg.Ledger.MaxRetries,
		Backoff:    cfg.Ledger.RetryBackoff,
	}

	// Services
	ledgerService := service.NewLedgerService(ledgerRepo, log.Named("ledger"), ledgerMetrics, retry)
	reconciliationService := service.NewReconciliationService(ledgerRepo, log.Named("reconcile"), ledgerMetrics, retry)
	authService := service.NewAuthService(userRepo, jwtManager, log.Named("auth"))
	userService := service.NewUserService(userRepo)
	clientService := service.NewClientService(clientRepo, printJobRepo, photoSessionRepo, receiptRepo, ledgerService)
	printJobService := service.NewPrintJobService(printJobRepo, clientRepo, ledgerService)
	photoSessionService := service.NewPhotoSessionService(photoSessionRepo, clientRepo, packageRepo, photographerRepo, ledgerService)
	receiptService := service.NewReceiptService(receiptRepo)
	catalogService := service.NewCatalogService(packageRepo, photographerRepo)
	dashboardService := service.NewDashboardService(repository.NewAnalyticsRepository(db))

	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	if err != nil {
		log.Warn("failed to initialize printer, printing disabled", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()

	printerService := service.NewPrinterService(
		thermalPrinter,
		ledgerService,
		receiptRepo,
		clientRepo,
		userRepo,
		service.PrinterSettings{
			Type:          cfg.Printer.Type,
			Width:         cfg.Printer.Width,
			StudioName:    cfg.Printer.StudioName,
			StudioPhone:   cfg.Printer.StudioPhone,
			StudioAddress: cfg.Printer.StudioAddress,
		},
		log.Named("printer"),
	)

	handlers := &routes.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		Client:       handler.NewClientHandler(clientService),
		PrintJob:     handler.NewPrintJobHandler(printJobService, ledgerService, printerService, log),
		PhotoSession: handler.NewPhotoSessionHandler(photoSessionService, ledgerService, printerService, log),
		Receipt:      handler.NewReceiptHandler(receiptService),
		Catalog:      handler.NewCatalogHandler(catalogService),
		Printer:      handler.NewPrinterHandler(printerService),
		Admin:        handler.NewAdminHandler(reconciliationService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Logger:          log,
		Gatherer:        registry,
		Done:            ctx.Done(),
	})

	// Numbers left unset by an interrupted create are regenerated before
	// traffic is accepted
	if _, err := reconciliationService.Run(ctx, cfg.Ledger.ReconcileRepair); err != nil {
		log.Error("startup reconciliation failed", zap.Error(err))
	}
	if cfg.Ledger.ReconcileInterval > 0 {
		go reconciliationService.RunPeriodically(ctx, cfg.Ledger.ReconcileInterval, cfg.Ledger.ReconcileRepair)
	}
	go purgeIdempotencyKeys(ctx, idempotencyRepo, log)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server",
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.String("db_driver", cfg.Database.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log *zap.Logger) {
	ticker := time.NewTicker(idempotencyCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, time.Now())
			if err != nil {
				log.Warn("failed to purge idempotency keys", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("purged idempotency keys", zap.Int64("count", n))
			}
		}
	}
}
