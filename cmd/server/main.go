package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	catalogapp "github.com/buildstock/backend/internal/application/catalog"
	inventoryapp "github.com/buildstock/backend/internal/application/inventory"
	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/infrastructure/cache"
	"github.com/buildstock/backend/internal/infrastructure/config"
	"github.com/buildstock/backend/internal/infrastructure/export"
	"github.com/buildstock/backend/internal/infrastructure/logger"
	"github.com/buildstock/backend/internal/infrastructure/migration"
	"github.com/buildstock/backend/internal/infrastructure/persistence"
	"github.com/buildstock/backend/internal/infrastructure/telemetry"
	"github.com/buildstock/backend/internal/interfaces/http/handler"
	"github.com/buildstock/backend/internal/interfaces/http/router"
	"github.com/buildstock/backend/migrations"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) (err error) {
	ctx := context.Background()

	log.Info("Starting BuildStock",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracer provider: %w", err)
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init meter provider: %w", err)
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init logger provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		err = multierr.Append(err, meterProvider.Shutdown(shutdownCtx))
		err = multierr.Append(err, tracerProvider.Shutdown(shutdownCtx))
		err = multierr.Append(err, loggerProvider.Shutdown(shutdownCtx))
	}()
	log = loggerProvider.Bridge(log)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, db.Close())
	}()
	if err := prepareSchema(cfg, db, log); err != nil {
		return err
	}
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		if cfg.Telemetry.DBSlowQueryThresh > 0 {
			dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		}
		if db.Driver == config.DriverSQLite {
			dbTracing.DBSystem = "sqlite"
		}
		plugin := telemetry.NewDBTracingPlugin(dbTracing, log)
		if err := plugin.RegisterOtelGorm(db.DB); err != nil {
			return fmt.Errorf("register database tracing: %w", err)
		}
	}
	log.Info("Database ready")

	var meter metric.Meter
	var inventoryMetrics *telemetry.InventoryMetrics
	if meterProvider.IsEnabled() {
		meter = meterProvider.Meter("buildstock")
		inventoryMetrics, err = telemetry.NewInventoryMetrics(telemetry.InventoryMetricsConfig{Meter: meter, Logger: log})
		if err != nil {
			return fmt.Errorf("init inventory metrics: %w", err)
		}
	}

	// Repositories
	materialRepo := persistence.NewGormMaterialRepository(db.DB)
	lotRepo := persistence.NewGormReceiptLotRepository(db.DB)
	issueRepo := persistence.NewGormIssueRecordRepository(db.DB)
	stockRepo := persistence.NewGormStockReportRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	materialService := catalogapp.NewMaterialService(materialRepo, stockRepo, log)
	receiptService := inventoryapp.NewReceiptService(materialRepo, lotRepo, txScope,
		inventory.NumberFormat{Prefix: inventory.ReceiptPrefix, PadWidth: cfg.Numbering.ReceiptPadWidth}, log)
	issueService := inventoryapp.NewIssueService(materialRepo, lotRepo, issueRepo, txScope, inventoryapp.IssueConfig{
		Format:           inventory.NumberFormat{Prefix: inventory.IssuePrefix, PadWidth: cfg.Numbering.IssuePadWidth},
		MaxCommitRetries: cfg.Issue.MaxCommitRetries,
	}, log)
	stockService := inventoryapp.NewStockService(materialRepo, lotRepo, issueRepo, stockRepo, log)
	stockService.SetReportWriter(export.NewXLSXStockReportWriter())

	if inventoryMetrics != nil {
		receiptService.SetMetrics(inventoryMetrics)
		issueService.SetMetrics(inventoryMetrics)
		stockService.SetMetrics(inventoryMetrics)
	}

	if cfg.Redis.Enabled {
		redisClient, redisErr := cache.NewRedisClient(ctx, cfg.Redis)
		if redisErr != nil {
			return redisErr
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		issueService.SetLocker(cache.NewRedisMaterialLocker(redisClient,
			cache.WithLockTTL(cfg.Redis.LockTTL),
			cache.WithLockLogger(log),
		))
		log.Info("Redis material lock enabled", zap.String("addr", cfg.Redis.Addr()))
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.NewEngine(router.EngineConfig{
		HTTP:        cfg.HTTP,
		ServiceName: cfg.Telemetry.ServiceName,
		Tracing:     tracerProvider.IsEnabled(),
		Meter:       meter,
		Logger:      log,
	})
	router.NewRouter(engine).
		Register(handler.NewMaterialHandler(materialService, log)).
		Register(handler.NewReceiptHandler(receiptService, log)).
		Register(handler.NewIssueHandler(issueService, log)).
		Register(handler.NewStockHandler(stockService, log)).
		Register(handler.NewSystemHandler(db, cfg.App.Name, cfg.App.Version, log)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited gracefully")
	return nil
}

// prepareSchema creates the sqlite schema from the models, or applies the
// embedded SQL migrations to postgres
func prepareSchema(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if db.Driver == config.DriverSQLite {
		return db.AutoMigrate()
	}

	// golang-migrate closes the handle it is given, so it gets its own
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	return multierr.Append(m.Up(), m.Close())
}
