// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "digitizer-service/docs"
	"digitizer-service/internal/config"
	"digitizer-service/internal/database"
	"digitizer-service/internal/driver"
	"digitizer-service/internal/handler"
	"digitizer-service/internal/metrics"
	"digitizer-service/internal/repository"
	"digitizer-service/internal/routes"
	"digitizer-service/internal/service"
	"digitizer-service/internal/utils"
)

// memoryCaptureCapacity bounds the in-memory capture history
const memoryCaptureCapacity = 1000

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB
	metrics  *metrics.Metrics
	eventBus *handler.EventBus

	// Services
	acquisitionService *service.AcquisitionService
	discoveryService   *service.DiscoveryService

	// Repositories
	captureRepo repository.CaptureRepository

	// Driver registry
	driverRegistry *driver.Registry

	stopCleanup chan struct{}
	autoMigrate bool
}

// @title Digitizer Service API
// @version 1.0.0
// @description Segmented block acquisition on PicoScope 6000 digitizers

// @host localhost:8084
// @BasePath /api/v1
func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	migrateOnly := flag.String("migrate", "", "run database migrations (up, down or version) and exit")
	flag.Parse()

	app, err := NewApplication(*configPath, *migrateOnly == "")
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if *migrateOnly != "" {
		if err := app.runMigration(*migrateOnly); err != nil {
			app.logger.Error("Migration failed", zap.Error(err))
			app.shutdown()
			os.Exit(1)
		}
		app.shutdown()
		return
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance. autoMigrate applies
// pending migrations while connecting.
func NewApplication(configPath string, autoMigrate bool) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "digitizer-service")
	serviceLogger.LogServiceStart(cfg.App.Version,
		zap.String("environment", cfg.App.Environment),
		zap.String("driver", cfg.Digitizer.Driver),
	)

	app := &Application{
		config:      cfg,
		logger:      logger,
		stopCleanup: make(chan struct{}),
		autoMigrate: autoMigrate,
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initializeRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if err := app.initializeDriverRegistry(); err != nil {
		return nil, fmt.Errorf("failed to initialize driver registry: %w", err)
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeDatabase connects to PostgreSQL and applies migrations. A
// disabled database leaves app.database nil.
func (app *Application) initializeDatabase() error {
	if !app.config.Database.Enabled {
		app.logger.Info("Database disabled, capture records kept in memory")
		return nil
	}

	db, err := database.NewConnection(app.config, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	app.database = db

	if app.autoMigrate {
		migrator := database.NewMigrator(db, app.logger, &app.config.Database)
		if err := migrator.Up(); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	app.logger.Info("Database initialized successfully")
	return nil
}

// runMigration executes one migrator command
func (app *Application) runMigration(command string) error {
	if app.database == nil {
		return errors.New("database is disabled")
	}

	migrator := database.NewMigrator(app.database, app.logger, &app.config.Database)
	switch command {
	case "up":
		return migrator.Up()
	case "down":
		return migrator.Down()
	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	}
	return fmt.Errorf("unknown migrate command %q", command)
}

// initializeRepositories creates repository instances
func (app *Application) initializeRepositories() error {
	if app.database != nil {
		app.captureRepo = repository.NewCaptureRepository(app.database, app.logger)
	} else {
		app.captureRepo = repository.NewMemoryCaptureRepository(memoryCaptureCapacity)
	}

	app.logger.Info("Repositories initialized successfully",
		zap.Bool("persistent", app.database != nil),
	)
	return nil
}

// initializeDriverRegistry sets up the digitizer driver registry
func (app *Application) initializeDriverRegistry() error {
	app.driverRegistry = driver.NewRegistry(app.logger)
	driver.RegisterDefaultDrivers(app.driverRegistry, app.logger)

	if !app.driverRegistry.IsSupported(app.config.Digitizer.Driver) {
		return fmt.Errorf("driver %q is not available in this build (have %v)",
			app.config.Digitizer.Driver, app.driverRegistry.ListDrivers())
	}

	app.logger.Info("Driver registry initialized successfully",
		zap.Int("registered_drivers", len(app.driverRegistry.ListDrivers())),
	)
	return nil
}

// initializeServices creates service instances
func (app *Application) initializeServices() error {
	drv, err := app.driverRegistry.CreateDriver(app.config.Digitizer.Driver, app.config.DriverOptions())
	if err != nil {
		return err
	}

	if app.config.Metrics.Enabled {
		app.metrics = metrics.New(nil)
	}

	app.eventBus = handler.NewEventBus(app.logger)
	go app.eventBus.Start()

	app.acquisitionService, err = service.NewAcquisitionService(
		drv,
		app.config.Digitizer.Driver,
		app.captureRepo,
		app.metrics,
		app.eventBus,
		app.config,
		app.logger,
	)
	if err != nil {
		return err
	}

	app.discoveryService = service.NewDiscoveryService(app.driverRegistry, app.config, app.logger)

	app.logger.Info("Services initialized successfully")
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() error {
	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		app.database,
		app.metrics,
		app.eventBus,
		app.acquisitionService,
		app.discoveryService,
	)

	router := routerManager.SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)

	return nil
}

// startBackgroundServices opens the digitizer when configured and starts
// the capture record cleanup
func (app *Application) startBackgroundServices() {
	if app.config.Digitizer.AutoOpen {
		ctx, cancel := context.WithTimeout(context.Background(), app.config.Digitizer.OperationTimeout)
		status, err := app.acquisitionService.Open(ctx, nil)
		cancel()
		if err != nil {
			// The API can retry the open later
			app.logger.Warn("Auto-open failed", zap.Error(err))
		} else {
			app.logger.Info("Digitizer auto-opened",
				zap.String("model", status.Model),
				zap.String("serial", status.Serial),
			)
		}
	}

	if app.config.Database.Retention > 0 {
		go app.startCleanupService()
	}

	app.logger.Info("Background services started")
}

// startCleanupService purges expired capture records every hour
func (app *Application) startCleanupService() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	app.logger.Info("Cleanup service started",
		zap.Duration("retention", app.config.Database.Retention),
	)

	for {
		select {
		case <-app.stopCleanup:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			deleted, err := app.acquisitionService.PurgeCaptures(ctx)
			cancel()
			if err != nil {
				app.logger.Error("Failed to purge capture records", zap.Error(err))
			} else if deleted > 0 {
				app.logger.Info("Purged capture records", zap.Int64("deleted", deleted))
			}
		}
	}
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown stops the server, closes the digitizer and releases resources
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "digitizer-service")
	serviceLogger.LogServiceStop("shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	select {
	case <-app.stopCleanup:
	default:
		close(app.stopCleanup)
	}

	if app.server != nil {
		if err := app.server.Shutdown(ctx); err != nil {
			app.logger.Error("HTTP server shutdown error", zap.Error(err))
		} else {
			app.logger.Info("HTTP server stopped")
		}
	}

	// Closes the unit if it is still open and stops the worker
	if app.acquisitionService != nil {
		app.acquisitionService.Shutdown(ctx)
	}

	if app.eventBus != nil {
		app.eventBus.Stop()
	}

	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("Database close error", zap.Error(err))
		} else {
			app.logger.Info("Database connection closed")
		}
	}

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

// Start serves HTTP until a shutdown signal arrives
func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.startBackgroundServices()

	app.waitForShutdown()

	return nil
}
