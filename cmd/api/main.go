package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meera-jewels/retail-api/docs"
	"github.com/meera-jewels/retail-api/internal/auth"
	"github.com/meera-jewels/retail-api/internal/config"
	"github.com/meera-jewels/retail-api/internal/database"
	"github.com/meera-jewels/retail-api/internal/datawarehouse"
	"github.com/meera-jewels/retail-api/internal/events"
	"github.com/meera-jewels/retail-api/internal/http/handler"
	"github.com/meera-jewels/retail-api/internal/http/middleware"
	"github.com/meera-jewels/retail-api/internal/http/router"
	"github.com/meera-jewels/retail-api/internal/jobs"
	"github.com/meera-jewels/retail-api/internal/logger"
	"github.com/meera-jewels/retail-api/internal/repository"
	"github.com/meera-jewels/retail-api/internal/service"
	"github.com/meera-jewels/retail-api/internal/storage"
	"go.uber.org/zap"
)

// @title Meera Jewels Retail API
// @version 1.0
// @description Retail operations API for the showroom sales pipeline: leads, floor dashboards and end-of-day sales reports

// @contact.name API Support
// @contact.email it@meerajewels.in

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Operator bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "retail-api-staging.meerajewels.in"
	case "production":
		docs.SwaggerInfo.Host = "retail-api.meerajewels.in"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize the report CSV archive
	archive, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Report archive initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize finance warehouse connection (optional, for the nightly
	// rollup sync). The API runs fine without it.
	var warehouse *datawarehouse.Client
	if cfg.DataWarehouse.Enabled {
		warehouse, err = datawarehouse.NewClient(&cfg.DataWarehouse, log)
		if err != nil {
			log.Warn("Finance warehouse connection failed, continuing without it",
				zap.Error(err),
			)
		} else if warehouse != nil {
			log.Info("Finance warehouse connected",
				zap.Int("query_timeout_seconds", cfg.DataWarehouse.QueryTimeout),
			)
		}
	} else {
		log.Info("Finance warehouse not configured, skipping")
	}

	// Change notification bus
	bus := events.NewBus(log)
	defer func() { _ = bus.Close() }()

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	teamRepo := repository.NewTeamMemberRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Initialize services
	leadService := service.NewLeadService(leadRepo, productRepo, teamRepo, bus, log)
	assignmentService := service.NewAssignmentService(leadRepo, teamRepo, bus, log)
	reportService := service.NewReportService(reportRepo, leadRepo, teamRepo, bus, log)
	reportService.SetArchive(archive)
	dashboardService := service.NewDashboardService(leadRepo, log)
	productService := service.NewProductService(productRepo, log)
	customerService := service.NewCustomerService(customerRepo, log)
	teamService := service.NewTeamService(teamRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	leadHandler := handler.NewLeadHandler(leadService, assignmentService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	reportHandler := handler.NewReportHandler(reportService, log)
	productHandler := handler.NewProductHandler(productService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	teamHandler := handler.NewTeamHandler(teamService, assignmentService, log)
	eventsHandler := handler.NewEventsHandler(bus, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		leadHandler,
		dashboardHandler,
		reportHandler,
		productHandler,
		customerHandler,
		teamHandler,
		eventsHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterReportJob(
			scheduler,
			reportService,
			cfg.App.Floors,
			log,
			cfg.Jobs.ReportSchedule,
			5*time.Minute,
		); err != nil {
			log.Error("Failed to register daily report job", zap.Error(err))
		}

		if warehouse != nil {
			if err := jobs.RegisterWarehouseSyncJob(
				scheduler,
				reportRepo,
				warehouse,
				cfg.App.Floors,
				log,
				cfg.Jobs.WarehouseSyncSchedule,
				cfg.DataWarehouse.QueryTimeoutDuration(),
			); err != nil {
				log.Error("Failed to register warehouse sync job", zap.Error(err))
			}
		}

		scheduler.Start()
		log.Info("Scheduler started",
			zap.Strings("jobs", scheduler.GetJobNames()),
			zap.String("report_schedule", cfg.Jobs.ReportSchedule),
		)
	} else {
		log.Info("Scheduled jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close warehouse connection if initialized
		if warehouse != nil {
			if err := warehouse.Close(); err != nil {
				log.Warn("Error closing warehouse connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
