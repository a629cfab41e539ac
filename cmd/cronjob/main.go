package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"tutorlink-backend/internal/config"
	"tutorlink-backend/internal/gateway"
	"tutorlink-backend/internal/jobs"
	"tutorlink-backend/internal/logger"
	"tutorlink-backend/internal/repository/postgres"
	"tutorlink-backend/internal/scheduler"
	"tutorlink-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'sweep-escrows', 'reconcile-payments', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting TutorLink Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize payment gateway client
	gatewayClient := gateway.NewHTTPClient(
		cfg.Gateway.BaseURL,
		cfg.Gateway.AccessToken,
		time.Duration(cfg.Gateway.TimeoutSeconds)*time.Second,
	)
	signatureValidator := gateway.NewSignatureValidator(cfg.Gateway.WebhookSecret)

	// Initialize Services
	notificationService := service.NewNotificationService(
		cfg.SendGrid.APIKey,
		cfg.SendGrid.FromEmail,
		cfg.SendGrid.FromName,
	)

	escrowService := service.NewEscrowService(
		store.BookingRepository,
		store.TransactionRepository,
		store.UserRepository,
		notificationService,
		cfg.Escrow.ConfirmationWindow(),
	)

	webhookService := service.NewWebhookService(
		store.BookingRepository,
		store.TransactionRepository,
		store.UserRepository,
		escrowService,
		gatewayClient,
		signatureValidator,
		notificationService,
		cfg.Commission,
		cfg.Gateway.EnforceSignatures,
	)

	jobRunner := jobs.NewJobRunner(db, store, &jobs.Services{
		Escrow:  escrowService,
		Webhook: webhookService,
	}, cfg)

	// Run a single job and exit if requested
	if *runOnce != "" {
		runSingleJob(jobRunner, *runOnce)
		return
	}

	// Start the scheduler
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
}

func runSingleJob(jobRunner *jobs.JobRunner, name string) {
	switch name {
	case "sweep-escrows":
		jobRunner.SweepExpiredEscrows()
	case "reconcile-payments":
		jobRunner.ReconcilePendingPayments()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", name)
		os.Exit(1)
	}
}
