package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	api "tutorlink-backend/internal/api/http"
	"tutorlink-backend/internal/config"
	"tutorlink-backend/internal/gateway"
	"tutorlink-backend/internal/logger"
	"tutorlink-backend/internal/repository/postgres"
	"tutorlink-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting TutorLink Payment Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Gateway configuration", "base_url", cfg.Gateway.BaseURL, "enforce_signatures", cfg.Gateway.EnforceSignatures)

	// Initialize Database
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

	// Initialize payment gateway client and webhook signature validator
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

	discountService := service.NewDiscountService(
		store.BookingRepository,
		store.DiscountRepository,
		store.UserRepository,
		cfg.Discount.Percentage,
		cfg.Discount.Cooldown(),
	)

	bookingService := service.NewBookingService(
		store.BookingRepository,
		store.UserRepository,
		escrowService,
		notificationService,
		cfg.Escrow.CancellationLeadTime(),
	)

	ledgerService := service.NewLedgerService(store.TransactionRepository)

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

	// Initialize HTTP router
	router := api.NewRouter(bookingService, escrowService, discountService, ledgerService, webhookService)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
