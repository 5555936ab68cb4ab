package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/invoice-reconciler/internal/config"
	"github.com/invoice-reconciler/internal/data/mongo"
	"github.com/invoice-reconciler/internal/data/postgres"
	"github.com/invoice-reconciler/internal/domain/notification"
	"github.com/invoice-reconciler/internal/logger"
	"github.com/invoice-reconciler/internal/platform/gateway"
	"github.com/invoice-reconciler/internal/platform/messaging/producers"
	"github.com/invoice-reconciler/internal/platform/persistence"
	"github.com/invoice-reconciler/internal/webhook_gateway"
	"github.com/invoice-reconciler/internal/webhook_gateway/service"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("webhook_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Webhook Gateway",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"public_url", cfg.Application.PublicURL,
	)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// The audit store only backs the notification history endpoint, so the
	// gateway keeps serving webhooks without it.
	var notifications notification.Repository
	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Warn("MongoDB unavailable, notification history disabled", "error", err)
	} else {
		notifications = mongo.NewNotificationRepository(log, mongoDB.Database())
	}

	auditPublisher, err := producers.NewTopicPublisher(appCtx, log, &cfg.Kafka, cfg.Kafka.NotificationTopic, producers.PublisherOptions{Async: true})
	if err != nil {
		log.Error("Failed to initialize notification event publisher", "error", err)
		os.Exit(1)
	}

	processorRepo := postgres.NewProcessorRepository(log, postgresDB)
	ledger := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	gateways := gateway.NewFactory(log, cfg.Gateway)

	webhookService := service.NewWebhookService(log, processorRepo, gateways, ledger, auditPublisher)
	invoiceService := service.NewInvoiceService(log, processorRepo, gateways, ledger, cfg.Application.PublicURL)
	transactionService := service.NewTransactionService(log, ledger, outboxRepo, notifications)

	server := webhook_gateway.NewServer(log, cfg, webhookService, invoiceService, transactionService)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Drain HTTP first so in-flight webhooks can still reach the ledger
	var shutdownErr error
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}

	if err := auditPublisher.Close(); err != nil {
		log.Error("Error closing notification event publisher", "error", err)
		shutdownErr = err
	}

	postgresDB.Close()

	if mongoDB != nil {
		if err := mongoDB.Close(shutdownCtx); err != nil {
			log.Error("Error closing MongoDB connection", "error", err)
			shutdownErr = err
		}
	}

	if serverErr != nil || shutdownErr != nil {
		log.Error("Server shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}
