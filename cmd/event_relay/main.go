package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/invoice-reconciler/internal/config"
	"github.com/invoice-reconciler/internal/data/mongo"
	"github.com/invoice-reconciler/internal/data/postgres"
	"github.com/invoice-reconciler/internal/event_relay/components"
	"github.com/invoice-reconciler/internal/event_relay/consumer"
	"github.com/invoice-reconciler/internal/event_relay/service"
	"github.com/invoice-reconciler/internal/logger"
	"github.com/invoice-reconciler/internal/platform/messaging/consumers"
	"github.com/invoice-reconciler/internal/platform/messaging/producers"
	"github.com/invoice-reconciler/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("event_relay")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Event Relay",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	notificationRepo := mongo.NewNotificationRepository(log, mongoDB.Database())
	if err := notificationRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure notification indexes", "error", err)
		os.Exit(1)
	}

	statusPublisher, err := producers.NewTopicPublisher(appCtx, log, &cfg.Kafka, cfg.Kafka.StatusTopic, producers.PublisherOptions{RequireAll: true})
	if err != nil {
		log.Error("Failed to initialize status event publisher", "error", err)
		os.Exit(1)
	}

	// dlqProducer is nil when no DLQ topic is configured; the handler copes with that.
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka, cfg.Kafka.NotificationTopic)

	recordingService := components.CreateRecordingService(notificationRepo, log, cfg)
	notificationHandler := consumer.NewNotificationEventHandler(log, recordingService, dlqProducer)
	poller := components.CreateOutboxPoller(outboxRepo, statusPublisher, log, cfg)

	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	if err := kafkaConsumer.Subscribe(appCtx, notificationHandler.HandleMessage); err != nil {
		errChan <- fmt.Errorf("kafka consumer error: %w", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		<-kafkaConsumer.Done()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if wpService, ok := recordingService.(*service.WorkerPoolRecordingService); ok {
		wpService.Shutdown()
	}

	var closeErr error
	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
		closeErr = err
	}
	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
		closeErr = err
	}
	if err := statusPublisher.Close(); err != nil {
		log.Error("Error closing status event publisher", "error", err)
		closeErr = err
	}

	postgresDB.Close()

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		closeErr = err
	}

	if serviceErr != nil || closeErr != nil {
		log.Error("Event Relay shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Event Relay shutdown completed successfully")
}
