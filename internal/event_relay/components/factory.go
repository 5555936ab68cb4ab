package components

import (
	"log/slog"

	"github.com/invoice-reconciler/internal/config"
	"github.com/invoice-reconciler/internal/domain/notification"
	"github.com/invoice-reconciler/internal/domain/outbox"
	"github.com/invoice-reconciler/internal/event_relay/outbox_poller"
	"github.com/invoice-reconciler/internal/event_relay/service"
	"github.com/invoice-reconciler/internal/platform/messaging/producers"
)

// CreateRecordingService builds the audit service behind a worker pool. If the
// pool cannot be created the plain audit service is returned.
func CreateRecordingService(
	notificationRepo notification.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.RecordingService {
	baseService := service.NewAuditService(notificationRepo, logger.With("component", "audit"))

	workerPoolService, err := service.NewWorkerPoolRecordingService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool recording service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}

// CreateOutboxPoller wires the status publisher into a poller
func CreateOutboxPoller(
	outboxRepo outbox.Repository,
	publisher producers.MessagePublisher,
	logger *slog.Logger,
	cfg *config.Config,
) *outbox_poller.Poller {
	pollerLogger := logger.With("component", "outbox_poller")
	statusPublisher := outbox_poller.NewStatusPublisher(outboxRepo, publisher, pollerLogger)
	return outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, statusPublisher, pollerLogger)
}
