package service

import (
	"context"
	"log/slog"

	"github.com/invoice-reconciler/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolRecordingService bounds concurrent audit writes with an ants pool
type WorkerPoolRecordingService struct {
	baseService RecordingService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolRecordingService(
	baseService RecordingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolRecordingService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolRecordingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Record submits the event to the pool and waits for the write to finish.
func (s *WorkerPoolRecordingService) Record(ctx context.Context, event *shared.NotificationEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Debug("Submitting notification to worker pool",
		"event_id", event.EventID.String(),
		"invoice_id", event.InvoiceID,
	)

	resultChan := make(chan error, 1)
	eventCopy := *event

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.Record(ctx, &eventCopy)
	})
	if err != nil {
		logger.Error("Failed to submit notification to worker pool",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return err
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown releases the pool.
func (s *WorkerPoolRecordingService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func (s *WorkerPoolRecordingService) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolRecordingService) Capacity() int {
	return s.pool.Cap()
}
