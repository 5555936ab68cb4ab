package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/invoice-reconciler/internal/domain/notification"
	"github.com/invoice-reconciler/internal/domain/shared"
)

// AuditService writes notification events to the notification repository
type AuditService struct {
	repo   notification.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewAuditService(repo notification.Repository, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Record stores the event. Redelivered events that were already stored are
// treated as success so the consumer can commit them.
func (s *AuditService) Record(ctx context.Context, event *shared.NotificationEvent) error {
	if event == nil {
		return errors.New("notification event is required")
	}
	if event.InvoiceID == "" {
		return fmt.Errorf("notification event %s has no invoice id", event.EventID)
	}

	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	record := notification.FromEvent(event, s.now())
	if err := s.repo.Create(ctx, record); err != nil {
		var dup notification.ErrDuplicateRecord
		if errors.As(err, &dup) {
			logger.Info("Notification already recorded, skipping",
				"event_id", event.EventID.String(),
				"invoice_id", event.InvoiceID,
			)
			return nil
		}
		return fmt.Errorf("failed to record notification %s: %w", event.EventID, err)
	}

	logger.Info("Recorded notification",
		"event_id", event.EventID.String(),
		"invoice_id", event.InvoiceID,
		"processor_id", event.ProcessorID,
		"outcome", event.Outcome,
	)
	return nil
}
