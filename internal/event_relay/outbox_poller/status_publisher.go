package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/invoice-reconciler/internal/domain/outbox"
	"github.com/invoice-reconciler/internal/domain/shared"
	"github.com/invoice-reconciler/internal/platform/messaging/producers"
)

// StatusPublisher delivers one outbox message to the status topic
type StatusPublisher interface {
	PublishStatus(ctx context.Context, message *outbox.Message) error
}

// StatusPublisherImpl publishes transaction status events through Kafka
type StatusPublisherImpl struct {
	outboxRepo outbox.Repository
	publisher  producers.MessagePublisher
	logger     *slog.Logger
}

func NewStatusPublisher(
	outboxRepo outbox.Repository,
	publisher producers.MessagePublisher,
	logger *slog.Logger,
) StatusPublisher {
	return &StatusPublisherImpl{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// PublishStatus publishes the event keyed by transaction id and marks the
// message PROCESSED. A payload that cannot be decoded is marked
// FAILED_TO_PUBLISH immediately.
func (p *StatusPublisherImpl) PublishStatus(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetStatusEvent()
	if err != nil {
		p.logger.Error("Failed to unmarshal status event from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger.With(
		"outbox_id", message.ID,
		"transaction_id", event.TransactionID.String(),
		"event_type", event.EventType,
	)

	if err := p.publisher.Publish(ctx, event.TransactionID.String(), event); err != nil {
		logger.Error("Failed to publish status event", "error", err)
		return fmt.Errorf("failed to publish status event for outbox %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED", "error", err)
		return fmt.Errorf("status event for %s published, but failed to mark outbox %d as PROCESSED: %w", event.TransactionID, message.ID, err)
	}

	logger.Info("Published transaction status event",
		"trxn_id", event.TrxnID,
		"previous_status", event.PreviousStatus,
		"status", event.Status,
	)
	return nil
}
