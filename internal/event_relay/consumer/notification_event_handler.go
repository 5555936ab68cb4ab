package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/invoice-reconciler/internal/domain/shared"
	"github.com/invoice-reconciler/internal/event_relay/service"
	"github.com/invoice-reconciler/internal/platform/messaging/producers"
)

// NotificationEventHandler handles notification audit events from Kafka
type NotificationEventHandler struct {
	recordingService service.RecordingService
	producer         producers.DeadLetterPublisher
	logger           *slog.Logger
}

func NewNotificationEventHandler(
	logger *slog.Logger,
	recordingService service.RecordingService,
	producer producers.DeadLetterPublisher,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		recordingService: recordingService,
		producer:         producer,
		logger:           logger,
	}
}

// HandleMessage decodes and records one event. Undecodable events go to the
// DLQ; a recording failure is returned so the offset is not committed.
func (h *NotificationEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.NotificationEvent
	if err := decodeEvent(value, &event); err != nil {
		return h.deadLetter(ctx, key, value, err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received notification event",
		"event_id", event.EventID.String(),
		"invoice_id", event.InvoiceID,
		"processor_id", event.ProcessorID,
		"outcome", event.Outcome,
	)

	if err := h.recordingService.Record(ctx, &event); err != nil {
		logger.Error("Failed to record notification event",
			"event_id", event.EventID.String(),
			"invoice_id", event.InvoiceID,
			"error", err,
		)
		return fmt.Errorf("recording notification %s failed: %w", event.EventID.String(), err)
	}

	return nil
}

func decodeEvent(value []byte, event *shared.NotificationEvent) error {
	if err := json.Unmarshal(value, event); err != nil {
		return err
	}
	if event.EventID == uuid.Nil {
		return errors.New("event_id is missing")
	}
	if event.InvoiceID == "" {
		return errors.New("invoice_id is missing")
	}
	return nil
}

func (h *NotificationEventHandler) deadLetter(ctx context.Context, key, value []byte, cause error) error {
	const msg = "Failed to decode notification event from Kafka message"
	h.logger.Error(msg, "error", cause, "message_key", string(key))

	if h.producer != nil {
		reason := fmt.Sprintf("%s: %s", msg, cause.Error())
		dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason)
		if dlqErr == nil {
			h.logger.Info("Published undecodable message to DLQ", "message_key", string(key), "reason", reason)
			return nil
		}
		if !errors.Is(dlqErr, producers.ErrDLQDisabled) {
			h.logger.Error("Failed to publish message to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
			return fmt.Errorf("failed to decode message value: %w", cause)
		}
	}

	// Redelivery cannot fix a malformed payload; drop it once logged.
	h.logger.Warn("No DLQ configured, dropping undecodable message", "message_key", string(key))
	return nil
}
