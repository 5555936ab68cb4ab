package shared

import (
	"time"

	"github.com/google/uuid"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// EventType names a transaction status change carried through the outbox
type EventType string

const (
	EventTypeTransactionPending   EventType = "transaction.pending"
	EventTypeTransactionCompleted EventType = "transaction.completed"
	EventTypeTransactionCancelled EventType = "transaction.cancelled"
	EventTypeTransactionFailed    EventType = "transaction.failed"
)

// EventTypeForStatus maps a target transaction status to its event type.
// Unknown statuses yield an empty EventType.
func EventTypeForStatus(status string) EventType {
	switch status {
	case "pending":
		return EventTypeTransactionPending
	case "completed":
		return EventTypeTransactionCompleted
	case "cancelled":
		return EventTypeTransactionCancelled
	case "failed":
		return EventTypeTransactionFailed
	}
	return ""
}

// TransactionStatusEvent is published to Kafka for every applied transition
type TransactionStatusEvent struct {
	EventType      EventType `json:"event_type"`
	TransactionID  uuid.UUID `json:"transaction_id"`
	TrxnID         string    `json:"trxn_id"`
	OrderRef       string    `json:"order_ref,omitempty"`
	ProcessorID    int64     `json:"processor_id"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NotificationEvent describes one received gateway webhook and what the
// reconciler did with it
type NotificationEvent struct {
	EventID         uuid.UUID `json:"event_id"`
	ProcessorID     int64     `json:"processor_id"`
	InvoiceID       string    `json:"invoice_id"`
	InvoiceStatus   string    `json:"invoice_status,omitempty"`
	ExceptionStatus string    `json:"exception_status,omitempty"`
	Price           string    `json:"price,omitempty"`
	Outcome         string    `json:"outcome"`
	Error           string    `json:"error,omitempty"`
	RawPayload      string    `json:"raw_payload,omitempty"`
	CorrelationID   string    `json:"correlation_id"`
	ReceivedAt      time.Time `json:"received_at"`
}
