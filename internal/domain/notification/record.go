// Package notification keeps an audit trail of gateway webhook deliveries.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoice-reconciler/internal/domain/shared"
)

// Record is the stored form of a received webhook
type Record struct {
	EventID         uuid.UUID `bson:"event_id" json:"event_id"`
	ProcessorID     int64     `bson:"processor_id" json:"processor_id"`
	InvoiceID       string    `bson:"invoice_id" json:"invoice_id"`
	InvoiceStatus   string    `bson:"invoice_status,omitempty" json:"invoice_status,omitempty"`
	ExceptionStatus string    `bson:"exception_status,omitempty" json:"exception_status,omitempty"`
	Price           string    `bson:"price,omitempty" json:"price,omitempty"`
	Outcome         string    `bson:"outcome" json:"outcome"`
	Error           string    `bson:"error,omitempty" json:"error,omitempty"`
	RawPayload      string    `bson:"raw_payload,omitempty" json:"raw_payload,omitempty"`
	CorrelationID   string    `bson:"correlation_id" json:"correlation_id"`
	ReceivedAt      time.Time `bson:"received_at" json:"received_at"`
	RecordedAt      time.Time `bson:"recorded_at" json:"recorded_at"`
}

// FromEvent converts a notification event into a record stamped with recordedAt
func FromEvent(e *shared.NotificationEvent, recordedAt time.Time) *Record {
	return &Record{
		EventID:         e.EventID,
		ProcessorID:     e.ProcessorID,
		InvoiceID:       e.InvoiceID,
		InvoiceStatus:   e.InvoiceStatus,
		ExceptionStatus: e.ExceptionStatus,
		Price:           e.Price,
		Outcome:         e.Outcome,
		Error:           e.Error,
		RawPayload:      e.RawPayload,
		CorrelationID:   e.CorrelationID,
		ReceivedAt:      e.ReceivedAt,
		RecordedAt:      recordedAt,
	}
}

// Repository stores notification records
type Repository interface {
	// Create inserts a record. Re-inserting an EventID returns ErrDuplicateRecord.
	Create(ctx context.Context, record *Record) error
	ListByInvoiceID(ctx context.Context, invoiceID string, limit int64) ([]*Record, error)
}

// ErrDuplicateRecord indicates the event was already recorded
type ErrDuplicateRecord struct {
	EventID uuid.UUID
}

func (e ErrDuplicateRecord) Error() string {
	return "notification already recorded: " + e.EventID.String()
}
