// Package mongo provides the MongoDB audit store for gateway notifications.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/invoice-reconciler/internal/domain/notification"
)

const (
	// NotificationCollectionName is the name of the notification audit collection in MongoDB
	NotificationCollectionName = "invoice_notifications"
)

// NotificationRepository implements the notification.Repository interface for MongoDB
type NotificationRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewNotificationRepository creates a new MongoDB notification repository
func NewNotificationRepository(logger *slog.Logger, db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique event index and the invoice lookup index
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(NotificationCollectionName)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "invoice_id", Value: 1}, {Key: "received_at", Value: -1}},
		},
	})
	if err != nil {
		r.logger.Error("Failed to create notification indexes", "error", err)
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}

	return nil
}

// Create stores a notification record. A repeated event yields ErrDuplicateRecord.
func (r *NotificationRepository) Create(ctx context.Context, record *notification.Record) error {
	collection := r.db.Collection(NotificationCollectionName)

	_, err := collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return notification.ErrDuplicateRecord{EventID: record.EventID}
		}
		r.logger.Error("Failed to create notification record",
			"event_id", record.EventID.String(),
			"invoice_id", record.InvoiceID,
			"error", err)
		return fmt.Errorf("failed to create notification record: %w", err)
	}

	return nil
}

// ListByInvoiceID returns the most recent notifications received for an invoice
func (r *NotificationRepository) ListByInvoiceID(ctx context.Context, invoiceID string, limit int64) ([]*notification.Record, error) {
	collection := r.db.Collection(NotificationCollectionName)

	filter := bson.M{"invoice_id": invoiceID}
	opts := options.Find().
		SetSort(bson.M{"received_at": -1}).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list notification records",
			"invoice_id", invoiceID,
			"error", err)
		return nil, fmt.Errorf("failed to list notification records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*notification.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode notification records",
			"invoice_id", invoiceID,
			"error", err)
		return nil, fmt.Errorf("failed to decode notification records: %w", err)
	}

	return records, nil
}
