package service

import (
	"context"

	"github.com/invoice-reconciler/internal/domain/shared"
)

// RecordingService persists notification events to the audit trail.
type RecordingService interface {
	Record(ctx context.Context, event *shared.NotificationEvent) error
}
