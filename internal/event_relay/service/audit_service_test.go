package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoice-reconciler/internal/domain/notification"
	"github.com/invoice-reconciler/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNotificationRepository mocks notification.Repository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, record *notification.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByInvoiceID(ctx context.Context, invoiceID string, limit int64) ([]*notification.Record, error) {
	args := m.Called(ctx, invoiceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Record), args.Error(1)
}

func sampleEvent() *shared.NotificationEvent {
	return &shared.NotificationEvent{
		EventID:       uuid.New(),
		ProcessorID:   7,
		InvoiceID:     "inv-123",
		InvoiceStatus: "CONFIRMED",
		Price:         "12.50",
		Outcome:       "applied",
		CorrelationID: "corr-1",
		ReceivedAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestAuditService_Record(t *testing.T) {
	fixedNow := time.Date(2024, 3, 1, 10, 0, 5, 0, time.UTC)

	tests := []struct {
		name        string
		event       *shared.NotificationEvent
		setupMocks  func(repo *MockNotificationRepository, event *shared.NotificationEvent)
		expectError string
	}{
		{
			name:  "stores record",
			event: sampleEvent(),
			setupMocks: func(repo *MockNotificationRepository, event *shared.NotificationEvent) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(r *notification.Record) bool {
					return r.EventID == event.EventID &&
						r.InvoiceID == "inv-123" &&
						r.Outcome == "applied" &&
						r.RecordedAt.Equal(fixedNow)
				})).Return(nil).Once()
			},
		},
		{
			name:  "duplicate is success",
			event: sampleEvent(),
			setupMocks: func(repo *MockNotificationRepository, event *shared.NotificationEvent) {
				repo.On("Create", mock.Anything, mock.Anything).
					Return(notification.ErrDuplicateRecord{EventID: event.EventID}).Once()
			},
		},
		{
			name:  "repository failure",
			event: sampleEvent(),
			setupMocks: func(repo *MockNotificationRepository, _ *shared.NotificationEvent) {
				repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("mongo down")).Once()
			},
			expectError: "failed to record notification",
		},
		{
			name: "missing invoice id",
			event: func() *shared.NotificationEvent {
				e := sampleEvent()
				e.InvoiceID = ""
				return e
			}(),
			setupMocks:  func(*MockNotificationRepository, *shared.NotificationEvent) {},
			expectError: "has no invoice id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockNotificationRepository{}
			tt.setupMocks(repo, tt.event)

			svc := NewAuditService(repo, slog.Default())
			svc.now = func() time.Time { return fixedNow }

			err := svc.Record(context.Background(), tt.event)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuditService_Record_NilEvent(t *testing.T) {
	svc := NewAuditService(&MockNotificationRepository{}, slog.Default())
	assert.Error(t, svc.Record(context.Background(), nil))
}
