package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/invoice-reconciler/internal/domain/invoice"
	"github.com/invoice-reconciler/internal/domain/notification"
	"github.com/invoice-reconciler/internal/domain/outbox"
	"github.com/invoice-reconciler/internal/domain/processor"
	"github.com/invoice-reconciler/internal/domain/shared"
	"github.com/invoice-reconciler/internal/domain/transaction"
)

type MockProcessorRepository struct {
	mock.Mock
}

func (m *MockProcessorRepository) GetByID(ctx context.Context, id int64) (*processor.Processor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Processor), args.Error(1)
}

type MockGatewayProvider struct {
	mock.Mock
}

func (m *MockGatewayProvider) ForProcessor(p *processor.Processor) (invoice.Gateway, error) {
	args := m.Called(p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(invoice.Gateway), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) FetchInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockGateway) CreateInvoice(ctx context.Context, draft *invoice.Draft) (*invoice.Invoice, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Create(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockLedger) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockLedger) FindByTrxnID(ctx context.Context, trxnID string) (*transaction.Transaction, error) {
	args := m.Called(ctx, trxnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockLedger) FindByOrderRef(ctx context.Context, orderRef string) (*transaction.Transaction, error) {
	args := m.Called(ctx, orderRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockLedger) MarkPending(ctx context.Context, id uuid.UUID, trxnID, invoiceURL string) (*transaction.Transition, error) {
	args := m.Called(ctx, id, trxnID, invoiceURL)
	return transitionOrNil(args)
}

func (m *MockLedger) MarkCompleted(ctx context.Context, trxnID string) (*transaction.Transition, error) {
	return transitionOrNil(m.Called(ctx, trxnID))
}

func (m *MockLedger) MarkCancelled(ctx context.Context, trxnID string) (*transaction.Transition, error) {
	return transitionOrNil(m.Called(ctx, trxnID))
}

func (m *MockLedger) MarkFailed(ctx context.Context, trxnID string) (*transaction.Transition, error) {
	return transitionOrNil(m.Called(ctx, trxnID))
}

func transitionOrNil(args mock.Arguments) (*transaction.Transition, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transition), args.Error(1)
}

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepository) ListByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*outbox.Message, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) WithTx(pgx.Tx) outbox.Repository {
	return m
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, record *notification.Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockNotificationRepository) ListByInvoiceID(ctx context.Context, invoiceID string, limit int64) ([]*notification.Record, error) {
	args := m.Called(ctx, invoiceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Record), args.Error(1)
}

func activeProcessor() *processor.Processor {
	return &processor.Processor{
		ID:          7,
		Name:        "BitPay",
		KeyPassword: "secret",
		Token:       "pairing-token",
		IsTest:      true,
		IsActive:    true,
	}
}
