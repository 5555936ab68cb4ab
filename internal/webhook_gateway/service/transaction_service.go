package service

import (
	"context"
	"log/slog"

	"github.com/invoice-reconciler/internal/domain/notification"
	"github.com/invoice-reconciler/internal/domain/outbox"
	"github.com/invoice-reconciler/internal/domain/transaction"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	ledger        transaction.Ledger
	outboxRepo    outbox.Repository
	notifications notification.Repository
	logger        *slog.Logger
}

// NewTransactionService creates the read service. notifications may be nil
// when no audit store is connected.
func NewTransactionService(
	logger *slog.Logger,
	ledger transaction.Ledger,
	outboxRepo outbox.Repository,
	notifications notification.Repository,
) TransactionService {
	return &TransactionServiceImpl{
		ledger:        ledger,
		outboxRepo:    outboxRepo,
		notifications: notifications,
		logger:        logger,
	}
}

// GetByTrxnID returns ErrTransactionNotFound for unknown ids
func (s *TransactionServiceImpl) GetByTrxnID(ctx context.Context, trxnID string) (*transaction.Transaction, error) {
	return s.ledger.FindByTrxnID(ctx, trxnID)
}

// ListStatusEvents returns the transaction's status changes, oldest first
func (s *TransactionServiceImpl) ListStatusEvents(ctx context.Context, trxnID string) ([]*outbox.Message, error) {
	txn, err := s.ledger.FindByTrxnID(ctx, trxnID)
	if err != nil {
		return nil, err
	}
	return s.outboxRepo.ListByTransactionID(ctx, txn.ID)
}

// ListNotifications returns the webhooks received for the invoice, newest first
func (s *TransactionServiceImpl) ListNotifications(ctx context.Context, trxnID string, limit int64) ([]*notification.Record, error) {
	if s.notifications == nil {
		return nil, ErrNotificationsUnavailable{}
	}
	if _, err := s.ledger.FindByTrxnID(ctx, trxnID); err != nil {
		return nil, err
	}
	return s.notifications.ListByInvoiceID(ctx, trxnID, limit)
}
