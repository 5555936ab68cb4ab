// Package postgres provides PostgreSQL implementations of the domain
// repositories: the transaction ledger, processor configuration and the
// transactional outbox.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/invoice-reconciler/internal/domain/outbox"
	"github.com/invoice-reconciler/internal/domain/shared"
	"github.com/invoice-reconciler/internal/domain/transaction"
	"github.com/invoice-reconciler/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const transactionColumns = `id, order_ref, COALESCE(trxn_id, ''), processor_id, amount, currency, description,
		buyer_email, invoice_url, status, created_at, updated_at, finalized_at`

// TransactionRepository implements transaction.Ledger for PostgreSQL.
// Every mutation locks the row, validates the transition against the state
// machine, updates with a status guard and enqueues an outbox event, all in
// one database transaction.
type TransactionRepository struct {
	pool    persistence.Pool
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction ledger
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Ledger {
	return newTransactionRepository(logger, db.Pool())
}

func newTransactionRepository(logger *slog.Logger, pool persistence.Pool) *TransactionRepository {
	return &TransactionRepository{
		pool:    pool,
		querier: pool,
		logger:  logger,
	}
}

// Create stores a new transaction. A repeated order reference yields ErrDuplicateOrderRef.
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, order_ref, trxn_id, processor_id, amount, currency, description,
			buyer_email, invoice_url, status, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.OrderRef,
		txn.TrxnID,
		txn.ProcessorID,
		txn.Amount,
		txn.Currency,
		txn.Description,
		txn.BuyerEmail,
		txn.InvoiceURL,
		txn.Status,
		txn.CreatedAt,
		txn.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return transaction.ErrDuplicateOrderRef{OrderRef: txn.OrderRef}
		}
		r.logger.Error("Failed to create transaction", "order_ref", txn.OrderRef, "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its internal ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.getOne(ctx, r.querier, query, id, id.String())
}

// FindByTrxnID retrieves a transaction by the gateway invoice ID
func (r *TransactionRepository) FindByTrxnID(ctx context.Context, trxnID string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE trxn_id = $1`
	return r.getOne(ctx, r.querier, query, trxnID, trxnID)
}

// FindByOrderRef retrieves a transaction by the merchant order reference
func (r *TransactionRepository) FindByOrderRef(ctx context.Context, orderRef string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE order_ref = $1`
	return r.getOne(ctx, r.querier, query, orderRef, orderRef)
}

// MarkPending attaches the gateway invoice to a created transaction
func (r *TransactionRepository) MarkPending(ctx context.Context, id uuid.UUID, trxnID, invoiceURL string) (*transaction.Transition, error) {
	lock := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	return r.transition(ctx, lock, id, id.String(), transaction.StatusPending, func(txn *transaction.Transaction) {
		txn.TrxnID = trxnID
		txn.InvoiceURL = invoiceURL
	})
}

// MarkCompleted moves the transaction holding trxnID to completed
func (r *TransactionRepository) MarkCompleted(ctx context.Context, trxnID string) (*transaction.Transition, error) {
	return r.finalize(ctx, trxnID, transaction.StatusCompleted)
}

// MarkCancelled moves the transaction holding trxnID to cancelled
func (r *TransactionRepository) MarkCancelled(ctx context.Context, trxnID string) (*transaction.Transition, error) {
	return r.finalize(ctx, trxnID, transaction.StatusCancelled)
}

// MarkFailed moves the transaction holding trxnID to failed
func (r *TransactionRepository) MarkFailed(ctx context.Context, trxnID string) (*transaction.Transition, error) {
	return r.finalize(ctx, trxnID, transaction.StatusFailed)
}

func (r *TransactionRepository) finalize(ctx context.Context, trxnID string, target transaction.Status) (*transaction.Transition, error) {
	lock := `SELECT ` + transactionColumns + ` FROM transactions WHERE trxn_id = $1 FOR UPDATE`
	return r.transition(ctx, lock, trxnID, trxnID, target, nil)
}

// transition applies target to the row selected by lockQuery. Reaching a
// state the row already holds is reported with Applied == false and writes
// nothing.
func (r *TransactionRepository) transition(
	ctx context.Context,
	lockQuery string,
	lockArg any,
	key string,
	target transaction.Status,
	mutate func(txn *transaction.Transaction),
) (*transaction.Transition, error) {
	var result *transaction.Transition

	err := persistence.RunInTx(ctx, r.pool, func(tx pgx.Tx) error {
		txn, err := r.getOne(ctx, tx, lockQuery, lockArg, key)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if txn.Status == target {
			result = &transaction.Transition{
				TransactionID: txn.ID,
				TrxnID:        txn.TrxnID,
				From:          txn.Status,
				To:            target,
				Applied:       false,
				At:            now,
			}
			return nil
		}

		if err := transaction.ValidateTransition(txn.TrxnID, txn.Status, target); err != nil {
			return err
		}

		previous := txn.Status
		if mutate != nil {
			mutate(txn)
		}
		txn.Status = target
		txn.UpdatedAt = now
		if target.IsTerminal() {
			txn.FinalizedAt = &now
		}

		if err := r.update(ctx, tx, txn, previous); err != nil {
			return err
		}

		event := &shared.TransactionStatusEvent{
			EventType:      shared.EventTypeForStatus(string(target)),
			TransactionID:  txn.ID,
			TrxnID:         txn.TrxnID,
			OrderRef:       txn.OrderRef,
			ProcessorID:    txn.ProcessorID,
			PreviousStatus: string(previous),
			Status:         string(target),
			OccurredAt:     now,
		}
		message, err := outbox.NewMessage(event)
		if err != nil {
			return fmt.Errorf("failed to build outbox message: %w", err)
		}
		outboxRepo := &OutboxRepository{querier: tx, logger: r.logger}
		if err := outboxRepo.Create(ctx, message); err != nil {
			return err
		}

		result = &transaction.Transition{
			TransactionID: txn.ID,
			TrxnID:        txn.TrxnID,
			From:          previous,
			To:            target,
			Applied:       true,
			At:            now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Applied {
		r.logger.Info("Transaction status changed",
			"transaction_id", result.TransactionID.String(),
			"trxn_id", result.TrxnID,
			"from", string(result.From),
			"to", string(result.To),
		)
	}
	return result, nil
}

// update writes the new state guarded by the previous status
func (r *TransactionRepository) update(ctx context.Context, q persistence.Querier, txn *transaction.Transaction, previous transaction.Status) error {
	query := `
		UPDATE transactions
		SET status = $1, trxn_id = NULLIF($2, ''), invoice_url = $3, updated_at = $4, finalized_at = $5
		WHERE id = $6 AND status = $7
	`

	result, err := q.Exec(ctx, query,
		txn.Status,
		txn.TrxnID,
		txn.InvoiceURL,
		txn.UpdatedAt,
		txn.FinalizedAt,
		txn.ID,
		previous,
	)
	if err != nil {
		r.logger.Error("Failed to update transaction", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrConcurrentModification{TransactionID: txn.ID}
	}

	return nil
}

func (r *TransactionRepository) getOne(ctx context.Context, q persistence.Querier, query string, arg any, key string) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	err := q.QueryRow(ctx, query, arg).Scan(
		&txn.ID,
		&txn.OrderRef,
		&txn.TrxnID,
		&txn.ProcessorID,
		&txn.Amount,
		&txn.Currency,
		&txn.Description,
		&txn.BuyerEmail,
		&txn.InvoiceURL,
		&txn.Status,
		&txn.CreatedAt,
		&txn.UpdatedAt,
		&txn.FinalizedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{Key: key}
		}
		r.logger.Error("Failed to get transaction", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &txn, nil
}
