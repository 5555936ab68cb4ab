package transaction

import (
	"context"

	"github.com/google/uuid"
)

// Ledger stores transactions and applies their state transitions.
// Mutations are idempotent: moving a transaction into the state it already
// holds succeeds with Transition.Applied == false. Moving out of a terminal
// state fails with ErrIllegalTransition.
type Ledger interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByTrxnID(ctx context.Context, trxnID string) (*Transaction, error)
	FindByOrderRef(ctx context.Context, orderRef string) (*Transaction, error)

	// MarkPending attaches the gateway invoice to a created transaction
	MarkPending(ctx context.Context, id uuid.UUID, trxnID, invoiceURL string) (*Transition, error)
	MarkCompleted(ctx context.Context, trxnID string) (*Transition, error)
	MarkCancelled(ctx context.Context, trxnID string) (*Transition, error)
	MarkFailed(ctx context.Context, trxnID string) (*Transition, error)
}

// ErrTransactionNotFound indicates no transaction matches the lookup key
type ErrTransactionNotFound struct {
	Key string
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.Key
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	// An empty key matches any ErrTransactionNotFound
	if t.Key == "" {
		return true
	}
	return e.Key == t.Key
}

// ErrIllegalTransition indicates a transition the state machine forbids
type ErrIllegalTransition struct {
	TrxnID string
	From   Status
	To     Status
}

func (e ErrIllegalTransition) Error() string {
	return "illegal transition for transaction " + e.TrxnID + ": " + string(e.From) + " -> " + string(e.To)
}

// Is implements the errors.Is interface for ErrIllegalTransition
func (e ErrIllegalTransition) Is(target error) bool {
	t, ok := target.(ErrIllegalTransition)
	if !ok {
		return false
	}
	return t.TrxnID == "" || t.TrxnID == e.TrxnID
}

// ErrDuplicateOrderRef indicates a transaction with the same order reference exists
type ErrDuplicateOrderRef struct {
	OrderRef string
}

func (e ErrDuplicateOrderRef) Error() string {
	return "transaction with order reference already exists: " + e.OrderRef
}

// ErrConcurrentModification indicates the row changed between lock and update
type ErrConcurrentModification struct {
	TransactionID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for transaction: " + e.TransactionID.String()
}

// ErrInvalidTransaction indicates a transaction failed construction checks
type ErrInvalidTransaction struct {
	Reason string
}

func (e ErrInvalidTransaction) Error() string {
	return "invalid transaction: " + e.Reason
}
