// Package transaction models the local ledger record of a payment and the
// state machine that governs its lifecycle.
package transaction

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a local transaction
type Status string

const (
	StatusCreated   Status = "created"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// legalTransitions lists, for every state, the states it may move to.
// Terminal states map to an empty set.
var legalTransitions = map[Status]map[Status]struct{}{
	StatusCreated: {
		StatusPending:   {},
		StatusCancelled: {},
		StatusFailed:    {},
	},
	StatusPending: {
		StatusCompleted: {},
		StatusCancelled: {},
		StatusFailed:    {},
	},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusFailed:    {},
}

// IsValid reports whether s is a known state
func (s Status) IsValid() bool {
	_, ok := legalTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed from s
func (s Status) IsTerminal() bool {
	next, ok := legalTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether moving from s to next is legal
func (s Status) CanTransitionTo(next Status) bool {
	allowed, ok := legalTransitions[s]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

// Predecessors returns every state from which target can be reached
func Predecessors(target Status) []Status {
	var from []Status
	for _, s := range []Status{StatusCreated, StatusPending, StatusCompleted, StatusCancelled, StatusFailed} {
		if s.CanTransitionTo(target) {
			from = append(from, s)
		}
	}
	return from
}

// ValidateTransition returns ErrIllegalTransition when from -> to is not allowed
func ValidateTransition(trxnID string, from, to Status) error {
	if !from.CanTransitionTo(to) {
		return ErrIllegalTransition{TrxnID: trxnID, From: from, To: to}
	}
	return nil
}

// Transaction is the ledger's record of a single payment. TrxnID holds the
// gateway's invoice id once the invoice has been created.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	OrderRef    string          `json:"order_ref"`
	TrxnID      string          `json:"trxn_id,omitempty"`
	ProcessorID int64           `json:"processor_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
	BuyerEmail  string          `json:"buyer_email,omitempty"`
	InvoiceURL  string          `json:"invoice_url,omitempty"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	FinalizedAt *time.Time      `json:"finalized_at,omitempty"`
}

// NewTransaction creates a transaction in the created state
func NewTransaction(orderRef string, processorID int64, amount decimal.Decimal, currency, description, buyerEmail string) (*Transaction, error) {
	if strings.TrimSpace(orderRef) == "" {
		return nil, ErrInvalidTransaction{Reason: "order reference is required"}
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidTransaction{Reason: "amount must be positive"}
	}
	if len(currency) != 3 {
		return nil, ErrInvalidTransaction{Reason: "currency must be a 3-letter code"}
	}
	if processorID <= 0 {
		return nil, ErrInvalidTransaction{Reason: "processor id is required"}
	}

	now := time.Now().UTC()
	return &Transaction{
		ID:          uuid.New(),
		OrderRef:    orderRef,
		ProcessorID: processorID,
		Amount:      amount,
		Currency:    strings.ToUpper(currency),
		Description: description,
		BuyerEmail:  buyerEmail,
		Status:      StatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Transition records the effect of a ledger mutation. Applied is false when
// the transaction already was in the target state.
type Transition struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	TrxnID        string    `json:"trxn_id"`
	From          Status    `json:"from"`
	To            Status    `json:"to"`
	Applied       bool      `json:"applied"`
	At            time.Time `json:"at"`
}
