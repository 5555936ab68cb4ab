package reconciler

import (
	"github.com/google/uuid"

	"github.com/invoice-reconciler/internal/domain/invoice"
	"github.com/invoice-reconciler/internal/domain/transaction"
)

// Action is the ledger operation an invoice status maps to
type Action string

const (
	ActionNone          Action = "none"
	ActionMarkCompleted Action = "mark_completed"
	ActionMarkCancelled Action = "mark_cancelled"
	ActionMarkFailed    Action = "mark_failed"
)

// Outcome describes what reconciliation did
type Outcome string

const (
	OutcomeNoOp               Outcome = "no_op"
	OutcomeApplied            Outcome = "applied"
	OutcomeAlreadyApplied     Outcome = "already_applied"
	OutcomeStaleIgnored       Outcome = "stale_ignored"
	OutcomeUnrecognizedStatus Outcome = "unrecognized_status"
)

// Result is the outcome of one Reconcile call. TransactionID, PreviousStatus
// and Status are only set when a transaction was looked up.
type Result struct {
	InvoiceID       string                  `json:"invoice_id"`
	InvoiceStatus   invoice.Status          `json:"invoice_status"`
	ExceptionStatus invoice.ExceptionStatus `json:"exception_status"`
	Price           string                  `json:"price,omitempty"`
	Action          Action                  `json:"action"`
	Outcome         Outcome                 `json:"outcome"`
	TransactionID   uuid.UUID               `json:"transaction_id,omitempty"`
	PreviousStatus  transaction.Status      `json:"previous_status,omitempty"`
	Status          transaction.Status      `json:"status,omitempty"`
}

// NoOp reports whether the ledger was left untouched
func (r *Result) NoOp() bool {
	return r.Outcome != OutcomeApplied
}
