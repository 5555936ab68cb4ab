// Package reconciler brings the local ledger in line with the payment
// gateway. A webhook only tells us which invoice changed; the authoritative
// state is always re-fetched from the gateway before the ledger is touched.
package reconciler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/invoice-reconciler/internal/domain/invoice"
	"github.com/invoice-reconciler/internal/domain/transaction"
)

type rule struct {
	action Action
	target transaction.Status
}

// rules maps every recognized invoice status to its ledger action. Statuses
// mapped to ActionNone never reach the ledger.
var rules = map[invoice.Status]rule{
	invoice.StatusNew:       {action: ActionNone},
	invoice.StatusPaid:      {action: ActionNone},
	invoice.StatusComplete:  {action: ActionNone},
	invoice.StatusConfirmed: {action: ActionMarkCompleted, target: transaction.StatusCompleted},
	invoice.StatusExpired:   {action: ActionMarkCancelled, target: transaction.StatusCancelled},
	invoice.StatusInvalid:   {action: ActionMarkFailed, target: transaction.StatusFailed},
}

// Reconciler applies gateway invoice state to the ledger for one processor
type Reconciler struct {
	gateway invoice.Gateway
	ledger  transaction.Ledger
	logger  *slog.Logger
}

func New(logger *slog.Logger, gateway invoice.Gateway, ledger transaction.Ledger) *Reconciler {
	return &Reconciler{
		gateway: gateway,
		ledger:  ledger,
		logger:  logger,
	}
}

// Reconcile fetches the invoice and applies the ledger transition its status
// calls for. It never retries; safe to call repeatedly for the same invoice.
func (r *Reconciler) Reconcile(ctx context.Context, invoiceID string) (*Result, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return nil, ErrInvalidInvoiceID
	}

	inv, err := r.gateway.FetchInvoice(ctx, invoiceID)
	if err != nil {
		r.logger.Warn("Failed to fetch invoice from gateway", "invoice_id", invoiceID, "error", err)
		return nil, ErrGatewayUnavailable{InvoiceID: invoiceID, Cause: err}
	}
	if inv.ID == "" {
		inv.ID = invoiceID
	}

	r.logger.Debug("Invoice fetched",
		"invoice_id", inv.ID,
		"status", string(inv.Status),
		"exception_status", inv.ExceptionStatus.String(),
		"price", inv.Price.String(),
	)
	if len(inv.DecodeProblems) > 0 {
		r.logger.Warn("Invoice has malformed informational fields",
			"invoice_id", inv.ID,
			"problems", inv.DecodeProblems,
		)
	}

	result := &Result{
		InvoiceID:       inv.ID,
		InvoiceStatus:   inv.Status,
		ExceptionStatus: inv.ExceptionStatus,
		Price:           inv.Price.String(),
		Action:          ActionNone,
		Outcome:         OutcomeNoOp,
	}

	rl, known := rules[inv.Status]
	if !known {
		r.logger.Warn("Unrecognized invoice status", "invoice_id", inv.ID, "status", string(inv.Status))
		result.Outcome = OutcomeUnrecognizedStatus
		return result, nil
	}
	result.Action = rl.action

	if rl.action == ActionNone {
		if inv.Status == invoice.StatusPaid {
			r.logger.Info("Invoice paid, awaiting confirmation", "invoice_id", inv.ID)
		}
		return result, nil
	}

	txn, err := r.ledger.FindByTrxnID(ctx, inv.ID)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			r.logger.Warn("No transaction for invoice", "invoice_id", inv.ID)
			return nil, err
		}
		r.logger.Error("Failed to look up transaction", "invoice_id", inv.ID, "error", err)
		return nil, ErrLedgerUnavailable{InvoiceID: inv.ID, Cause: err}
	}

	result.TransactionID = txn.ID
	result.PreviousStatus = txn.Status
	result.Status = txn.Status

	switch {
	case txn.Status == rl.target:
		result.Outcome = OutcomeAlreadyApplied
		r.logger.Info("Transaction already in target state",
			"invoice_id", inv.ID,
			"transaction_id", txn.ID.String(),
			"status", string(txn.Status),
		)
		return result, nil
	case txn.Status.IsTerminal():
		result.Outcome = OutcomeStaleIgnored
		r.logger.Warn("Ignoring stale invoice status for finalized transaction",
			"invoice_id", inv.ID,
			"transaction_id", txn.ID.String(),
			"invoice_status", string(inv.Status),
			"transaction_status", string(txn.Status),
		)
		return result, nil
	}

	transition, err := r.apply(ctx, rl.action, inv.ID)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			return nil, err
		}
		r.logger.Error("Ledger write failed",
			"invoice_id", inv.ID,
			"transaction_id", txn.ID.String(),
			"action", string(rl.action),
			"error", err,
		)
		return nil, ErrLedgerWriteFailed{InvoiceID: inv.ID, Action: rl.action, Cause: err}
	}

	result.PreviousStatus = transition.From
	result.Status = transition.To
	if transition.Applied {
		result.Outcome = OutcomeApplied
	} else {
		result.Outcome = OutcomeAlreadyApplied
	}

	r.logger.Info("Invoice reconciled",
		"invoice_id", inv.ID,
		"transaction_id", txn.ID.String(),
		"action", string(rl.action),
		"outcome", string(result.Outcome),
	)
	return result, nil
}

func (r *Reconciler) apply(ctx context.Context, action Action, trxnID string) (*transaction.Transition, error) {
	switch action {
	case ActionMarkCompleted:
		return r.ledger.MarkCompleted(ctx, trxnID)
	case ActionMarkCancelled:
		return r.ledger.MarkCancelled(ctx, trxnID)
	case ActionMarkFailed:
		return r.ledger.MarkFailed(ctx, trxnID)
	}
	return nil, errors.New("no ledger operation for action " + string(action))
}
