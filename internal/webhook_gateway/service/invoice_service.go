package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/invoice-reconciler/internal/domain/invoice"
	"github.com/invoice-reconciler/internal/domain/processor"
	"github.com/invoice-reconciler/internal/domain/transaction"
)

// InvoiceServiceImpl implements the InvoiceService interface
type InvoiceServiceImpl struct {
	processors processor.Repository
	gateways   GatewayProvider
	ledger     transaction.Ledger
	publicURL  string
	logger     *slog.Logger
}

// NewInvoiceService creates the invoice service. publicURL is the externally
// reachable base of this service; notification URLs are derived from it.
func NewInvoiceService(
	logger *slog.Logger,
	processors processor.Repository,
	gateways GatewayProvider,
	ledger transaction.Ledger,
	publicURL string,
) InvoiceService {
	return &InvoiceServiceImpl{
		processors: processors,
		gateways:   gateways,
		ledger:     ledger,
		publicURL:  publicURL,
		logger:     logger,
	}
}

func (s *InvoiceServiceImpl) CreateInvoice(ctx context.Context, in *CreateInvoiceInput) (*transaction.Transaction, error) {
	logger := s.logger.With("processor_id", in.ProcessorID, "order_ref", in.OrderRef)

	p, err := processor.Resolve(ctx, s.processors, in.ProcessorID)
	if err != nil {
		return nil, err
	}

	gw, err := s.gateways.ForProcessor(p)
	if err != nil {
		return nil, processor.ErrMisconfigured{ProcessorID: p.ID, Problems: []string{err.Error()}}
	}

	notificationURL, err := p.NotificationURL(s.publicURL)
	if err != nil {
		return nil, processor.ErrMisconfigured{ProcessorID: p.ID, Problems: []string{err.Error()}}
	}

	txn, err := transaction.NewTransaction(in.OrderRef, p.ID, in.Amount, in.Currency, in.Description, in.BuyerEmail)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Create(ctx, txn); err != nil {
		var duplicate transaction.ErrDuplicateOrderRef
		if !errors.As(err, &duplicate) {
			return nil, err
		}
		// A previous attempt may have stopped before the gateway issued an
		// invoice. That row is still created and can be retried.
		existing, lookupErr := s.retryableTransaction(ctx, txn)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing == nil {
			return nil, err
		}
		logger.Info("Retrying invoice creation for unsent transaction", "transaction_id", existing.ID.String())
		txn = existing
	}

	draft := &invoice.Draft{
		Buyer: invoice.Buyer{Email: in.BuyerEmail},
		Item: invoice.Item{
			Code:        in.ItemCode,
			Description: in.Description,
			Price:       txn.Amount,
		},
		Currency:        txn.Currency,
		OrderID:         txn.OrderRef,
		NotificationURL: notificationURL,
		RedirectURL:     in.RedirectURL,
	}

	inv, err := gw.CreateInvoice(ctx, draft)
	if err != nil {
		logger.Error("Gateway failed to create invoice", "transaction_id", txn.ID.String(), "error", err)
		return nil, ErrInvoiceCreationFailed{OrderRef: txn.OrderRef, Cause: err}
	}

	change, err := s.ledger.MarkPending(ctx, txn.ID, inv.ID, inv.URL)
	if err != nil {
		logger.Error("Failed to attach invoice to transaction",
			"transaction_id", txn.ID.String(),
			"trxn_id", inv.ID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to mark transaction %s pending: %w", txn.ID, err)
	}

	if !change.Applied {
		// Another request attached its invoice first
		logger.Warn("Transaction already has an invoice",
			"transaction_id", txn.ID.String(),
			"discarded_trxn_id", inv.ID,
		)
		return nil, transaction.ErrDuplicateOrderRef{OrderRef: txn.OrderRef}
	}

	txn.TrxnID = inv.ID
	txn.InvoiceURL = inv.URL
	txn.Status = change.To
	txn.UpdatedAt = time.Now().UTC()

	logger.Info("Created invoice",
		"transaction_id", txn.ID.String(),
		"trxn_id", txn.TrxnID,
		"mode", p.Mode(),
	)
	return txn, nil
}

// retryableTransaction returns the stored transaction for draft's order
// reference when it never reached the gateway and describes the same
// payment. It returns nil when the order reference is taken for good.
func (s *InvoiceServiceImpl) retryableTransaction(ctx context.Context, draft *transaction.Transaction) (*transaction.Transaction, error) {
	existing, err := s.ledger.FindByOrderRef(ctx, draft.OrderRef)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load transaction for order %s: %w", draft.OrderRef, err)
	}
	if existing.Status != transaction.StatusCreated ||
		existing.ProcessorID != draft.ProcessorID ||
		existing.Currency != draft.Currency ||
		!existing.Amount.Equal(draft.Amount) {
		return nil, nil
	}
	return existing, nil
}
