package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/invoice-reconciler/internal/domain/processor"
	"github.com/invoice-reconciler/internal/domain/shared"
	"github.com/invoice-reconciler/internal/domain/transaction"
	"github.com/invoice-reconciler/internal/platform/messaging/producers"
	"github.com/invoice-reconciler/internal/reconciler"
)

// WebhookServiceImpl implements the WebhookService interface
type WebhookServiceImpl struct {
	processors processor.Repository
	gateways   GatewayProvider
	ledger     transaction.Ledger
	audit      producers.MessagePublisher
	logger     *slog.Logger
}

// NewWebhookService creates the webhook service. audit may be nil, in which
// case no notification events are published.
func NewWebhookService(
	logger *slog.Logger,
	processors processor.Repository,
	gateways GatewayProvider,
	ledger transaction.Ledger,
	audit producers.MessagePublisher,
) WebhookService {
	return &WebhookServiceImpl{
		processors: processors,
		gateways:   gateways,
		ledger:     ledger,
		audit:      audit,
		logger:     logger,
	}
}

func (s *WebhookServiceImpl) HandleNotification(ctx context.Context, n *Notification) (*reconciler.Result, error) {
	receivedAt := time.Now().UTC()
	logger := s.logger.With("processor_id", n.ProcessorID, "invoice_id", n.InvoiceID)
	if n.CorrelationID != "" {
		logger = logger.With("correlation_id", n.CorrelationID)
	}

	p, err := processor.Resolve(ctx, s.processors, n.ProcessorID)
	if err != nil {
		logger.Warn("Rejected notification for unusable processor", "error", err)
		return nil, err
	}

	gw, err := s.gateways.ForProcessor(p)
	if err != nil {
		logger.Error("Failed to build gateway client", "error", err)
		return nil, processor.ErrMisconfigured{ProcessorID: p.ID, Problems: []string{err.Error()}}
	}

	result, recErr := reconciler.New(logger, gw, s.ledger).Reconcile(ctx, n.InvoiceID)
	s.publishAudit(ctx, logger, n, result, recErr, receivedAt)
	return result, recErr
}

// publishAudit emits the notification event. Failures are logged only; the
// webhook response does not depend on the audit trail.
func (s *WebhookServiceImpl) publishAudit(
	ctx context.Context,
	logger *slog.Logger,
	n *Notification,
	result *reconciler.Result,
	recErr error,
	receivedAt time.Time,
) {
	if s.audit == nil {
		return
	}

	event := &shared.NotificationEvent{
		EventID:       uuid.New(),
		ProcessorID:   n.ProcessorID,
		InvoiceID:     n.InvoiceID,
		RawPayload:    string(n.RawPayload),
		CorrelationID: n.CorrelationID,
		ReceivedAt:    receivedAt,
	}
	if result != nil {
		event.InvoiceStatus = string(result.InvoiceStatus)
		event.ExceptionStatus = result.ExceptionStatus.String()
		event.Price = result.Price
		event.Outcome = string(result.Outcome)
	}
	if recErr != nil {
		event.Outcome = "error"
		event.Error = recErr.Error()
	}

	if err := s.audit.Publish(ctx, n.InvoiceID, event); err != nil {
		logger.Warn("Failed to publish notification audit event", "event_id", event.EventID.String(), "error", err)
	}
}
