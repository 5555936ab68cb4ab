package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/invoice-reconciler/internal/domain/processor"
	"github.com/invoice-reconciler/internal/domain/transaction"
	"github.com/invoice-reconciler/internal/webhook_gateway/service"
)

func reconcileCmd() *cobra.Command {
	var (
		processorID int64
		invoiceID   string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-fetch an invoice and apply its status to the ledger",
		Long: `Runs the same path as a received webhook: the invoice is fetched from
the gateway with the processor's credentials and the matching transaction
is moved to the state the gateway reports.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			return runReconcile(ctx, cmd.OutOrStdout(), a.logger, a.processors, a.gateways, a.ledger, processorID, invoiceID)
		},
	}

	cmd.Flags().Int64Var(&processorID, "processor-id", 0, "Payment processor id")
	cmd.Flags().StringVar(&invoiceID, "invoice-id", "", "Gateway invoice id")
	_ = cmd.MarkFlagRequired("processor-id")
	_ = cmd.MarkFlagRequired("invoice-id")

	return cmd
}

func runReconcile(
	ctx context.Context,
	out io.Writer,
	logger *slog.Logger,
	processors processor.Repository,
	gateways service.GatewayProvider,
	ledger transaction.Ledger,
	processorID int64,
	invoiceID string,
) error {
	if processorID <= 0 {
		return fmt.Errorf("--processor-id must be a positive integer")
	}
	if invoiceID == "" {
		return fmt.Errorf("--invoice-id is required")
	}

	svc := service.NewWebhookService(logger, processors, gateways, ledger, nil)
	result, err := svc.HandleNotification(ctx, &service.Notification{
		ProcessorID: processorID,
		InvoiceID:   invoiceID,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
