package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/invoice-reconciler/internal/config"
	"github.com/invoice-reconciler/internal/domain/processor"
)

func processorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "processor",
		Short: "Inspect payment processor configuration",
	}
	cmd.AddCommand(processorCheckCmd())
	return cmd
}

func processorCheckCmd() *cobra.Command {
	var processorID int64

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report configuration problems and the gateway a processor talks to",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			return runProcessorCheck(ctx, cmd.OutOrStdout(), a.processors, a.cfg.Gateway, processorID)
		},
	}

	cmd.Flags().Int64Var(&processorID, "processor-id", 0, "Payment processor id")
	_ = cmd.MarkFlagRequired("processor-id")

	return cmd
}

// runProcessorCheck prints the processor's mode, gateway and notification
// settings. It returns the configuration error, if any, after printing.
func runProcessorCheck(ctx context.Context, out io.Writer, processors processor.Repository, gw config.GatewayConfig, processorID int64) error {
	p, err := processors.GetByID(ctx, processorID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Processor %d (%s)\n", p.ID, p.Name)
	fmt.Fprintf(out, "  Mode:     %s\n", p.Mode())
	fmt.Fprintf(out, "  Active:   %t\n", p.IsActive)
	fmt.Fprintf(out, "  Gateway:  %s\n", p.BaseURL(gw.LiveBaseURL, gw.TestBaseURL))

	if err := p.CheckConfig(); err != nil {
		fmt.Fprintln(out, "  Config:   INVALID")
		return err
	}
	fmt.Fprintln(out, "  Config:   OK")
	return nil
}
