package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/invoice-reconciler/internal/config"
	"github.com/invoice-reconciler/internal/data/postgres"
	"github.com/invoice-reconciler/internal/domain/processor"
	"github.com/invoice-reconciler/internal/domain/transaction"
	"github.com/invoice-reconciler/internal/logger"
	"github.com/invoice-reconciler/internal/platform/gateway"
	"github.com/invoice-reconciler/internal/platform/persistence"
	"github.com/invoice-reconciler/internal/webhook_gateway/service"
)

// app holds the collaborators a command needs
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	processors processor.Repository
	gateways   service.GatewayProvider
	ledger     transaction.Ledger
	close      func()
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	configName, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(configName)
	if err != nil {
		return nil, err
	}
	log := logger.NewLogger(cfg)

	db, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return &app{
		cfg:        cfg,
		logger:     log,
		processors: postgres.NewProcessorRepository(log, db),
		gateways:   gateway.NewFactory(log, cfg.Gateway),
		ledger:     postgres.NewTransactionRepository(log, db),
		close:      db.Close,
	}, nil
}
