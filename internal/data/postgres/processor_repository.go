package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/invoice-reconciler/internal/domain/processor"
	"github.com/invoice-reconciler/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// ProcessorRepository implements processor.Repository for PostgreSQL
type ProcessorRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewProcessorRepository creates a new PostgreSQL processor repository
func NewProcessorRepository(logger *slog.Logger, db *persistence.PostgresDB) processor.Repository {
	return &ProcessorRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// GetByID retrieves a processor's configuration
func (r *ProcessorRepository) GetByID(ctx context.Context, id int64) (*processor.Processor, error) {
	query := `
		SELECT id, name, api_key, key_password, token, site_url, test_site_url, is_test, is_active
		FROM payment_processors
		WHERE id = $1
	`

	var p processor.Processor
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.APIKey,
		&p.KeyPassword,
		&p.Token,
		&p.SiteURL,
		&p.TestSiteURL,
		&p.IsTest,
		&p.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, processor.ErrProcessorNotFound{ProcessorID: id}
		}
		r.logger.Error("Failed to get payment processor", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get payment processor: %w", err)
	}

	return &p, nil
}
