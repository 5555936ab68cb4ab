package gateway

import (
	"log/slog"

	"github.com/invoice-reconciler/internal/config"
	"github.com/invoice-reconciler/internal/domain/invoice"
	"github.com/invoice-reconciler/internal/domain/processor"
)

// Factory builds per-processor gateway clients from shared settings
type Factory struct {
	cfg    config.GatewayConfig
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger, cfg config.GatewayConfig) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// ForProcessor returns a client bound to the processor's mode, host and token
func (f *Factory) ForProcessor(p *processor.Processor) (invoice.Gateway, error) {
	baseURL := p.BaseURL(f.cfg.LiveBaseURL, f.cfg.TestBaseURL)
	client, err := New(baseURL, p.Token,
		WithTimeout(f.cfg.Timeout),
		WithRetryCount(f.cfg.RetryCount),
		WithRetryWaitTime(f.cfg.RetryWaitTime),
		WithAPIVersion(f.cfg.APIVersion),
		WithUserAgent(f.cfg.UserAgent),
		WithIdentity(p.APIKey),
		WithLogger(f.logger.With("processor_id", p.ID, "mode", p.Mode())),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}
