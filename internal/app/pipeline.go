package app

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/ga4diag/internal/access"
	"github.com/blackwell-systems/ga4diag/internal/config"
	"github.com/blackwell-systems/ga4diag/internal/ga4"
	"github.com/blackwell-systems/ga4diag/internal/output"
	"github.com/blackwell-systems/ga4diag/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// newPipeline builds the access gate and Data API client from cfg and wires
// them into a report pipeline. reg and log may be nil.
func newPipeline(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, log *zap.Logger) (*report.Pipeline, error) {
	if log == nil {
		log = zap.NewNop()
	}
	table, err := cfg.TokenTable()
	if err != nil {
		return nil, err
	}
	gate := access.NewGate(table, cfg.Auth.SharedSecret)

	switch gate.Mode() {
	case access.ModeOpen:
		log.Warn("no authorization table or shared secret configured; every property is open")
	default:
		log.Info("access gate ready", zap.String("mode", string(gate.Mode())), zap.Int("tenants", gate.Tenants()))
	}

	client, err := ga4.New(ctx, cfg.Analytics, reg, log)
	if err != nil {
		return nil, fmt.Errorf("connecting to analytics: %w", err)
	}
	return report.NewPipeline(client, gate, cfg), nil
}

// loadPipeline loads config from --config and builds a pipeline for a
// one-shot CLI command.
func loadPipeline(ctx context.Context) (*config.Config, *report.Pipeline, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Output.Color {
		output.SetNoColor(true)
	}
	p, err := newPipeline(ctx, cfg, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p, nil
}
