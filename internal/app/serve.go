package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackwell-systems/ga4diag/internal/audit"
	"github.com/blackwell-systems/ga4diag/internal/config"
	"github.com/blackwell-systems/ga4diag/internal/logging"
	"github.com/blackwell-systems/ga4diag/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report API over HTTP",
	Long: `Serve the three reports over HTTP until interrupted:

  GET|POST /api/pages        page diagnostics (add format=csv for CSV)
  GET|POST /api/traffic      sessions by traffic source
  GET|POST /api/timeseries   daily trend
  GET      /api/properties   properties the caller may query
  GET      /api/fields       field resolution for one property
  GET      /healthz          liveness
  GET      /metrics          Prometheus metrics

Callers authenticate with X-API-Key, Authorization: Bearer, or ?key=.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	p, err := newPipeline(ctx, cfg, reg, log)
	if err != nil {
		return err
	}

	if cfg.Audit.Enabled {
		db, err := audit.Open(cfg.Audit.DBPath)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer func() { _ = db.Close() }()
		p.OnDecision = audit.Recorder(db, log)
		log.Info("recording access decisions", zap.String("path", cfg.Audit.DBPath))
	}

	return server.New(p, reg, log).Run(ctx, cfg.Server)
}
