package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/ga4diag/internal/config"
	"github.com/blackwell-systems/ga4diag/internal/logging"
	"github.com/blackwell-systems/ga4diag/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server",
	Long: `Start a Model Context Protocol stdio server. Every tool call is checked
against the authorization table using --token (or $GA4DIAG_TOKEN). Tools:

  page_diagnostics      Per-page metrics, medians and diagnoses
  traffic_breakdown     Sessions by traffic source
  time_series           Daily trend, optionally for matching pages
  permitted_properties  Properties the token may query

Example MCP configuration:
  {"mcpServers":{"ga4diag":{"command":"ga4diag","args":["mcp"],"env":{"GA4DIAG_TOKEN":"..."}}}}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	p, err := newPipeline(cmd.Context(), cfg, nil, log)
	if err != nil {
		return err
	}
	srv := mcp.NewServer(p, flagToken, appVersion, log)
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
