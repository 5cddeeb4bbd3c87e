// Package app contains the Cobra command tree for ga4diag.
package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/ga4diag/internal/output"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagFormat  string
	flagConfig  string
	flagToken   string
)

var rootCmd = &cobra.Command{
	Use:   "ga4diag",
	Short: "Diagnostics over Google Analytics 4 properties",
	Long: `ga4diag answers three questions about a GA4 property: which pages
under- or over-perform (page diagnostics), where sessions come from (traffic
breakdown) and how traffic moves day by day (time series).

Reports are served over HTTP (serve), over an MCP stdio server (mcp), or
printed directly (pages, traffic, timeseries, overview).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagNoColor || !isatty.IsTerminal(os.Stdout.Fd()) {
			output.SetNoColor(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("ga4diag", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  serve       Serve the report API over HTTP")
		fmt.Println("  pages       Page diagnostics for a property")
		fmt.Println("  traffic     Sessions by traffic source")
		fmt.Println("  timeseries  Daily trend, optionally for matching pages")
		fmt.Println("  overview    All three reports at once")
		fmt.Println("  fields      Show which dimensions and metrics a property resolves to")
		fmt.Println("  mcp         Run an MCP stdio server")
		fmt.Println("  audit       List recorded access decisions")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/ga4diag/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "table", "Output format: table, json, csv or yaml")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", os.Getenv("GA4DIAG_TOKEN"), "Credential checked against the authorization table (default: $GA4DIAG_TOKEN)")
}
