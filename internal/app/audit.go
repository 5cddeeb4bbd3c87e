package app

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/blackwell-systems/ga4diag/internal/audit"
	"github.com/blackwell-systems/ga4diag/internal/config"
	"github.com/blackwell-systems/ga4diag/internal/output"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	auditLimit    int
	auditProperty string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List recorded access decisions",
	Long: `Show the most recent access decisions recorded by 'ga4diag serve' when
audit.enabled is set, with totals per outcome. Credentials appear only as a
short SHA-256 fingerprint.`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Number of recent decisions to show (0 = all)")
	auditCmd.Flags().StringVarP(&auditProperty, "property", "p", "", "Only show decisions for this property")
	rootCmd.AddCommand(auditCmd)
}

type auditSummary struct {
	Counts    map[string]int   `json:"counts"`
	Decisions []audit.Decision `json:"decisions"`
}

func runAudit(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := audit.Open(cfg.Audit.DBPath)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer func() { _ = db.Close() }()

	var decisions []audit.Decision
	if auditProperty != "" {
		decisions, err = db.ForProperty(auditProperty, auditLimit)
	} else {
		decisions, err = db.Recent(auditLimit)
	}
	if err != nil {
		return fmt.Errorf("reading decisions: %w", err)
	}
	counts, err := db.Counts()
	if err != nil {
		return fmt.Errorf("counting decisions: %w", err)
	}
	if decisions == nil {
		decisions = []audit.Decision{}
	}
	return writeAudit(cmd.OutOrStdout(), auditSummary{Counts: counts, Decisions: decisions}, format)
}

func writeAudit(w io.Writer, s auditSummary, format output.Format) error {
	switch format {
	case output.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case output.FormatYAML:
		data, err := output.YAML(s)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case output.FormatCSV:
		return output.ErrCSVUnsupported
	}

	fmt.Fprintln(w, output.Section("Access decisions"))
	outcomes := make([]string, 0, len(s.Counts))
	for o := range s.Counts {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)
	for _, o := range outcomes {
		fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render(o), outcomeStyle(o).Render(strconv.Itoa(s.Counts[o])))
	}
	if len(s.Decisions) == 0 {
		fmt.Fprintf(w, "\n %s\n", output.StyleMuted.Render("no decisions recorded"))
		return nil
	}
	fmt.Fprintln(w)

	tbl := output.NewTable("time", "report", "property", "credential", "outcome")
	for _, d := range s.Decisions {
		tbl.AddRow(
			d.DecidedAt.Local().Format("2006-01-02 15:04:05"),
			d.Report,
			d.PropertyID,
			d.CredentialFP,
			outcomeStyle(d.Outcome).Render(d.Outcome),
		)
	}
	_, err := io.WriteString(w, tbl.Render())
	return err
}

func outcomeStyle(outcome string) lipgloss.Style {
	if outcome == audit.OutcomeAllowed {
		return output.StyleSuccess
	}
	return output.StyleError
}
