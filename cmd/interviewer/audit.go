package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/interviewer/pkg/audit"
	"mercator-hq/interviewer/pkg/audit/retention"
	"mercator-hq/interviewer/pkg/audit/storage"
	"mercator-hq/interviewer/pkg/cli"
	"mercator-hq/interviewer/pkg/config"
)

var auditFlags struct {
	since   time.Duration
	outcome string
	limit   int
	format  string
	days    int
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and prune relay audit records",
	Long: `Audit records describe each relay request: fragment counts, outcome and
timing. They never contain conversation text.`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit records, newest first",
	Long: `List audit records from the configured backend.

Examples:
  # Failures in the last day
  interviewer audit list --since 24h --outcome provider_error

  # Export as CSV
  interviewer audit list --limit 1000 --format csv > audit.csv`,
	RunE: runAuditList,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit records past the retention period",
	Long: `Delete records older than audit.retention.days, or --days when given.

Examples:
  interviewer audit prune
  interviewer audit prune --days 7`,
	RunE: runAuditPrune,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd, auditPruneCmd)

	auditListCmd.Flags().DurationVar(&auditFlags.since, "since", 0, "only records started within this duration (e.g. 24h)")
	auditListCmd.Flags().StringVar(&auditFlags.outcome, "outcome", "", "filter by outcome: completed, provider_error, client_disconnected")
	auditListCmd.Flags().IntVar(&auditFlags.limit, "limit", 50, "maximum number of records")
	auditListCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json, csv")

	auditPruneCmd.Flags().IntVar(&auditFlags.days, "days", 0, "override retention days")
}

// recordList renders audit records as a table.
type recordList []*audit.Record

func (l recordList) Table() cli.Table {
	t := cli.Table{Header: []string{"STARTED", "REQUEST_ID", "MODEL", "TURNS", "EVENTS", "SKIPPED", "OUTCOME", "DURATION", "ERROR"}}
	for _, r := range l {
		t.Rows = append(t.Rows, []string{
			r.StartedAt.UTC().Format(time.RFC3339),
			r.RequestID,
			r.Model,
			strconv.Itoa(r.Turns),
			strconv.Itoa(r.Events),
			strconv.Itoa(r.Skipped),
			string(r.Outcome),
			r.Duration.Round(time.Millisecond).String(),
			r.ErrorKind,
		})
	}
	return t
}

func openAuditStorage() (*config.Config, audit.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Audit.Backend == "memory" {
		return nil, nil, cli.NewConfigError("audit.backend", "the memory backend is not persistent; nothing to inspect", nil)
	}
	store, err := storage.New(cfg.Audit)
	if err != nil {
		return nil, nil, cli.NewConfigError("audit", "failed to open audit storage", err)
	}
	return cfg, store, nil
}

func runAuditList(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(auditFlags.format))
	if err != nil {
		return cli.NewConfigError("format", err.Error(), nil)
	}

	q := audit.Query{Outcome: audit.Outcome(auditFlags.outcome), Limit: auditFlags.limit}
	switch q.Outcome {
	case "", audit.OutcomeCompleted, audit.OutcomeProviderError, audit.OutcomeClientDisconnected:
	default:
		return cli.NewConfigError("outcome", fmt.Sprintf("unknown outcome %q", auditFlags.outcome), nil)
	}
	if auditFlags.since > 0 {
		q.Since = time.Now().Add(-auditFlags.since)
	}

	_, store, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Query(cmd.Context(), q)
	if err != nil {
		return cli.NewCommandError("audit list", err)
	}
	return formatter.FormatTo(cmd.OutOrStdout(), recordList(records))
}

func runAuditPrune(cmd *cobra.Command, args []string) error {
	cfg, store, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	days := cfg.Audit.Retention.Days
	if auditFlags.days > 0 {
		days = auditFlags.days
	}
	if days <= 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Retention is unlimited; nothing to prune")
		return nil
	}

	pruner := retention.NewPruner(store, days)
	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d records started before %s\n", deleted, pruner.Cutoff().UTC().Format(time.RFC3339))
	return nil
}
