package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flightdeck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
	"github.com/custodia-labs/flightdeck/internal/core/services"
)

var (
	auditLimit int
	auditJSON  bool
	auditBrief bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect recent refresh events",
	Long: `Shows the most recent refresh events with per-source counts, the run
that produced the last-known-good brief, and any problems worth checking.

Use --brief to print the last-known-good brief instead.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 0, "number of events to inspect (default audit.recent_events)")
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "output the audit report as JSON")
	auditCmd.Flags().BoolVar(&auditBrief, "brief", false, "print the last-known-good brief")
	rootCmd.AddCommand(auditCmd)
}

// auditService is built per invocation; tests may replace it.
var auditService driving.AuditService

func runAudit(cmd *cobra.Command, _ []string) error {
	svc := auditService
	if svc == nil {
		if err := requireSettings(); err != nil {
			return err
		}
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		store, err := sqlite.NewStore(settings.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening refresh log: %w", err)
		}
		defer store.Close()
		svc = services.NewAuditService(store.RunLog(), settings.AuditRecentEvents)
	}

	if auditBrief {
		brief, err := svc.LatestBrief(cmd.Context())
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Println("No brief has been delivered yet.")
			return nil
		}
		if err != nil {
			return err
		}
		cmd.Print(brief.Text)
		return nil
	}

	report, err := svc.Audit(cmd.Context(), auditLimit)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}
	if auditJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	outputAuditTable(cmd, report)
	return nil
}

func outputAuditTable(cmd *cobra.Command, report *driving.AuditReport) {
	if len(report.Recent) == 0 {
		cmd.Println("No refresh events recorded.")
	}
	for i := range report.Recent {
		e := &report.Recent[i]
		cmd.Printf("%s  %s  %s  %s\n",
			e.CompletedAt.Local().Format(time.DateTime),
			shortRunID(e.RunID),
			statusStyle(e.Status).Render(fmt.Sprintf("%-19s", e.Status)),
			e.Trigger)
		for _, src := range domain.AllSources() {
			c := e.Counts[src]
			cmd.Printf("    %-8s raw=%d in_scope=%d actionable=%d\n", src, c.Raw, c.InScope, c.Actionable)
		}
	}
	cmd.Println()

	if report.LastGoodRunID != "" {
		cmd.Printf("Last-known-good brief: %s\n", report.LastGoodRunID)
	}
	if len(report.Findings) == 0 {
		cmd.Println("No findings.")
		return
	}
	cmd.Println("Findings:")
	for _, f := range report.Findings {
		cmd.Printf("  - %s\n", f)
	}
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
