package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flightdeck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
)

var (
	runInput      string
	runOutput     string
	runDryRun     bool
	runAllowEmpty bool
	runQuiet      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build and deliver today's brief",
	Long: `Fetches chat, calendar and email, ranks the items and renders the
six-section brief. The brief is posted to the webhook, or to the configured
fallback when the webhook fails, and the run is recorded in the refresh log.

Use --input to read a fixture payload instead of the live sources, and
--dry-run to print the brief without delivering or recording it.`,
	Args: cobra.NoArgs,
	RunE: runBrief,
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "read a fixture payload JSON file instead of live sources")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "write the brief to this file instead of stdout")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "render only; skip delivery and the refresh log")
	runCmd.Flags().BoolVar(&runAllowEmpty, "allow-empty", false, "render even when every source returned zero rows")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "do not print the status summary")
	rootCmd.AddCommand(runCmd)
}

func runBrief(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	var runLog driven.RunLog
	if !runDryRun {
		store, err := sqlite.NewStore(settings.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening refresh log: %w", err)
		}
		defer store.Close()
		runLog = store.RunLog()
	}

	pipeline, err := newPipeline(cmd.Context(), settings, runLog, runInput)
	if err != nil {
		return err
	}

	report, runErr := pipeline.Run(cmd.Context(), driving.RunOptions{
		Trigger:      domain.TriggerManual,
		AllowEmpty:   runAllowEmpty,
		SkipDelivery: runDryRun,
	})
	if report == nil {
		return runErr
	}

	if report.Brief != nil {
		if err := writeBrief(cmd, report.Brief.Text); err != nil {
			return errors.Join(runErr, err)
		}
	}
	if !runQuiet {
		fmt.Fprintln(cmd.ErrOrStderr(), renderSummary(&report.Event, report.Brief))
	}
	return runErr
}

func writeBrief(cmd *cobra.Command, text string) error {
	if runOutput == "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}
	if err := os.WriteFile(runOutput, []byte(text), 0o600); err != nil {
		return fmt.Errorf("writing brief: %w", err)
	}
	return nil
}
