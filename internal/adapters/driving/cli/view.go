package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flightdeck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/flightdeck/internal/adapters/driving/tui"
	"github.com/custodia-labs/flightdeck/internal/core/services"
)

var viewInput string

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse the latest brief and refresh log interactively",
	Long: `Opens a terminal viewer on the last-known-good brief, one section at a
time, and on the recent refresh events.

Press p to preview a fresh brief without delivering or recording it. With
--input the preview reads a fixture payload instead of the live sources.`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func init() {
	viewCmd.Flags().StringVarP(&viewInput, "input", "i", "", "fixture payload used for previews")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, _ []string) error {
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

	pipeline, err := newPipeline(cmd.Context(), settings, nil, viewInput)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{
		Audit:    services.NewAuditService(store.RunLog(), settings.AuditRecentEvents),
		Briefing: pipeline,
	})
	if err != nil {
		return err
	}
	return app.WithContext(cmd.Context()).Run()
}
