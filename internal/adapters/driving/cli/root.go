// Package cli implements the flightdeck command line.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flightdeck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
	"github.com/custodia-labs/flightdeck/internal/core/services"
	"github.com/custodia-labs/flightdeck/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	configPath string
	verbose    bool
)

// Services shared by the commands. Tests replace them before Execute.
var (
	configStore     driven.ConfigStore
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "flightdeck",
	Short: "Daily flight deck briefing",
	Long: `flightdeck pulls chat, calendar and email activity, ranks what needs
attention, and posts a six-section daily brief to a chat webhook, falling
back to email or an outbox file when the webhook is unavailable.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ~/.flightdeck/config.toml; .yaml/.yml also accepted)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
}

// Execute runs the root command with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// setup opens the config store unless a test already installed services.
func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if settingsService != nil {
		return nil
	}

	var (
		store *file.ConfigStore
		err   error
	)
	if configPath != "" {
		store, err = file.OpenConfigStore(configPath)
	} else {
		store, err = file.NewConfigStore("")
	}
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = store
	settingsService = services.NewSettingsService(store)
	return nil
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}
