package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure source scope, delivery and storage settings.

Settings live in the config file (see --config). Unset keys use defaults.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Long: `Persist one setting. List values are comma-separated.

Examples:
  flightdeck settings set delivery.webhook_url https://hooks.slack.com/services/...
  flightdeck settings set chat.channels_prefix eng-,ops-
  flightdeck settings set delivery.fallback.kind gmail`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, k := range services.KnownKeys() {
			cmd.Println(k)
		}
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n", settingsService.Path())
	cmd.Println()

	cmd.Println("[Chat]")
	cmd.Printf("  Channels: %s\n", describeScope(settings.Chat))
	cmd.Printf("  Lookback: %dh\n", settings.Chat.LookbackHours)
	cmd.Printf("  Export file: %s\n", orNotSet(settings.Chat.ExportFile))
	cmd.Println()

	cmd.Println("[Calendar]")
	cmd.Printf("  Calendar: %s\n", settings.Calendar.CalendarID)
	cmd.Printf("  Lookahead: %dh\n", settings.Calendar.LookaheadHours)
	cmd.Println()

	cmd.Println("[Email]")
	cmd.Printf("  User: %s\n", settings.Email.User)
	cmd.Printf("  Lookback: %dh\n", settings.Email.LookbackHours)
	cmd.Printf("  Query: %s\n", orNotSet(settings.Email.Query))
	cmd.Println()

	cmd.Println("[Identity]")
	cmd.Printf("  Handles: %s\n", orNotSet(strings.Join(settings.Identity.Handles, ", ")))
	cmd.Println()

	cmd.Println("[Brief]")
	cmd.Printf("  Low priority threshold: %d\n", settings.Brief.LowPriorityThreshold)
	cmd.Printf("  Allow empty snapshot: %t\n", settings.Brief.AllowEmptySnapshot)
	cmd.Println()

	cmd.Println("[Delivery]")
	cmd.Printf("  Webhook: %s\n", maskWebhook(settings.Delivery.WebhookURL))
	cmd.Printf("  Timeout: %s\n", settings.Delivery.Timeout)
	cmd.Printf("  Fallback: %s\n", settings.Delivery.Fallback.Kind)
	switch settings.Delivery.Fallback.Kind {
	case domain.FallbackGmail:
		cmd.Printf("  Fallback recipient: %s\n", settings.Delivery.Fallback.Recipient)
	default:
		cmd.Printf("  Outbox: %s\n", settings.Delivery.Fallback.OutboxDir)
	}
	cmd.Printf("  Fallback subject: %s\n", settings.Delivery.Fallback.Subject)
	cmd.Println()

	cmd.Println("[Google]")
	cmd.Printf("  Token file: %s\n", orNotSet(settings.Google.TokenFile))
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data dir: %s\n", settings.Storage.DataDir)
	cmd.Printf("  Retention: %d days\n", settings.Storage.RetentionDays)
	cmd.Println()

	cmd.Println("[Serve]")
	cmd.Printf("  Interval: %s\n", settings.Serve.Interval)
	cmd.Printf("  Metrics: %s\n", orNotSet(settings.Serve.MetricsAddr))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func describeScope(c domain.ChatSettings) string {
	if len(c.ChannelsExact) == 0 && len(c.ChannelsPrefix) == 0 {
		return "all"
	}
	var parts []string
	for _, ch := range c.ChannelsExact {
		parts = append(parts, "#"+domain.NormalizeChannelName(ch))
	}
	for _, p := range c.ChannelsPrefix {
		parts = append(parts, "#"+domain.NormalizeChannelName(p)+"*")
	}
	return strings.Join(parts, ", ")
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskWebhook keeps the scheme and host; the path is a bearer secret.
func maskWebhook(raw string) string {
	if raw == "" {
		return "(not set)"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return maskSecret(raw)
	}
	return u.Scheme + "://" + u.Host + "/" + maskSecret(strings.TrimPrefix(u.Path, "/"))
}

func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
