package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvAllowEmptySnapshot overrides brief.allow_empty_snapshot when truthy.
const EnvAllowEmptySnapshot = "FLIGHT_DECK_ALLOW_EMPTY_SNAPSHOT"

// Config keys for settings storage.
const (
	keyChatExact         = "chat.channels_exact"
	keyChatPrefix        = "chat.channels_prefix"
	keyChatLookback      = "chat.lookback_hours"
	keyChatExportFile    = "chat.export_file"
	keyEmailLookback     = "email.lookback_hours"
	keyEmailUser         = "email.user"
	keyEmailQuery        = "email.query"
	keyCalendarLookahead = "calendar.lookahead_hours"
	keyCalendarID        = "calendar.calendar_id"
	keyLowPriority       = "brief.low_priority_threshold"
	keyAllowEmpty        = "brief.allow_empty_snapshot"
	keyWebhookURL        = "delivery.webhook_url"
	keyDeliveryTimeout   = "delivery.timeout_seconds"
	keyFallbackKind      = "delivery.fallback.kind"
	keyFallbackRecipient = "delivery.fallback.recipient"
	keyFallbackSubject   = "delivery.fallback.subject"
	keyFallbackOutbox    = "delivery.fallback.outbox_dir"
	keyGoogleToken       = "google.token_file"
	keyIdentityHandles   = "identity.handles"
	keyDataDir           = "storage.data_dir"
	keyRetentionDays     = "storage.retention_days"
	keyAuditRecent       = "audit.recent_events"
	keyServeInterval     = "serve.interval_minutes"
	keyMetricsAddr       = "serve.metrics_addr"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
	kindList
)

var knownKeys = map[string]keyKind{
	keyChatExact:         kindList,
	keyChatPrefix:        kindList,
	keyChatLookback:      kindInt,
	keyChatExportFile:    kindString,
	keyEmailLookback:     kindInt,
	keyEmailUser:         kindString,
	keyEmailQuery:        kindString,
	keyCalendarLookahead: kindInt,
	keyCalendarID:        kindString,
	keyLowPriority:       kindInt,
	keyAllowEmpty:        kindBool,
	keyWebhookURL:        kindString,
	keyDeliveryTimeout:   kindInt,
	keyFallbackKind:      kindString,
	keyFallbackRecipient: kindString,
	keyFallbackSubject:   kindString,
	keyFallbackOutbox:    kindString,
	keyGoogleToken:       kindString,
	keyIdentityHandles:   kindList,
	keyDataDir:           kindString,
	keyRetentionDays:     kindInt,
	keyAuditRecent:       kindInt,
	keyServeInterval:     kindInt,
	keyMetricsAddr:       kindString,
}

// KnownKeys returns every settable key in sorted order.
func KnownKeys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService resolves configuration into domain.Settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
	homeDir     func() (string, error)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
		homeDir:     os.UserHomeDir,
	}
}

// Path returns the backing configuration file.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Get retrieves current settings, falling back to defaults for unset keys.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		Chat: domain.ChatSettings{
			ChannelsExact:  s.configStore.GetStringSlice(keyChatExact),
			ChannelsPrefix: s.configStore.GetStringSlice(keyChatPrefix),
			LookbackHours:  s.getInt(keyChatLookback, d.Chat.LookbackHours),
			ExportFile:     s.expand(s.configStore.GetString(keyChatExportFile)),
		},
		Email: domain.EmailSettings{
			LookbackHours: s.getInt(keyEmailLookback, d.Email.LookbackHours),
			User:          s.getString(keyEmailUser, d.Email.User),
			Query:         s.configStore.GetString(keyEmailQuery),
		},
		Calendar: domain.CalendarSettings{
			LookaheadHours: s.getInt(keyCalendarLookahead, d.Calendar.LookaheadHours),
			CalendarID:     s.getString(keyCalendarID, d.Calendar.CalendarID),
		},
		Brief: domain.BriefSettings{
			LowPriorityThreshold: s.getInt(keyLowPriority, d.Brief.LowPriorityThreshold),
			AllowEmptySnapshot:   s.getBool(keyAllowEmpty, d.Brief.AllowEmptySnapshot),
		},
		Delivery: domain.DeliverySettings{
			WebhookURL: s.configStore.GetString(keyWebhookURL),
			Timeout:    time.Duration(s.getInt(keyDeliveryTimeout, int(d.Delivery.Timeout/time.Second))) * time.Second,
			Fallback: domain.FallbackSettings{
				Kind:      s.getFallbackKind(d.Delivery.Fallback.Kind),
				Recipient: s.configStore.GetString(keyFallbackRecipient),
				Subject:   s.getString(keyFallbackSubject, d.Delivery.Fallback.Subject),
				OutboxDir: s.expand(s.configStore.GetString(keyFallbackOutbox)),
			},
		},
		Google: domain.GoogleSettings{
			TokenFile: s.expand(s.configStore.GetString(keyGoogleToken)),
		},
		Identity: domain.IdentitySettings{
			Handles: s.configStore.GetStringSlice(keyIdentityHandles),
		},
		Storage: domain.StorageSettings{
			DataDir:       s.expand(s.configStore.GetString(keyDataDir)),
			RetentionDays: s.getInt(keyRetentionDays, d.Storage.RetentionDays),
		},
		Serve: domain.ServeSettings{
			Interval:    time.Duration(s.getInt(keyServeInterval, int(d.Serve.Interval/time.Minute))) * time.Minute,
			MetricsAddr: s.getString(keyMetricsAddr, d.Serve.MetricsAddr),
		},
		AuditRecentEvents: s.getInt(keyAuditRecent, d.AuditRecentEvents),
	}

	if v, ok := s.lookupEnv(EnvAllowEmptySnapshot); ok {
		settings.Brief.AllowEmptySnapshot = isTruthy(v)
	}

	if settings.Storage.DataDir == "" {
		home, err := s.homeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		settings.Storage.DataDir = filepath.Join(home, ".flightdeck", "data")
	}
	if settings.Delivery.Fallback.OutboxDir == "" {
		settings.Delivery.Fallback.OutboxDir = filepath.Join(settings.Storage.DataDir, "outbox")
	}
	if settings.Delivery.Fallback.Kind == domain.FallbackGmail && settings.Delivery.Fallback.Recipient == "" {
		return nil, fmt.Errorf("%w: %s is required when %s is gmail",
			domain.ErrInvalidInput, keyFallbackRecipient, keyFallbackKind)
	}

	return settings, nil
}

// Set parses value according to key and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %w", domain.ErrInvalidInput, key, err)
		}
		if n < 0 && key != keyLowPriority {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false: %w", domain.ErrInvalidInput, key, err)
		}
		parsed = b
	case kindList:
		parsed = splitList(value)
	default:
		if key == keyFallbackKind && !domain.FallbackKind(value).IsValid() {
			return fmt.Errorf("%w: %s must be gmail or file", domain.ErrInvalidInput, key)
		}
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getFallbackKind(defaultVal domain.FallbackKind) domain.FallbackKind {
	kind := domain.FallbackKind(s.configStore.GetString(keyFallbackKind))
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}

// expand resolves a leading "~/" against the home directory.
func (s *SettingsService) expand(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := s.homeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
