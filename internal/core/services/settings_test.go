package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flightdeck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

func newTestSettingsService(env map[string]string) *SettingsService {
	svc := NewSettingsService(memory.NewConfigStore())
	svc.lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	svc.homeDir = func() (string, error) { return "/home/tester", nil }
	return svc
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	svc := newTestSettingsService(nil)

	settings, err := svc.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Chat.LookbackHours, settings.Chat.LookbackHours)
	assert.Empty(t, settings.Chat.ChannelsExact)
	assert.Equal(t, domain.DefaultLowPriorityThreshold, settings.Brief.LowPriorityThreshold)
	assert.False(t, settings.Brief.AllowEmptySnapshot)
	assert.Equal(t, 10*time.Second, settings.Delivery.Timeout)
	assert.Equal(t, domain.FallbackFile, settings.Delivery.Fallback.Kind)
	assert.Equal(t, domain.DefaultFallbackSubject, settings.Delivery.Fallback.Subject)
	assert.Equal(t, "/home/tester/.flightdeck/data", settings.Storage.DataDir)
	assert.Equal(t, "/home/tester/.flightdeck/data/outbox", settings.Delivery.Fallback.OutboxDir)
	assert.Equal(t, time.Hour, settings.Serve.Interval)
	assert.Equal(t, 5, settings.AuditRecentEvents)
}

func TestSettingsService_SetAndGet(t *testing.T) {
	svc := newTestSettingsService(nil)

	require.NoError(t, svc.Set("chat.channels_exact", "eng-oncall, #ops"))
	require.NoError(t, svc.Set("chat.channels_prefix", "team-"))
	require.NoError(t, svc.Set("brief.low_priority_threshold", "-5"))
	require.NoError(t, svc.Set("brief.allow_empty_snapshot", "true"))
	require.NoError(t, svc.Set("delivery.fallback.kind", "gmail"))
	require.NoError(t, svc.Set("delivery.fallback.recipient", "me@corp.test"))
	require.NoError(t, svc.Set("serve.interval_minutes", "15"))
	require.NoError(t, svc.Set("google.token_file", "~/.flightdeck/token.json"))
	require.NoError(t, svc.Set("identity.handles", "@sam"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"eng-oncall", "#ops"}, settings.Chat.ChannelsExact)
	assert.Equal(t, []string{"team-"}, settings.Chat.ChannelsPrefix)
	assert.Equal(t, -5, settings.Brief.LowPriorityThreshold)
	assert.True(t, settings.Brief.AllowEmptySnapshot)
	assert.Equal(t, domain.FallbackGmail, settings.Delivery.Fallback.Kind)
	assert.Equal(t, "me@corp.test", settings.Delivery.Fallback.Recipient)
	assert.Equal(t, 15*time.Minute, settings.Serve.Interval)
	assert.Equal(t, "/home/tester/.flightdeck/token.json", settings.Google.TokenFile)
	assert.Equal(t, []string{"@sam"}, settings.Identity.Handles)
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"non-integer", "chat.lookback_hours", "a day"},
		{"negative hours", "chat.lookback_hours", "-1"},
		{"non-bool", "brief.allow_empty_snapshot", "sometimes"},
		{"bad fallback kind", "delivery.fallback.kind", "pigeon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestSettingsService(nil)
			err := svc.Set(tt.key, tt.value)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Get_EnvOverridesEmptyGuard(t *testing.T) {
	svc := newTestSettingsService(map[string]string{EnvAllowEmptySnapshot: "1"})
	settings, err := svc.Get()
	require.NoError(t, err)
	assert.True(t, settings.Brief.AllowEmptySnapshot)

	svc = newTestSettingsService(map[string]string{EnvAllowEmptySnapshot: "0"})
	require.NoError(t, svc.Set("brief.allow_empty_snapshot", "true"))
	settings, err = svc.Get()
	require.NoError(t, err)
	assert.False(t, settings.Brief.AllowEmptySnapshot)
}

func TestSettingsService_Get_GmailFallbackNeedsRecipient(t *testing.T) {
	svc := newTestSettingsService(nil)
	require.NoError(t, svc.Set("delivery.fallback.kind", "gmail"))

	_, err := svc.Get()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Get_HomeDirError(t *testing.T) {
	svc := newTestSettingsService(nil)
	svc.homeDir = func() (string, error) { return "", errors.New("no home") }

	_, err := svc.Get()
	assert.Error(t, err)

	require.NoError(t, svc.Set("storage.data_dir", "/srv/flightdeck"))
	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "/srv/flightdeck", settings.Storage.DataDir)
}

func TestKnownKeys_Sorted(t *testing.T) {
	keys := KnownKeys()
	assert.Contains(t, keys, "delivery.webhook_url")
	assert.IsNonDecreasing(t, keys)
}
