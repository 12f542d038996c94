package driving

import "github.com/custodia-labs/flightdeck/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves the current settings over defaults.
	Get() (*domain.Settings, error)

	// Set persists a single dotted key. The value is parsed according to the key.
	Set(key, value string) error

	// Path returns the backing configuration file.
	Path() string
}
