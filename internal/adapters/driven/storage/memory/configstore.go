package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps flat dotted keys in a map. It stands in for the file
// store in tests and never persists.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns a store seeded with a copy of each seed map.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	values := make(map[string]any)
	for _, m := range seed {
		maps.Copy(values, m)
	}
	return &ConfigStore{values: values}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

// GetStringSlice treats a scalar string as a one-element list, as the file
// store does.
func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	switch list := v.(type) {
	case []string:
		return list
	case string:
		if list == "" {
			return nil
		}
		return []string{list}
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Values returns a copy of every stored key.
func (s *ConfigStore) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Load is a no-op; there is nothing to re-read.
func (s *ConfigStore) Load() error { return nil }

// Path reports ":memory:".
func (s *ConfigStore) Path() string { return ":memory:" }
