package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBar_Defaults(t *testing.T) {
	b := NewBar(nil, nil)

	assert.Equal(t, StateReady, b.State())
	assert.Empty(t, b.Message())
	assert.Contains(t, b.View(), "Ready")
	assert.Contains(t, b.View(), "q: quit")
}

func TestBar_States(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		want    string
	}{
		{"loading", StateLoading, "", "Loading..."},
		{"error with message", StateError, "database locked", "Error: database locked"},
		{"error without message", StateError, "", "Error"},
		{"ready with message", StateReady, "3 events", "3 events"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBar(nil, nil)
			b.SetWidth(200)
			b.Set(tt.state, tt.message)

			assert.Equal(t, tt.state, b.State())
			assert.Contains(t, b.View(), tt.want)
		})
	}
}
