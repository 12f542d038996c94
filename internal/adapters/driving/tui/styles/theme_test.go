package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

func TestDefaultTheme_ColoursAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	seen := make(map[lipgloss.Color]bool)
	for _, c := range []lipgloss.Color{theme.Primary, theme.Secondary, theme.Success, theme.Warning, theme.Error} {
		assert.False(t, seen[c], "duplicate colour %s", c)
		seen[c] = true
	}
}

func TestNewStyles_NilTheme(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestStyles_Status(t *testing.T) {
	s := DefaultStyles()
	theme := s.Theme()

	tests := []struct {
		status domain.RunStatus
		want   lipgloss.TerminalColor
	}{
		{domain.StatusOK, theme.Success},
		{domain.StatusEmptyGuardBlocked, theme.Warning},
		{domain.StatusFailed, theme.Error},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, s.Status(tt.status).GetForeground())
		})
	}
}
