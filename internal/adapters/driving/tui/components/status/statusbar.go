// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/flightdeck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/flightdeck/internal/adapters/driving/tui/styles"
)

// State is what the bar reports on the left.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateError   State = "error"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	width   int
}

// NewBar creates a status bar. Nil arguments use the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// View renders the status bar across its width.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return b.styles.StatusBar.Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateLoading:
		return b.styles.Muted.Render("Loading...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render("Error: " + b.message)
		}
		return b.styles.Error.Render("Error")
	default:
		if b.message != "" {
			return b.styles.Normal.Render(b.message)
		}
		return b.styles.Muted.Render("Ready")
	}
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// Set changes the state and message together.
func (b *Bar) Set(state State, message string) {
	b.state = state
	b.message = message
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}
