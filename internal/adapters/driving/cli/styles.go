package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/services"
)

var (
	colorSuccess = lipgloss.Color("#A6E3A1")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorError   = lipgloss.Color("#F38BA8")
	colorMuted   = lipgloss.Color("#6C7086")
	colorPrimary = lipgloss.Color("#7C3AED")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorWarning)
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

func statusStyle(status domain.RunStatus) lipgloss.Style {
	switch status {
	case domain.StatusOK:
		return okStyle
	case domain.StatusEmptyGuardBlocked:
		return warnStyle
	default:
		return failStyle
	}
}

// renderSummary boxes the run status summary with the status highlighted.
func renderSummary(event *domain.RefreshEvent, brief *domain.Brief) string {
	text := strings.TrimRight(services.RenderStatus(event, brief), "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 {
		lines[0] = fmt.Sprintf("%s %s %s",
			titleStyle.Render("Run "+event.RunID+":"),
			statusStyle(event.Status).Render(string(event.Status)),
			mutedStyle.Render("("+string(event.FetchMode)+")"))
	}
	return summaryStyle.Render(strings.Join(lines, "\n"))
}
