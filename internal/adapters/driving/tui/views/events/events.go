// Package events provides the refresh log view for the TUI.
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/flightdeck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
)

const reservedLines = 4

// View lists recent refresh events, newest first, followed by findings.
type View struct {
	styles   *styles.Styles
	viewport viewport.Model
	report   *driving.AuditReport
}

// NewView creates an empty events view.
func NewView(s *styles.Styles) *View {
	return &View{styles: s, viewport: viewport.New(80, 20)}
}

// SetReport replaces the audit report on display.
func (v *View) SetReport(r *driving.AuditReport) {
	v.report = r
	v.viewport.SetContent(v.Content())
	v.viewport.GotoTop()
}

// Report returns the report on display.
func (v *View) Report() *driving.AuditReport {
	return v.report
}

// SetDimensions sizes the viewport to the terminal.
func (v *View) SetDimensions(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = max(height-reservedLines, 1)
}

// Update forwards scrolling to the viewport.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the title and the scrollable event list.
func (v *View) View() string {
	return v.styles.Title.Render("Refresh Log") + "\n\n" + v.viewport.View()
}

// Content renders the report as lines.
func (v *View) Content() string {
	if v.report == nil || len(v.report.Recent) == 0 {
		return v.styles.Muted.Render("No refresh events recorded.")
	}

	var b strings.Builder
	for i := range v.report.Recent {
		v.writeEvent(&b, &v.report.Recent[i])
	}
	if v.report.LastGoodRunID != "" {
		fmt.Fprintf(&b, "\nLast-known-good brief: %s\n", v.report.LastGoodRunID)
	}
	if len(v.report.Findings) > 0 {
		b.WriteString("\n" + v.styles.Subtitle.Render("Findings") + "\n")
		for _, f := range v.report.Findings {
			fmt.Fprintf(&b, "  %s %s\n", v.styles.Warning.Render("!"), f)
		}
	}
	return b.String()
}

func (v *View) writeEvent(b *strings.Builder, e *domain.RefreshEvent) {
	fmt.Fprintf(b, "%s  %s  %s  %s\n",
		e.CompletedAt.Local().Format(time.DateTime),
		v.styles.Status(e.Status).Render(string(e.Status)),
		e.Trigger,
		v.styles.Muted.Render(e.RunID))
	for _, src := range domain.AllSources() {
		c := e.Counts[src]
		fmt.Fprintf(b, "    %-8s raw=%d in_scope=%d actionable=%d\n", src, c.Raw, c.InScope, c.Actionable)
	}
	if d := e.Delivery; d != nil {
		fmt.Fprintf(b, "    delivery primary=%s fallback=%s\n", d.PrimaryStatus, d.FallbackStatus)
	}
	if e.ErrorDetail != "" {
		fmt.Fprintf(b, "    %s\n", v.styles.Error.Render(e.ErrorDetail))
	}
}
