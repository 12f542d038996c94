// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
)

// ViewType identifies the active view.
type ViewType int

const (
	// ViewBrief shows the last-known-good brief section by section.
	ViewBrief ViewType = iota
	// ViewEvents lists recent refresh events and audit findings.
	ViewEvents
	// ViewHelp lists keybindings.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewBrief:
		return "brief"
	case ViewEvents:
		return "events"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// BriefLoaded carries the last-known-good brief. Brief is nil with a nil
// Err when none has been delivered yet.
type BriefLoaded struct {
	Brief *domain.Brief
	Err   error
}

// AuditLoaded carries the audit report.
type AuditLoaded struct {
	Report *driving.AuditReport
	Err    error
}

// PreviewCompleted carries the result of a dry-run briefing.
type PreviewCompleted struct {
	Report *driving.RunReport
	Err    error
}
