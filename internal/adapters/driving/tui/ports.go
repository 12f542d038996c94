// Package tui provides an interactive terminal viewer for the daily brief
// and the refresh log. It is a driving adapter over the audit and briefing
// ports.
package tui

import (
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Audit reads the refresh log and the last-known-good brief.
	Audit driving.AuditService

	// Briefing runs dry-run previews. Optional; previews are disabled when nil.
	Briefing driving.BriefingService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Audit == nil {
		return ErrMissingAuditService
	}
	return nil
}
