package mcp

import (
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Audit reads refresh events and the last-known-good brief.
	Audit driving.AuditService

	// Briefing runs the pipeline. Optional; without it the run_briefing
	// tool is not registered.
	Briefing driving.BriefingService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Audit == nil {
		return ErrMissingAuditService
	}
	return nil
}
