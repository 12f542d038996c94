// Package mcp exposes the briefing audit over the Model Context Protocol so
// agents can inspect recent refresh events and the last-known-good brief.
package mcp

import "errors"

// ErrMissingAuditService is returned when the audit service is not provided.
var ErrMissingAuditService = errors.New("mcp: audit service is required")
