package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
)

// AuditSnapshotInput is the input schema for the audit_snapshot tool.
type AuditSnapshotInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of recent refresh events to return (default from settings)"`
}

// AuditSnapshotOutput is the output schema for the audit_snapshot tool.
type AuditSnapshotOutput struct {
	Latest        *EventOutput  `json:"latest,omitempty"`
	Recent        []EventOutput `json:"recent_refresh_events"`
	LastGoodRunID string        `json:"last_good_run_id,omitempty"`
	Findings      []string      `json:"findings,omitempty"`
}

// LatestBriefInput is the input schema for the latest_brief tool.
type LatestBriefInput struct {
	IncludeSections bool `json:"include_sections,omitempty" jsonschema:"also return the structured sections"`
}

// LatestBriefOutput is the output schema for the latest_brief tool.
type LatestBriefOutput struct {
	RunID       string          `json:"run_id"`
	GeneratedAt string          `json:"generated_at"`
	Text        string          `json:"text"`
	Sections    []SectionOutput `json:"sections,omitempty"`
}

// RunBriefingInput is the input schema for the run_briefing tool.
type RunBriefingInput struct {
	Deliver    bool `json:"deliver,omitempty" jsonschema:"post the brief to the configured sinks (default is a dry run)"`
	AllowEmpty bool `json:"allow_empty,omitempty" jsonschema:"render even when every source returned zero rows"`
}

// RunBriefingOutput is the output schema for the run_briefing tool.
type RunBriefingOutput struct {
	Event EventOutput `json:"event"`
	Text  string      `json:"text,omitempty"`
	Error string      `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "audit_snapshot",
		Description: "Recent briefing refresh events with per-source counts and audit findings",
	}, s.handleAuditSnapshot)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "latest_brief",
		Description: "The last successfully rendered daily brief",
	}, s.handleLatestBrief)

	if s.ports.Briefing != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "run_briefing",
			Description: "Run the briefing pipeline now; dry run unless deliver is set",
		}, s.handleRunBriefing)
	}
}

func (s *Server) handleAuditSnapshot(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AuditSnapshotInput,
) (*mcp.CallToolResult, AuditSnapshotOutput, error) {
	report, err := s.ports.Audit.Audit(ctx, input.Limit)
	if err != nil {
		return nil, AuditSnapshotOutput{}, err
	}

	output := AuditSnapshotOutput{
		Recent:        make([]EventOutput, len(report.Recent)),
		LastGoodRunID: report.LastGoodRunID,
		Findings:      report.Findings,
	}
	for i := range report.Recent {
		output.Recent[i] = toEventOutput(&report.Recent[i])
	}
	if report.Latest != nil {
		latest := toEventOutput(report.Latest)
		output.Latest = &latest
	}
	return nil, output, nil
}

func (s *Server) handleLatestBrief(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LatestBriefInput,
) (*mcp.CallToolResult, LatestBriefOutput, error) {
	brief, err := s.ports.Audit.LatestBrief(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, LatestBriefOutput{}, fmt.Errorf("no brief has been delivered yet")
	}
	if err != nil {
		return nil, LatestBriefOutput{}, err
	}

	output := LatestBriefOutput{
		RunID:       brief.RunID,
		GeneratedAt: formatTime(brief.GeneratedAt),
		Text:        brief.Text,
	}
	if input.IncludeSections {
		output.Sections = toSectionOutputs(&brief.Sections)
	}
	return nil, output, nil
}

func (s *Server) handleRunBriefing(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunBriefingInput,
) (*mcp.CallToolResult, RunBriefingOutput, error) {
	report, err := s.ports.Briefing.Run(ctx, driving.RunOptions{
		Trigger:      domain.TriggerManual,
		AllowEmpty:   input.AllowEmpty,
		SkipDelivery: !input.Deliver,
	})
	if report == nil {
		return nil, RunBriefingOutput{}, err
	}

	output := RunBriefingOutput{Event: toEventOutput(&report.Event)}
	if report.Brief != nil {
		output.Text = report.Brief.Text
	}
	if err != nil {
		output.Error = err.Error()
	}
	return nil, output, nil
}
