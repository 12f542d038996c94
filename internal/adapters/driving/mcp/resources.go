package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

const (
	uriScheme        = "flightdeck://"
	latestBriefURI   = uriScheme + "brief/latest"
	refreshEventsURI = uriScheme + "refresh-events"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         latestBriefURI,
		Name:        "latest-brief",
		Description: "Markdown text of the last-known-good brief",
		MIMEType:    "text/markdown",
	}, s.handleLatestBriefResource)

	s.server.AddResource(&mcp.Resource{
		URI:         refreshEventsURI,
		Name:        "refresh-events",
		Description: "Recent refresh events as JSON",
		MIMEType:    "application/json",
	}, s.handleRefreshEventsResource)
}

func (s *Server) handleLatestBriefResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	brief, err := s.ports.Audit.LatestBrief(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest brief: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     brief.Text,
		}},
	}, nil
}

func (s *Server) handleRefreshEventsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	report, err := s.ports.Audit.Audit(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("auditing refresh events: %w", err)
	}

	events := make([]EventOutput, len(report.Recent))
	for i := range report.Recent {
		events[i] = toEventOutput(&report.Recent[i])
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling refresh events: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
