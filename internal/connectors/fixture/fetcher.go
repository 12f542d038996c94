// Package fixture reads a snapshot from a payload JSON file.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.SnapshotFetcher = (*Fetcher)(nil)

// sourceKeys lists the payload keys accepted for each source, in precedence order.
var sourceKeys = map[domain.Source][]string{
	domain.SourceChat:     {"chat_results", "slack_results", "slack"},
	domain.SourceCalendar: {"calendar_events", "calendar"},
	domain.SourceEmail:    {"email_messages", "gmail_emails", "gmail"},
}

// Fetcher serves the snapshot stored in one payload file.
type Fetcher struct {
	path string
}

// New creates a fixture fetcher for path.
func New(path string) *Fetcher {
	return &Fetcher{path: path}
}

// Mode returns domain.FetchModeFixture.
func (f *Fetcher) Mode() domain.FetchMode {
	return domain.FetchModeFixture
}

// FetchSnapshot reads and parses the payload file.
func (f *Fetcher) FetchSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	snapshot, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse payload %s: %w", f.path, err)
	}
	return snapshot, nil
}

// Parse decodes a payload document into a fixture snapshot. Missing source
// keys yield empty batches; a source key holding anything but a list is an
// error.
func Parse(data []byte) (*domain.Snapshot, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: payload must be a JSON object: %w", domain.ErrInvalidInput, err)
	}

	snapshot := &domain.Snapshot{
		FetchMode: domain.FetchModeFixture,
		Batches:   make(map[domain.Source]domain.SourceBatch, len(sourceKeys)),
	}
	for _, src := range domain.AllSources() {
		rows, err := parseRows(doc, sourceKeys[src])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src, err)
		}
		snapshot.Batches[src] = domain.SourceBatch{Source: src, Rows: rows}
	}

	if raw, ok := doc["diagnostics"]; ok {
		diag, err := parseDiagnostics(raw)
		if err != nil {
			return nil, err
		}
		snapshot.Diagnostics = diag
	}
	return snapshot, nil
}

func parseRows(doc map[string]json.RawMessage, keys []string) ([]domain.RawRow, error) {
	for _, key := range keys {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		var entries []any
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("%w: %s must be a list", domain.ErrInvalidInput, key)
		}
		rows := make([]domain.RawRow, 0, len(entries))
		for i, entry := range entries {
			obj, ok := entry.(map[string]any)
			if !ok {
				logger.Debug("fixture: %s[%d] is not an object, skipped", key, i)
				continue
			}
			rows = append(rows, domain.RawRow(obj))
		}
		return rows, nil
	}
	return nil, nil
}

type diagnosticsDoc struct {
	ToolAccess map[string]any `json:"tool_access"`
	Errors     []any          `json:"errors"`
}

func parseDiagnostics(raw json.RawMessage) (domain.Diagnostics, error) {
	var doc diagnosticsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Diagnostics{}, fmt.Errorf("%w: diagnostics: %w", domain.ErrInvalidInput, err)
	}

	diag := domain.Diagnostics{}
	for name, status := range doc.ToolAccess {
		src, err := domain.ParseSource(name)
		if err != nil {
			logger.Debug("fixture: diagnostics for unknown tool %q ignored", name)
			continue
		}
		if diag.ToolAccess == nil {
			diag.ToolAccess = make(map[domain.Source]domain.ToolAccess)
		}
		access := domain.ToolAccessUnavailable
		if strings.EqualFold(fmt.Sprint(status), string(domain.ToolAccessOK)) {
			access = domain.ToolAccessOK
		}
		diag.ToolAccess[src] = access
	}
	for _, e := range doc.Errors {
		if e == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(e)); s != "" {
			diag.Errors = append(diag.Errors, s)
		}
	}
	return diag, nil
}
