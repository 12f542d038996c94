// Package chatexport reads chat rows from an exported search-results file.
// The file is either a JSON list of message rows or a payload object
// carrying them under chat_results, slack_results or slack.
package chatexport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/custodia-labs/flightdeck/internal/connectors/fixture"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.SourceFetcher = (*Fetcher)(nil)

// Fetcher re-reads the export file on every fetch.
type Fetcher struct {
	path string
}

// New creates a chat export fetcher for path.
func New(path string) *Fetcher {
	return &Fetcher{path: path}
}

// Source returns domain.SourceChat.
func (f *Fetcher) Source() domain.Source {
	return domain.SourceChat
}

// Fetch reads the export file. A missing file is an adapter failure.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read chat export: %w", err)
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []domain.RawRow
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("%w: chat export %s: %w", domain.ErrInvalidInput, f.path, err)
		}
		return rows, nil
	}

	snapshot, err := fixture.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("chat export %s: %w", f.path, err)
	}
	return snapshot.Batch(domain.SourceChat).Rows, nil
}
