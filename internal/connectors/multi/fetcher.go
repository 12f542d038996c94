// Package multi assembles a live snapshot from one fetcher per source.
package multi

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.SnapshotFetcher = (*Fetcher)(nil)

// Fetcher runs its source fetchers concurrently. A source that fails, or has
// no fetcher, gets an errored batch and unavailable tool access; the other
// sources are unaffected.
type Fetcher struct {
	fetchers map[domain.Source]driven.SourceFetcher
}

// New creates a live snapshot fetcher. A later fetcher for the same source
// replaces an earlier one.
func New(fetchers ...driven.SourceFetcher) *Fetcher {
	m := make(map[domain.Source]driven.SourceFetcher, len(fetchers))
	for _, f := range fetchers {
		if f != nil {
			m[f.Source()] = f
		}
	}
	return &Fetcher{fetchers: m}
}

// Mode returns domain.FetchModeLive.
func (f *Fetcher) Mode() domain.FetchMode {
	return domain.FetchModeLive
}

// Sources returns the sources that have a fetcher, in canonical order.
func (f *Fetcher) Sources() []domain.Source {
	var out []domain.Source
	for _, src := range domain.AllSources() {
		if _, ok := f.fetchers[src]; ok {
			out = append(out, src)
		}
	}
	return out
}

// FetchSnapshot fetches every source. It only returns an error when ctx is
// cancelled; per-source failures are recorded on the batches.
func (f *Fetcher) FetchSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	snapshot := &domain.Snapshot{
		FetchMode: domain.FetchModeLive,
		Batches:   make(map[domain.Source]domain.SourceBatch, len(domain.AllSources())),
		Diagnostics: domain.Diagnostics{
			ToolAccess: make(map[domain.Source]domain.ToolAccess, len(domain.AllSources())),
		},
	}

	var mu sync.Mutex
	record := func(batch domain.SourceBatch) {
		mu.Lock()
		defer mu.Unlock()
		snapshot.Batches[batch.Source] = batch
		if batch.Err != nil {
			snapshot.Diagnostics.ToolAccess[batch.Source] = domain.ToolAccessUnavailable
		} else {
			snapshot.Diagnostics.ToolAccess[batch.Source] = domain.ToolAccessOK
		}
	}

	var g errgroup.Group
	for _, src := range domain.AllSources() {
		fetcher, ok := f.fetchers[src]
		if !ok {
			record(domain.SourceBatch{
				Source: src,
				Err:    fmt.Errorf("%w: no fetcher configured", domain.ErrAdapterUnavailable),
			})
			continue
		}
		g.Go(func() error {
			rows, err := fetcher.Fetch(ctx)
			if err != nil {
				logger.Warn("%s fetch failed: %v", src, err)
				record(domain.SourceBatch{Source: src, Err: fmt.Errorf("%w: %w", domain.ErrAdapterUnavailable, err)})
				return nil
			}
			logger.Debug("%s fetch returned %d rows", src, len(rows))
			record(domain.SourceBatch{Source: src, Rows: rows})
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snapshot, nil
}
