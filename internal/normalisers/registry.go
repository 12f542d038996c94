package normalisers

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches rows to the normaliser for their source.
type Registry struct {
	mu          sync.RWMutex
	normalisers map[domain.Source]driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{normalisers: make(map[domain.Source]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds or replaces the normaliser for its source.
func (r *Registry) Register(n driven.Normaliser) {
	if n == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers[n.Source()] = n
}

// Get returns the normaliser for src.
func (r *Registry) Get(src domain.Source) (driven.Normaliser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.normalisers[src]
	if !ok {
		return nil, fmt.Errorf("%w: no normaliser for source %q", domain.ErrUnsupportedType, src)
	}
	return n, nil
}
