package extractors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches raw inputs to the best extractor for their kind.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.ContentKind][]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[domain.ContentKind][]driven.Extractor),
	}
}

// Register adds an extractor for all kinds it declares.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, kind := range extractor.Kinds() {
		list := append(r.extractors[kind], extractor)
		// Highest priority first; stable so registration order breaks ties
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.extractors[kind] = list
	}
}

// Extract dispatches to the highest-priority extractor for the kind.
func (r *Registry) Extract(
	ctx context.Context, kind domain.ContentKind, raw *domain.RawInput,
) (*driven.ExtractResult, error) {
	r.mu.RLock()
	list := r.extractors[kind]
	r.mu.RUnlock()

	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedContent, kind)
	}

	return list[0].Extract(ctx, raw)
}

// SupportedKinds returns all kinds with at least one extractor.
func (r *Registry) SupportedKinds() []domain.ContentKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]domain.ContentKind, 0, len(r.extractors))
	for kind := range r.extractors {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
