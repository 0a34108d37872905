package source

import (
	"context"
	"fmt"

	"ChiefOfStaff/internal/domain"
)

// Fetcher pulls recent items from one origin, already normalized to the
// canonical schema. Output ordering within one source is unspecified. A
// source that cannot reach its backend returns an error; the pipeline
// recovers it locally so the run always completes its merge step.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, w Window) ([]domain.Message, error)
}

// DocumentFetcher pulls scoreable documents (preprints, grant notices) for
// the window. Scoring and thresholding happen downstream.
type DocumentFetcher interface {
	Name() string
	FetchRecent(ctx context.Context, w Window) ([]domain.Document, error)
}

// Registry keeps sources in registration order. The order is load-bearing:
// the corpus is merged in exactly this order regardless of which fetch
// finishes first.
type Registry struct {
	order   []string
	sources map[string]Fetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Fetcher{}}
}

// Register appends a source. Re-registering a name replaces the implementation
// but keeps its original position.
func (r *Registry) Register(s Fetcher) {
	if r.sources == nil {
		r.sources = map[string]Fetcher{}
	}
	if _, ok := r.sources[s.Name()]; !ok {
		r.order = append(r.order, s.Name())
	}
	r.sources[s.Name()] = s
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Fetcher, error) {
	if s, ok := r.sources[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

// Select returns the sources for the requested names, in registration order.
// Empty input selects every registered source. Unknown names error so a typo
// in --sources does not silently drop a source.
func (r *Registry) Select(names []string) ([]Fetcher, error) {
	if len(names) == 0 {
		names = r.order
	}

	requested := map[string]bool{}
	for _, name := range names {
		if _, ok := r.sources[name]; !ok {
			return nil, fmt.Errorf("source %s is not registered", name)
		}
		requested[name] = true
	}

	selected := make([]Fetcher, 0, len(requested))
	for _, name := range r.order {
		if requested[name] {
			selected = append(selected, r.sources[name])
		}
	}
	return selected, nil
}
