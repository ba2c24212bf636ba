// Package criteria resolves the scoring criteria in effect for an event.
//
// Events normally carry admin-configured criteria rows. Events with no
// configuration fall back to a fixed default template so that every score
// computed under the fallback stays comparable with every other.
package criteria

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/podium/internal/domain/model"
)

// Source supplies the configured criteria rows for an event.
// The repository adapter implements this; the registry never writes.
type Source interface {
	ListCriteria(ctx context.Context, eventID string) ([]model.Criterion, error)
}

// defaultTemplate is the versioned fallback used when an event defines no
// criteria. Weights sum to 100; every raw score is rated out of 10. The
// values are deliberately package-private constants so no other code path
// can drift from them.
var defaultTemplate = []model.Criterion{
	{ID: "default-innovation", Name: "Innovation", Description: "Originality and creativity of the idea", Weight: 25, MaxScore: 10, Order: 1},
	{ID: "default-technical", Name: "Technical Complexity", Description: "Engineering depth and difficulty", Weight: 25, MaxScore: 10, Order: 2},
	{ID: "default-design", Name: "Design & UX", Description: "Quality of the design and user experience", Weight: 20, MaxScore: 10, Order: 3},
	{ID: "default-impact", Name: "Impact", Description: "Potential real-world impact", Weight: 20, MaxScore: 10, Order: 4},
	{ID: "default-presentation", Name: "Presentation", Description: "Clarity and polish of the demo", Weight: 10, MaxScore: 10, Order: 5},
}

// DefaultTemplate returns a fresh copy of the fallback criteria stamped
// with eventID. Callers may not mutate shared state through the result.
func DefaultTemplate(eventID string) []model.Criterion {
	out := make([]model.Criterion, len(defaultTemplate))
	copy(out, defaultTemplate)
	for i := range out {
		out[i].EventID = eventID
	}
	return out
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithSource sets the backing criteria source.
func WithSource(src Source) Option {
	return func(r *Registry) {
		if src != nil {
			r.source = src
		}
	}
}

// Registry resolves the ordered criterion list for an event, applying the
// default-template fallback when the event has none configured.
type Registry struct {
	source Source
}

// NewRegistry creates a Registry with configuration options.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns the criteria for eventID ordered by Order ascending, ties
// broken by ID ascending. A source returning zero rows yields the default
// template; a nil source always yields the template.
func (r *Registry) List(ctx context.Context, eventID string) ([]model.Criterion, error) {
	var (
		crits []model.Criterion
		err   error
	)
	if r.source != nil {
		crits, err = r.source.ListCriteria(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("list criteria: %w", err)
		}
	}
	if len(crits) == 0 {
		crits = DefaultTemplate(eventID)
	}
	sort.Slice(crits, func(i, j int) bool {
		if crits[i].Order != crits[j].Order {
			return crits[i].Order < crits[j].Order
		}
		return crits[i].ID < crits[j].ID
	})
	return crits, nil
}
