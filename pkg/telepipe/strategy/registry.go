package strategy

import (
	"sync"

	"github.com/patternlab/telepipe/pkg/telepipe/event"
)

// Registry maps an event category to its processing strategy.
// A category without a registered strategy is not an error: the caller
// must treat an absent strategy as "use the event unmodified".
type Registry struct {
	mu         sync.RWMutex
	strategies map[event.Category]Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[event.Category]Strategy),
	}
}

// Register inserts or overwrites the strategy for a category.
// Last write wins.
func (r *Registry) Register(category event.Category, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[category] = s
}

// Resolve returns the strategy for a category, or false if none is
// registered.
func (r *Registry) Resolve(category event.Category) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[category]
	return s, ok
}

// Has reports whether a strategy is registered for the category.
func (r *Registry) Has(category event.Category) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.strategies[category]
	return ok
}

// Categories returns all categories with a registered strategy.
func (r *Registry) Categories() []event.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]event.Category, 0, len(r.strategies))
	for c := range r.strategies {
		categories = append(categories, c)
	}
	return categories
}

// Process resolves the category's strategy and applies it. Events whose
// category has no strategy pass through unchanged.
func (r *Registry) Process(evt event.Event) event.Event {
	s, ok := r.Resolve(evt.Category())
	if !ok {
		return evt
	}
	return s.Process(evt)
}
