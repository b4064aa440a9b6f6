package scheduler

import "sync"

// Registry tracks the analyses currently claimed by this process. It exists
// only for shutdown cleanup: anything still registered when the scheduler
// stops is forced back to failed. Critical sections are claim/release
// bookkeeping only, never I/O.
type Registry struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]struct{})}
}

// Add records a claimed analysis.
func (r *Registry) Add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[id] = struct{}{}
}

// Remove drops an analysis once its terminal transition is persisted.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, id)
}

// Drain empties the registry and returns everything that was still owned.
func (r *Registry) Drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.ids))
	for id := range r.ids {
		ids = append(ids, id)
	}
	r.ids = make(map[string]struct{})
	return ids
}

// Len reports the number of currently owned analyses.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}
