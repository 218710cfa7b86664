package pacer

import "sync"

// registry maps endpoint URLs to their configured rate limit strategies.
// Matching is exact-string; entries live for the lifetime of the owning
// Client and are never expired.
type registry struct {
	mu      sync.RWMutex
	entries map[string]Strategy
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]Strategy)}
}

// configure stores the strategy for an endpoint, replacing any prior entry.
func (r *registry) configure(endpoint string, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[endpoint] = s
}

// resolve returns the strategy configured for the endpoint, if any.
// Exact match only; pattern matching is an extension point, not implemented.
func (r *registry) resolve(endpoint string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.entries[endpoint]
	return s, ok
}
