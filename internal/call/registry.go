package call

import (
	"sync"
	"time"
)

// Registry tracks live call sessions so the janitor can sweep abandoned
// ones.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a live session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get returns a live session by id, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Idle removes and returns sessions whose last event is older than the
// cutoff.
func (r *Registry) Idle(cutoff time.Time) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var idle []*Session
	for id, s := range r.sessions {
		if s.LastEvent().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	return idle
}
