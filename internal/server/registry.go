package server

import "sync"

// Registry maps configured server names to their live Server objects. The
// dispatcher's handler reference resolves through it, so removing a server
// makes its dispatcher stop instead of applying messages to a dead model.
type Registry struct {
	mu      sync.RWMutex
	servers map[string]*Server
}

func NewRegistry() *Registry {
	return &Registry{servers: make(map[string]*Server)}
}

func (r *Registry) Add(s *Server) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.servers[s.Name()] = s
}

// Find returns the named server, or ok=false when it is not registered.
func (r *Registry) Find(name string) (*Server, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.servers[name]
	return s, ok
}

func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.servers, name)
}

// All returns the registered servers in no particular order.
func (r *Registry) All() []*Server {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Server, 0, len(r.servers))
	for _, s := range r.servers {
		all = append(all, s)
	}

	return all
}
