package server

import "sync"

// InstanceRegistry is a name-keyed store of server instances. It guarantees
// at most one live instance per name: GetOrCreate is an atomic
// compute-if-absent and never races two instances into existence for the
// same name.
//
// The registry is an injectable service, not package state. Construct one
// and pass it to whatever builds transports.
type InstanceRegistry struct {
	mu        sync.Mutex
	instances map[string]*Server
}

// NewInstanceRegistry creates an empty instance registry.
func NewInstanceRegistry() *InstanceRegistry {
	return &InstanceRegistry{instances: make(map[string]*Server)}
}

// GetOrCreate returns the instance registered under name, creating it with
// the given options if absent. Options are applied only on creation; a
// subsequent call with the same name returns the existing instance
// unchanged.
func (r *InstanceRegistry) GetOrCreate(name string, opts ...Option) *Server {
	r.mu.Lock()
	defer r.mu.Unlock()

	if srv, ok := r.instances[name]; ok {
		return srv
	}

	srv := New(name, opts...)
	r.instances[name] = srv
	return srv
}

// Has reports whether an instance is registered under the name.
func (r *InstanceRegistry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.instances[name]
	return ok
}

// Remove destroys the named instance, reporting whether it existed.
func (r *InstanceRegistry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.instances[name]
	delete(r.instances, name)
	return ok
}

// Names returns the names of all registered instances.
func (r *InstanceRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	return names
}

// Clear drops every instance. Used for process reset, e.g. between tests.
func (r *InstanceRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances = make(map[string]*Server)
}
