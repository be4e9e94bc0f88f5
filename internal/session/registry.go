package session

import (
	"context"
	"sync"
)

// Registry owns the active session of a process.
type Registry struct {
	mu     sync.Mutex
	active *Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// GetOrCreate returns the active session, or creates one from opts when
// none is active. Options are only applied on creation.
func (r *Registry) GetOrCreate(ctx context.Context, opts Options) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s := r.active; s != nil && !s.Stopped() {
		if opts.AppName != "" && opts.AppName != s.appName {
			s.logger.Warn("using existing session; requested options are ignored", "requested_app_name", opts.AppName)
		}
		return s, nil
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s, err := open(ctx, opts)
	if err != nil {
		return nil, err
	}
	s.registry = r
	r.active = s
	return s, nil
}

// Active returns the active session, or nil when there is none.
func (r *Registry) Active() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// release clears s if it is still the active session.
func (r *Registry) release(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == s {
		r.active = nil
	}
}
