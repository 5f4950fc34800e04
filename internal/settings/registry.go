package settings

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/vk/tweakrunner/internal/ctxlog"
)

// Registry maps settings types to their single live instance for a host
// session.
type Registry struct {
	store Store

	mu     sync.Mutex
	byType map[reflect.Type]Settings
	names  map[reflect.Type]string
	taken  map[string]reflect.Type
	order  []reflect.Type
}

// NewRegistry creates a registry backed by store.
func NewRegistry(store Store) *Registry {
	return &Registry{
		store:  store,
		byType: make(map[reflect.Type]Settings),
		names:  make(map[reflect.Type]string),
		taken:  make(map[string]reflect.Type),
	}
}

func normalize(t reflect.Type) reflect.Type {
	if t.Kind() != reflect.Pointer {
		return reflect.PointerTo(t)
	}
	return t
}

// Register returns the instance for settings type t, creating it on first
// use. A new instance is loaded from the store; when nothing is stored or
// the stored data cannot be read the defaults are kept and the failure is
// logged. The instance is stored under Key(t), or under QualifiedKey(t)
// when another registered type already holds Key(t).
func (r *Registry) Register(ctx context.Context, t reflect.Type) (Settings, error) {
	key := normalize(t)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byType[key]; ok {
		return s, nil
	}

	s, ok := New(key)
	if !ok {
		return nil, fmt.Errorf("type %s is not a settings type: it must be a struct embedding settings.Base", key)
	}

	logger := ctxlog.FromContext(ctx)
	name := Key(key)
	if other, clash := r.taken[name]; clash && other != key {
		logger.Warn("Settings key already in use, storing under the qualified key.", "settings", name, "other", other.String())
		name = QualifiedKey(key)
	}
	found, err := r.store.Load(name, s)
	switch {
	case err != nil:
		logger.Warn("Failed to load settings, using defaults.", "settings", name, "error", err)
		s, _ = New(key)
	case !found:
		logger.Debug("No stored settings, using defaults.", "settings", name)
	default:
		logger.Debug("Loaded settings.", "settings", name)
	}

	r.byType[key] = s
	r.names[key] = name
	r.taken[name] = key
	r.order = append(r.order, key)
	return s, nil
}

// Get returns the registered instance for t.
func (r *Registry) Get(t reflect.Type) (Settings, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byType[normalize(t)]
	return s, ok
}

// Name returns the storage key t was registered under.
func (r *Registry) Name(t reflect.Type) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.names[normalize(t)]
	return name, ok
}

// Types returns the registered settings types in registration order.
func (r *Registry) Types() []reflect.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]reflect.Type(nil), r.order...)
}

// Save writes every registered instance. Failures are logged, never
// returned; the count of failed writes is.
func (r *Registry) Save(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	logger := ctxlog.FromContext(ctx)
	failed := 0
	for _, t := range r.order {
		name := r.names[t]
		if err := r.store.Save(name, r.byType[t]); err != nil {
			failed++
			logger.Error("Failed to save settings.", "settings", name, "error", err)
			continue
		}
		logger.Debug("Saved settings.", "settings", name)
	}
	return failed
}
