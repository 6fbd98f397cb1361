package registry

import (
	"sort"
	"sync"

	"amplifier/internal/logging"
	"amplifier/internal/source"
)

// Registry is the single process-wide facade described in spec §4.6: a
// name→URI map, the load pipeline, include-graph bookkeeping, and
// JSON-persisted state. The in-progress URI set and the row map are
// guarded by mu, held only across synchronous bookkeeping — never
// across the I/O that Load performs (spec §5).
type Registry struct {
	home     string
	resolver *source.Resolver

	mu      sync.Mutex
	states  map[string]*BundleState
	loading map[string]bool

	cache sync.Map // resolved local path (string) -> *bundle.Bundle
}

// New returns a Registry rooted at home, resolving sources through
// resolver, with any previously persisted state loaded from
// <home>/registry.json.
func New(home string, resolver *source.Resolver) *Registry {
	r := &Registry{
		home:     home,
		resolver: resolver,
		states:   make(map[string]*BundleState),
		loading:  make(map[string]bool),
	}
	r.loadPersisted()
	return r
}

// Home returns the registry's base directory.
func (r *Registry) Home() string { return r.home }

// Resolver returns the source.Resolver the registry resolves URIs
// through, for callers (e.g. a module Activator) that need to resolve
// sources the same way bundles do.
func (r *Registry) Resolver() *source.Resolver { return r.resolver }

// Register upserts name→URI mappings. An already-known name keeps its
// tracked state (loaded_at, includes, ...) and only its URI is updated.
// Does not persist; call Save to write the change to disk.
func (r *Registry) Register(bundles map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, uri := range bundles {
		if existing, ok := r.states[name]; ok {
			existing.URI = uri
		} else {
			r.states[name] = &BundleState{URI: uri, Name: name, IsRoot: true}
		}
		logging.RegistryDebug("registered bundle %q -> %s", name, uri)
	}
}

// Find looks up a registered name's URI.
func (r *Registry) Find(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[name]
	if !ok {
		return "", false
	}
	return state.URI, true
}

// ListRegistered returns every registered name, sorted.
func (r *Registry) ListRegistered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.states))
	for name := range r.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetState returns a copy of one registered bundle's tracked state.
func (r *Registry) GetState(name string) (BundleState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[name]
	if !ok {
		return BundleState{}, false
	}
	return *state, true
}

// GetAllStates returns a copy of every tracked row, keyed by name.
func (r *Registry) GetAllStates() map[string]BundleState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]BundleState, len(r.states))
	for name, state := range r.states {
		out[name] = *state
	}
	return out
}

// localPathOf returns the local_path recorded for a registered name, if
// any, used to resolve "namespace:path" include references.
func (r *Registry) localPathOf(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[name]
	if !ok || state.LocalPath == nil {
		return "", false
	}
	return *state.LocalPath, true
}
