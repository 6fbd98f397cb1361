package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"amplifier/internal/bundle"
	"amplifier/internal/logging"

	"golang.org/x/sync/errgroup"
)

// UpdateInfo describes an available update for a registered bundle.
// CheckUpdate never populates this today (spec §4.6: "placeholder that
// only refreshes checked_at"); it exists so a stronger check can be
// dropped in later without changing the public shape.
type UpdateInfo struct {
	Name             string
	CurrentVersion   string
	AvailableVersion string
	URI              string
}

// Update reloads name bypassing the in-memory parse cache, refreshing
// its tracked timestamps. Returns an error if name is not registered.
func (r *Registry) Update(ctx context.Context, name string) (*bundle.Bundle, error) {
	if _, ok := r.GetState(name); !ok {
		return nil, fmt.Errorf("bundle %q not registered", name)
	}

	uri, _ := r.Find(name)
	r.invalidateCacheFor(uri)

	b, err := r.loadSingle(ctx, name, false, true)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	r.mu.Lock()
	if state, ok := r.states[name]; ok {
		v := b.Version
		state.Version = &v
		state.LoadedAt = &now
		state.CheckedAt = &now
	}
	r.mu.Unlock()

	return b, nil
}

// UpdateAll updates every registered bundle concurrently, the same
// best-effort way LoadAll does: a failure is logged and the name is
// omitted from the result.
func (r *Registry) UpdateAll(ctx context.Context) map[string]*bundle.Bundle {
	names := r.ListRegistered()
	if len(names) == 0 {
		return map[string]*bundle.Bundle{}
	}

	results := make(map[string]*bundle.Bundle, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)

	for _, name := range names {
		name := name
		g.Go(func() error {
			b, err := r.Update(gctx, name)
			if err != nil {
				logging.RegistryWarn("failed to update bundle %q: %v", name, err)
				return nil
			}
			mu.Lock()
			results[name] = b
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// CheckUpdate refreshes checked_at for name and reports nil: a
// placeholder per spec §4.6, left for a stronger implementation (e.g.
// comparing a remote ref) to replace without changing callers.
func (r *Registry) CheckUpdate(name string) *UpdateInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[name]
	if !ok {
		return nil
	}
	now := time.Now()
	state.CheckedAt = &now
	logging.RegistryDebug("checked for updates: %s (checked_at=%s)", name, now.Format(time.RFC3339))
	return nil
}

// CheckUpdateAll runs CheckUpdate across every registered name and
// returns only the (currently always empty) non-nil results.
func (r *Registry) CheckUpdateAll() []UpdateInfo {
	var updates []UpdateInfo
	for _, name := range r.ListRegistered() {
		if info := r.CheckUpdate(name); info != nil {
			updates = append(updates, *info)
		}
	}
	return updates
}

// invalidateCacheFor drops any cached parse for uri's resolved local
// path so Update bypasses the in-memory memo. Best-effort: if resolving
// fails here, loadSingle will surface the real error.
func (r *Registry) invalidateCacheFor(uri string) {
	if uri == "" {
		return
	}
	resolved, err := r.resolver.Resolve(context.Background(), uri)
	if err != nil {
		return
	}
	r.cache.Delete(resolved.Active)
}
