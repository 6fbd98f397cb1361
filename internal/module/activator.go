// Package module defines the boundary between PreparedBundle and
// whatever downloads, builds, and imports a module: the core only
// needs a local path back, never the installer mechanics (spec §1, §4.7
// step 5).
package module

import (
	"context"
	"sync"

	"amplifier/internal/logging"
	"amplifier/internal/source"
)

// Activator resolves a module spec (its declared name and source URI)
// to a local filesystem path. Installing dependencies and wiring an
// import path is the activator's own business; the core only consumes
// the returned path.
type Activator interface {
	Activate(ctx context.Context, moduleID, sourceURI string) (string, error)
}

// PathResolver is the trivial Activator shipped with this package: it
// resolves sourceURI through the same source.Resolver chain used for
// bundles and returns the active path, without installing dependencies
// or touching any import-path state. A richer activator (dependency
// installation, import wiring) is an external concern layered on top of
// this interface.
type PathResolver struct {
	resolver *source.Resolver

	mu        sync.Mutex
	activated map[string]string // "moduleID:sourceURI" -> resolved path
}

// NewPathResolver returns a PathResolver that resolves module sources
// through resolver.
func NewPathResolver(resolver *source.Resolver) *PathResolver {
	return &PathResolver{
		resolver:  resolver,
		activated: make(map[string]string),
	}
}

// Activate resolves sourceURI to a local path, memoizing by
// moduleID+sourceURI for the lifetime of the process so repeated
// activation within one session is free.
func (p *PathResolver) Activate(ctx context.Context, moduleID, sourceURI string) (string, error) {
	key := moduleID + ":" + sourceURI

	p.mu.Lock()
	if path, ok := p.activated[key]; ok {
		p.mu.Unlock()
		return path, nil
	}
	p.mu.Unlock()

	resolved, err := p.resolver.Resolve(ctx, sourceURI)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.activated[key] = resolved.Active
	p.mu.Unlock()

	logging.SessionDebug("activated module %q from %s -> %s", moduleID, sourceURI, resolved.Active)
	return resolved.Active, nil
}

// ActivateAll activates every module in specs, keyed by module ID. A
// spec missing either field is skipped, matching the original's
// activate_all tolerance for partial entries.
func ActivateAll(ctx context.Context, a Activator, specs map[string]string) map[string]string {
	results := make(map[string]string, len(specs))
	for moduleID, sourceURI := range specs {
		if moduleID == "" || sourceURI == "" {
			continue
		}
		path, err := a.Activate(ctx, moduleID, sourceURI)
		if err != nil {
			logging.SessionWarn("failed to activate module %q from %s: %v", moduleID, sourceURI, err)
			continue
		}
		results[moduleID] = path
	}
	return results
}
