package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"amplifier/internal/bundle"
	"amplifier/internal/bundleerr"
	"amplifier/internal/logging"
	"amplifier/internal/source"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentLoads bounds the fan-out in LoadAll and UpdateAll;
// CheckUpdateAll runs sequentially (spec §5's "bounded fan-out", grounded on the teacher's
// errgroup usage for concurrent session work).
const maxConcurrentLoads = 8

// Load loads a single bundle by registered name or raw URI, resolving
// includes and composing them underneath it. A bare nameOrURI that
// names no registered bundle is treated as a URI directly.
func (r *Registry) Load(ctx context.Context, nameOrURI string) (*bundle.Bundle, error) {
	return r.loadSingle(ctx, nameOrURI, true, true)
}

// LoadAll concurrently loads every registered bundle. A single bundle's
// failure is logged and excluded from the result map rather than
// aborting the others (spec §4.6: "exceptions per bundle are logged but
// not propagated").
func (r *Registry) LoadAll(ctx context.Context) map[string]*bundle.Bundle {
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
			b, err := r.loadSingle(gctx, name, false, true)
			if err != nil {
				logging.RegistryWarn("failed to load bundle %q: %v", name, err)
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

// loadSingle implements the pipeline in spec §4.6: name/URI resolution,
// cycle detection, source resolution, bundle load, sub-bundle
// discovery, registration, include composition, and persistence.
func (r *Registry) loadSingle(ctx context.Context, nameOrURI string, autoRegister, autoInclude bool) (*bundle.Bundle, error) {
	registeredName, uri := "", nameOrURI
	if existing, ok := r.Find(nameOrURI); ok {
		registeredName = nameOrURI
		uri = existing
	}

	if !r.beginLoading(uri) {
		return nil, bundleerr.NewDependencyCycle(uri)
	}
	defer r.endLoading(uri)

	resolved, err := r.resolver.Resolve(ctx, uri)
	if err != nil {
		return nil, err
	}

	b, err := r.loadCached(ctx, resolved.Active)
	if err != nil {
		return nil, err
	}

	isRoot, rootName := r.discoverRootBundle(ctx, b, resolved)

	if b.Name != "" {
		if _, known := r.GetState(b.Name); !known {
			r.upsertLoadedState(b.Name, uri, b.Version, resolved.Active, isRoot, rootName)
		}
	}

	updateName := registeredName
	if updateName == "" {
		if _, known := r.GetState(b.Name); known {
			updateName = b.Name
		}
	}
	if updateName != "" {
		r.touchLoaded(updateName, b.Version, resolved.Active)
	}

	if autoInclude && len(b.Includes) > 0 {
		composed, err := r.composeIncludes(ctx, b, b.Name)
		if err != nil {
			return nil, err
		}
		b = composed
	}

	b.SourceURI = uri
	if autoRegister && registeredName == "" && b.Name != "" {
		r.Register(map[string]string{b.Name: uri})
	}

	return b, nil
}

// loadCached loads a bundle from a local path, memoizing the parsed
// result by resolved path for the lifetime of the process (spec's
// Open-Question fold of the Python original's SimpleCache — see
// SPEC_FULL.md §C).
func (r *Registry) loadCached(ctx context.Context, path string) (*bundle.Bundle, error) {
	if cached, ok := r.cache.Load(path); ok {
		return cached.(*bundle.Bundle), nil
	}

	b, err := bundle.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	r.cache.Store(path, b)
	return b, nil
}

// discoverRootBundle implements spec §4.6 step 5: walking up from the
// loaded bundle's directory (inclusive of the resolved source root)
// looking for a different bundle file that roots it. When found, it
// records the root's (and, if different, the loaded bundle's own) name
// as a namespace onto b.SourceBasePaths and reports that b is a
// sub-bundle of rootName.
func (r *Registry) discoverRootBundle(ctx context.Context, b *bundle.Bundle, resolved source.ResolvedSource) (isRoot bool, rootName string) {
	searchStart := resolved.Active
	if fileExists(resolved.Active) && !isDir(resolved.Active) {
		searchStart = filepath.Dir(resolved.Active)
	}

	stop := resolved.Root
	if stop == "" {
		stop = r.home
	}

	rootPath, found := findNearestBundleFile(searchStart, stop)
	if !found || rootPath == resolved.Active {
		return true, ""
	}

	// The nearest bundle file found above may be the very file b was
	// already loaded from (e.g. when resolved.Active is a directory and
	// that directory's own bundle.md/yaml is the first thing the walk
	// sees) — its name will then equal b.Name. Namespace recording still
	// happens unconditionally in that case; only the is_root/root_name
	// verdict depends on the names actually differing.
	rootBundle, err := r.loadCached(ctx, rootPath)
	if err != nil || rootBundle.Name == "" {
		return true, ""
	}

	if b.SourceBasePaths == nil {
		b.SourceBasePaths = map[string]string{}
	}
	if _, ok := b.SourceBasePaths[rootBundle.Name]; !ok {
		b.SourceBasePaths[rootBundle.Name] = resolved.Root
	}
	if b.Name != "" && b.Name != rootBundle.Name {
		if _, ok := b.SourceBasePaths[b.Name]; !ok {
			b.SourceBasePaths[b.Name] = resolved.Root
		}
	}

	if rootBundle.Name == b.Name {
		return true, ""
	}
	return false, rootBundle.Name
}

// composeIncludes loads and composes bundle.includes per spec §4.6
// step 7-8: each include is resolved to a source, loaded (opportunistic
// — a missing include is logged and skipped), then every loaded include
// is composed in declared order before the current bundle composes on
// top of all of them.
func (r *Registry) composeIncludes(ctx context.Context, b *bundle.Bundle, parentName string) (*bundle.Bundle, error) {
	var included []*bundle.Bundle
	var includedNames []string

	for _, inc := range b.Includes {
		if inc.Bundle == "" {
			continue
		}

		src, ok := r.resolveIncludeSource(inc.Bundle)
		if !ok {
			logging.RegistryWarn("include could not be resolved (skipping): %s", inc.Bundle)
			continue
		}

		child, err := r.loadSingle(ctx, src, true, true)
		if err != nil {
			var notFound *bundleerr.NotFoundError
			if errors.As(err, &notFound) {
				logging.RegistryWarn("include not found (skipping): %s: %v", inc.Bundle, err)
				continue
			}
			return nil, err
		}

		included = append(included, child)
		if child.Name != "" {
			includedNames = append(includedNames, child.Name)
		}
	}

	if len(included) == 0 {
		return b, nil
	}

	if parentName != "" && len(includedNames) > 0 {
		r.recordIncludeRelationships(parentName, includedNames)
	}

	result := included[0]
	if len(included) > 1 {
		result = result.Compose(included[1:]...)
	}
	return result.Compose(b), nil
}

// recordIncludeRelationships updates the parent's includes list and
// each child's included_by list, then persists (spec §4.6 step 8).
func (r *Registry) recordIncludeRelationships(parent string, children []string) {
	r.mu.Lock()
	if parentState, ok := r.states[parent]; ok {
		parentState.Includes = appendMissing(parentState.Includes, children...)
	}
	for _, child := range children {
		if childState, ok := r.states[child]; ok {
			childState.IncludedBy = appendMissing(childState.IncludedBy, parent)
		}
	}
	r.mu.Unlock()

	if err := r.Save(); err != nil {
		logging.RegistryWarn("failed to persist registry after recording includes: %v", err)
	}
}

func appendMissing(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}

// upsertLoadedState registers a bundle discovered during load (not via
// an explicit Register call) so its namespace is resolvable by later
// includes, per spec §4.6 step 6.
func (r *Registry) upsertLoadedState(name, uri, version, localPath string, isRoot bool, rootName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	v := version
	lp := localPath
	r.states[name] = &BundleState{
		URI:       uri,
		Name:      name,
		Version:   &v,
		LoadedAt:  &now,
		LocalPath: &lp,
		IsRoot:    isRoot,
		RootName:  rootName,
	}
}

// touchLoaded refreshes version/loaded_at/local_path for an
// already-registered name after a (re)load.
func (r *Registry) touchLoaded(name, version, localPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[name]
	if !ok {
		return
	}
	now := time.Now()
	v := version
	lp := localPath
	state.Version = &v
	state.LoadedAt = &now
	state.LocalPath = &lp
}

func (r *Registry) beginLoading(uri string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loading[uri] {
		return false
	}
	r.loading[uri] = true
	return true
}

func (r *Registry) endLoading(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loading, uri)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
