package mention

import (
	"path/filepath"
	"strings"

	"amplifier/internal/bundlepath"
)

// NamespaceProvider is the sliver of a loaded bundle that a mention
// resolver needs: its base directory, for resolving @ns:rest mentions
// into that bundle's context files. bundle.Bundle stores its base
// directory in a BasePath field rather than a method, so callers wrap
// the directory in an adapter (bundle.NamespaceView); this package does
// not import the bundle package.
type NamespaceProvider interface {
	BasePath() string
}

// Resolver turns an @mention string into a filesystem path, without
// reading the file. @path mentions resolve relative to BasePath;
// @ns:rest mentions look ns up among the registered namespaces and
// resolve rest under that bundle's context directory.
type Resolver struct {
	BasePath string
	bundles  map[string]NamespaceProvider
}

// NewResolver returns a Resolver rooted at basePath with no namespaces
// registered yet.
func NewResolver(basePath string) *Resolver {
	return &Resolver{BasePath: basePath, bundles: make(map[string]NamespaceProvider)}
}

// RegisterNamespace makes name resolvable as the "ns" half of an
// @ns:rest mention.
func (r *Resolver) RegisterNamespace(name string, b NamespaceProvider) {
	r.bundles[name] = b
}

// Resolve implements the MentionResolver interface used by LoadMentions.
func (r *Resolver) Resolve(mention string) (string, bool) {
	body := strings.TrimPrefix(mention, "@")
	if body == "" {
		return "", false
	}

	if ns, rest, found := strings.Cut(body, ":"); found {
		b, ok := r.bundles[ns]
		if !ok {
			return "", false
		}
		contextDir := filepath.Join(b.BasePath(), "context")
		return bundlepath.ResolveExisting(contextDir, rest)
	}

	return bundlepath.ResolveExisting(r.BasePath, body)
}
