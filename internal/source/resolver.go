package source

import (
	"context"
	"time"

	"amplifier/internal/bundleerr"
	"amplifier/internal/uri"
)

// Resolver is the ordered chain of handlers: first match wins. The
// default order is file, then git, then zip, then http; custom handlers
// added via AddHandler take priority over all defaults.
type Resolver struct {
	CacheDir string
	handlers []Handler
}

// NewResolver builds a Resolver with the default handler chain.
// basePath anchors relative file:// paths; gitDepth/gitTimeout configure
// the git handler's shallow clone.
func NewResolver(cacheDir, basePath string, gitDepth int, gitTimeout time.Duration) *Resolver {
	return &Resolver{
		CacheDir: cacheDir,
		handlers: []Handler{
			&FileHandler{BasePath: basePath},
			&GitHandler{Depth: gitDepth, CloneTimeout: gitTimeout},
			&ZipHandler{},
			&HTTPHandler{},
		},
	}
}

// AddHandler registers a custom handler with priority over the default
// chain. Handlers added later take precedence over handlers added
// earlier (each is prepended).
func (r *Resolver) AddHandler(h Handler) {
	r.handlers = append([]Handler{h}, r.handlers...)
}

// Resolve parses rawURI and resolves it through the handler chain.
func (r *Resolver) Resolve(ctx context.Context, rawURI string) (ResolvedSource, error) {
	parsed, err := uri.Parse(rawURI)
	if err != nil {
		return ResolvedSource{}, err
	}
	return r.ResolveParsed(ctx, parsed)
}

// ResolveParsed resolves an already-parsed URI through the handler
// chain, for callers that already hold a ParsedURI (Resolve uses it
// after parsing).
func (r *Resolver) ResolveParsed(ctx context.Context, parsed uri.ParsedURI) (ResolvedSource, error) {
	for _, h := range r.handlers {
		if h.CanHandle(parsed) {
			return h.Resolve(ctx, parsed, r.CacheDir)
		}
	}
	return ResolvedSource{}, bundleerr.NewNotFound(parsed.Path, nil)
}
