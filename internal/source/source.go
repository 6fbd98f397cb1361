// Package source resolves a parsed bundle URI to a local filesystem
// location, via an ordered chain of handlers (file, git, zip, http) and
// a content-addressed on-disk cache.
package source

import (
	"context"

	"amplifier/internal/uri"
)

// ResolvedSource is the {active_path, source_root} split: for a plain
// file the two are equal; for a git clone with a #subdirectory, Active
// is the clone root plus the subdirectory while Root is the clone root
// itself. Bundle loading starts at Active and may walk upward (but never
// above Root) looking for a root bundle file.
type ResolvedSource struct {
	Active string
	Root   string
}

// Handler resolves one class of URI (file, git, zip, http) to a local
// path. Implementations must be safe for concurrent use.
type Handler interface {
	CanHandle(p uri.ParsedURI) bool
	Resolve(ctx context.Context, p uri.ParsedURI, cacheDir string) (ResolvedSource, error)
}
