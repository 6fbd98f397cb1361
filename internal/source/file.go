package source

import (
	"context"
	"os"
	"path/filepath"

	"amplifier/internal/bundleerr"
	"amplifier/internal/uri"
)

// FileHandler resolves file:// URIs and local absolute/relative paths,
// against BasePath for the relative case.
type FileHandler struct {
	BasePath string
}

func (h *FileHandler) CanHandle(p uri.ParsedURI) bool {
	return p.Scheme == "file" || (p.Scheme == "" && p.IsFile())
}

func (h *FileHandler) Resolve(_ context.Context, p uri.ParsedURI, _ string) (ResolvedSource, error) {
	path := p.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.BasePath, path)
	}
	path = uri.NormalizePath(path)

	root := path
	active := path
	if p.Subpath != "" {
		active = filepath.Join(root, p.Subpath)
	}

	if _, err := os.Stat(active); err != nil {
		return ResolvedSource{}, bundleerr.NewNotFound(active, err)
	}

	return ResolvedSource{Active: active, Root: root}, nil
}
