package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"amplifier/internal/bundleerr"
	"amplifier/internal/logging"
	"amplifier/internal/uri"
)

// HTTPHandler resolves bare http(s):// URIs (not wrapped in git+/zip+)
// by downloading the referenced file into the cache, keyed by content
// hash of the URL.
type HTTPHandler struct {
	Client *http.Client
}

func (h *HTTPHandler) CanHandle(p uri.ParsedURI) bool {
	return p.IsHTTP()
}

func (h *HTTPHandler) Resolve(ctx context.Context, p uri.ParsedURI, cacheDir string) (ResolvedSource, error) {
	fullURL := fmt.Sprintf("%s://%s%s", p.Scheme, p.Host, p.Path)
	key := cacheKey(fullURL, "")

	name := filepath.Base(p.Path)
	if name == "" || name == "/" {
		name = "index"
	}
	dest := filepath.Join(cacheDir, key, name)

	if _, err := os.Stat(dest); err == nil {
		logging.SourceDebug("http cache hit: %s", dest)
		return ResolvedSource{Active: dest, Root: filepath.Dir(dest)}, nil
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return ResolvedSource{}, bundleerr.NewNotFound(fullURL, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return ResolvedSource{}, bundleerr.NewNotFound(fullURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ResolvedSource{}, bundleerr.NewNotFound(fullURL, fmt.Errorf("status %s", resp.Status))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return ResolvedSource{}, err
	}
	f, err := os.Create(dest)
	if err != nil {
		return ResolvedSource{}, err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return ResolvedSource{}, err
	}

	return ResolvedSource{Active: dest, Root: filepath.Dir(dest)}, nil
}
