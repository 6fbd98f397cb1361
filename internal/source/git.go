package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"amplifier/internal/bundleerr"
	"amplifier/internal/logging"
	"amplifier/internal/uri"
)

// GitHandler resolves git+<scheme>:// URIs by shallow-cloning into a
// content-addressed cache directory.
type GitHandler struct {
	Depth        int           // 0 disables --depth (full clone)
	CloneTimeout time.Duration // 0 disables the timeout
}

func (h *GitHandler) CanHandle(p uri.ParsedURI) bool {
	return p.IsGit()
}

func (h *GitHandler) Resolve(ctx context.Context, p uri.ParsedURI, cacheDir string) (ResolvedSource, error) {
	innerScheme := strings.TrimPrefix(p.Scheme, "git+")
	gitURL := fmt.Sprintf("%s://%s%s", innerScheme, p.Host, p.Path)

	key := cacheKey(gitURL, p.Ref)
	repoName := filepath.Base(p.Path)
	root := filepath.Join(cacheDir, fmt.Sprintf("%s-%s", repoName, key))

	active := root
	if p.Subpath != "" {
		active = filepath.Join(root, p.Subpath)
	}

	if _, err := os.Stat(root); err == nil {
		if _, err := os.Stat(active); err == nil {
			logging.SourceDebug("git cache hit: %s", root)
			return ResolvedSource{Active: active, Root: root}, nil
		}
		return ResolvedSource{}, bundleerr.NewNotFound(active, fmt.Errorf("subdirectory %q not found in cached clone %s", p.Subpath, root))
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return ResolvedSource{}, fmt.Errorf("create cache dir: %w", err)
	}

	cloneCtx := ctx
	if h.CloneTimeout > 0 {
		var cancel context.CancelFunc
		cloneCtx, cancel = context.WithTimeout(ctx, h.CloneTimeout)
		defer cancel()
	}

	args := []string{"clone"}
	if h.Depth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", h.Depth))
	}
	if p.Ref != "" {
		args = append(args, "--branch", p.Ref)
	}
	args = append(args, gitURL, root)

	logging.Source("cloning %s (ref=%q) into %s", gitURL, p.Ref, root)

	cmd := exec.CommandContext(cloneCtx, "git", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return ResolvedSource{}, bundleerr.NewNotFound(gitURL, fmt.Errorf("git clone failed: %w: %s", err, stderr.String()))
	}

	if _, err := os.Stat(active); err != nil {
		return ResolvedSource{}, bundleerr.NewNotFound(active, fmt.Errorf("subdirectory %q not found after clone", p.Subpath))
	}

	return ResolvedSource{Active: active, Root: root}, nil
}

// cacheKey returns the first 16 hex characters of
// sha256(url + "@" + ref), the content-addressed cache key for a
// git/zip source.
func cacheKey(url, ref string) string {
	sum := sha256.Sum256([]byte(url + "@" + ref))
	return hex.EncodeToString(sum[:])[:16]
}
