package registry

import (
	"os"
	"path/filepath"
	"strings"
)

// resolveIncludeSource turns one include directive into a loadable URI
// or local name, per spec §4.6 step 7:
//
//  1. Already a URI (contains "://" or starts with "git+") — returned
//     as-is.
//  2. "namespace:rest" — the namespace's recorded local_path anchors
//     rest, trying a handful of bundle-ish candidates; ok=false if the
//     namespace or none of the candidates can be found.
//  3. A plain name — returned as-is, left for loadSingle's own
//     registry lookup.
func (r *Registry) resolveIncludeSource(source string) (string, bool) {
	if strings.Contains(source, "://") || strings.HasPrefix(source, "git+") {
		return source, true
	}

	ns, rest, found := strings.Cut(source, ":")
	if !found {
		return source, true
	}

	localPath, ok := r.localPathOf(ns)
	if !ok {
		return "", false
	}

	var anchor string
	if info, err := os.Stat(localPath); err == nil && !info.IsDir() {
		anchor = filepath.Dir(localPath)
	} else {
		anchor = localPath
	}

	resourcePath := filepath.Join(anchor, rest)
	candidates := []string{
		resourcePath,
		resourcePath + ".yaml",
		resourcePath + ".yml",
		resourcePath + ".md",
		filepath.Join(resourcePath, "bundle.yaml"),
		filepath.Join(resourcePath, "bundle.md"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return "file://" + candidate, true
		}
	}

	return "", false
}

// findNearestBundleFile walks up from start to stop (inclusive) looking
// for bundle.md, then bundle.yaml, at each level. It never searches
// above stop.
func findNearestBundleFile(start, stop string) (string, bool) {
	current := filepath.Clean(start)
	stop = filepath.Clean(stop)

	for {
		if md := filepath.Join(current, "bundle.md"); fileExists(md) {
			return md, true
		}
		if yml := filepath.Join(current, "bundle.yaml"); fileExists(yml) {
			return yml, true
		}

		if current == stop {
			break
		}
		parent := filepath.Dir(current)
		if parent == current || !strings.HasPrefix(current, stop) {
			break
		}
		current = parent
	}

	return "", false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
