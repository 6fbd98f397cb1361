package bundle

import (
	"path/filepath"
	"strings"

	"amplifier/internal/bundlepath"
)

// resolveContextPath builds the path a context entry resolves to under
// base, the same way bundlepath.ConstructContextPath does for parsed
// frontmatter — used by ResolvePendingContext once a namespace's base
// directory becomes known.
func resolveContextPath(base, rest string) string {
	return bundlepath.ConstructContextPath(base, rest)
}

// resolveExistingContextPath looks for name (then name+".md") under
// base's context/ directory, returning ok=false if neither exists.
func resolveExistingContextPath(base, name string) (string, bool) {
	return bundlepath.ResolveExisting(filepath.Join(base, "context"), name)
}

// resolveAgentFile looks for name (then name+".md") under base's
// agents/ directory.
func resolveAgentFile(base, name string) (string, bool) {
	return bundlepath.ResolveExisting(filepath.Join(base, "agents"), name)
}

// cutNamespace splits "ns:rest" into its two halves; found is false for
// a name with no ":".
func cutNamespace(name string) (ns string, rest string, found bool) {
	return strings.Cut(name, ":")
}
