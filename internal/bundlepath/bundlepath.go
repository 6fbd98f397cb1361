// Package bundlepath builds filesystem paths to a bundle's named
// resources (agents, context files) from a base directory and a name.
// The Construct* helpers append ".md" unless the name already ends in
// it; ResolveExisting tries the name literally before the ".md" variant.
package bundlepath

import (
	"os"
	"path/filepath"
)

// ConstructAgentPath builds the path to an agent file under
// <base>/agents/<name>[.md].
func ConstructAgentPath(base, name string) string {
	if filepath.Ext(name) == ".md" {
		return filepath.Join(base, "agents", name)
	}
	return filepath.Join(base, "agents", name+".md")
}

// ConstructContextPath builds the path to a context file under
// <base>/context/<name>[.md].
func ConstructContextPath(base, name string) string {
	if filepath.Ext(name) == ".md" {
		return filepath.Join(base, "context", name)
	}
	return filepath.Join(base, "context", name+".md")
}

// ResolveExisting returns name's path under base if it exists literally,
// else the ".md"-suffixed variant if that exists, else "" with ok=false.
// Used for @path mentions that may omit the extension.
func ResolveExisting(base, name string) (path string, ok bool) {
	literal := filepath.Join(base, name)
	if _, err := os.Stat(literal); err == nil {
		return literal, true
	}
	withMD := literal + ".md"
	if _, err := os.Stat(withMD); err == nil {
		return withMD, true
	}
	return "", false
}
