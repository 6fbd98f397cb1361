// Package uri parses the bundle source URI grammar: git+<scheme>://,
// zip+<scheme>://, file://, absolute/relative local paths, http(s)://,
// and bare package-ish names, each optionally carrying a
// #subdirectory=<p> fragment or (for git/zip) a legacy @ref/subpath
// form.
package uri

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ParsedURI is the structured result of Parse.
type ParsedURI struct {
	Scheme string // "git+https", "zip+ssh", "file", "http", "https", or "" for paths/package names
	Host   string
	Path   string
	Ref    string
	Subpath string
}

// IsGit reports whether the URI uses a git+ scheme.
func (p ParsedURI) IsGit() bool { return strings.HasPrefix(p.Scheme, "git+") }

// IsZip reports whether the URI uses a zip+ scheme.
func (p ParsedURI) IsZip() bool { return strings.HasPrefix(p.Scheme, "zip+") }

// IsFile reports whether the URI refers to a local filesystem path,
// either explicitly (scheme "file") or implicitly (no scheme, path
// contains a "/").
func (p ParsedURI) IsFile() bool {
	return p.Scheme == "file" || (p.Scheme == "" && strings.Contains(p.Path, "/"))
}

// IsHTTP reports whether the URI uses http or https directly (not
// wrapped in git+/zip+).
func (p ParsedURI) IsHTTP() bool { return p.Scheme == "http" || p.Scheme == "https" }

// IsPackage reports whether the URI is a bare package-ish name: no
// scheme and no "/" in the path.
func (p ParsedURI) IsPackage() bool { return p.Scheme == "" && !strings.Contains(p.Path, "/") }

// Parse parses uri into a ParsedURI following the grammar documented on
// the package. Unknown schemes fall through to the package-ish form.
func Parse(uri string) (ParsedURI, error) {
	if uri == "" {
		return ParsedURI{}, fmt.Errorf("uri: empty string")
	}

	main, fragSubdir := splitFragment(uri)

	switch {
	case strings.HasPrefix(main, "git+"):
		return parseGitLike(main[len("git+"):], "git+", fragSubdir)
	case strings.HasPrefix(main, "zip+"):
		return parseGitLike(main[len("zip+"):], "zip+", fragSubdir)
	case strings.HasPrefix(main, "file://"):
		return parseFile(main[len("file://"):], fragSubdir)
	case strings.HasPrefix(main, "/"):
		return ParsedURI{Path: main, Subpath: fragSubdir}, nil
	case strings.HasPrefix(main, "./") || strings.HasPrefix(main, "../"):
		return ParsedURI{Path: main, Subpath: fragSubdir}, nil
	case strings.HasPrefix(main, "http://") || strings.HasPrefix(main, "https://"):
		return parseHTTP(main, fragSubdir)
	default:
		// Package-ish form: also catches unknown schemes (e.g. "ftp://...").
		return ParsedURI{Path: main, Subpath: fragSubdir}, nil
	}
}

// splitFragment separates uri into its main part and, if present, the
// value of the fragment's subdirectory= key (fragment keys are & joined;
// first subdirectory= wins).
func splitFragment(uri string) (main string, subdirectory string) {
	idx := strings.Index(uri, "#")
	if idx == -1 {
		return uri, ""
	}
	main = uri[:idx]
	fragment := uri[idx+1:]
	for _, kv := range strings.Split(fragment, "&") {
		if strings.HasPrefix(kv, "subdirectory=") {
			return main, strings.TrimPrefix(kv, "subdirectory=")
		}
	}
	return main, ""
}

// parseGitLike parses the portion after "git+"/"zip+": <scheme>://<host><path>[@ref[/legacy-subpath]].
func parseGitLike(rest string, prefix string, fragSubdir string) (ParsedURI, error) {
	schemeIdx := strings.Index(rest, "://")
	if schemeIdx == -1 {
		return ParsedURI{}, fmt.Errorf("uri: missing inner scheme in %q%s", prefix, rest)
	}
	innerScheme := rest[:schemeIdx]
	authorityAndPath := rest[schemeIdx+len("://"):]

	host, path := splitAuthority(authorityAndPath)

	ref, legacySubpath := "", ""
	if atIdx := strings.LastIndex(path, "@"); atIdx != -1 {
		afterAt := path[atIdx+1:]
		if slashIdx := strings.Index(afterAt, "/"); slashIdx != -1 {
			ref = afterAt[:slashIdx]
			legacySubpath = afterAt[slashIdx+1:]
		} else {
			ref = afterAt
		}
		path = path[:atIdx]
	}

	subpath := fragSubdir
	if subpath == "" {
		subpath = legacySubpath
	}

	return ParsedURI{
		Scheme:  prefix + innerScheme,
		Host:    host,
		Path:    path,
		Ref:     ref,
		Subpath: subpath,
	}, nil
}

func parseFile(rest string, fragSubdir string) (ParsedURI, error) {
	path := rest
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return ParsedURI{Scheme: "file", Path: path, Subpath: fragSubdir}, nil
}

func parseHTTP(main string, fragSubdir string) (ParsedURI, error) {
	schemeIdx := strings.Index(main, "://")
	scheme := main[:schemeIdx]
	authorityAndPath := main[schemeIdx+len("://"):]
	host, path := splitAuthority(authorityAndPath)

	return ParsedURI{Scheme: scheme, Host: host, Path: path, Subpath: fragSubdir}, nil
}

// splitAuthority splits "<host>/<path>" into its two parts; a missing
// "/" means the whole string is the host and path is empty.
func splitAuthority(authorityAndPath string) (host string, path string) {
	slashIdx := strings.Index(authorityAndPath, "/")
	if slashIdx == -1 {
		return authorityAndPath, ""
	}
	return authorityAndPath[:slashIdx], authorityAndPath[slashIdx:]
}

// NormalizePath expands a leading "~" to the user's home directory and
// cleans the result. The input is treated as a plain path: a string
// with a scheme is cleaned like any other path text.
func NormalizePath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Clean(path)
}
