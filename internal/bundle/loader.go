package bundle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"amplifier/internal/bundleerr"
	"amplifier/internal/bundlepath"
	"amplifier/internal/logging"
	"amplifier/internal/retryio"

	"gopkg.in/yaml.v3"
)

// Load reads a bundle from a local path: a directory (tried as
// bundle.md then bundle.yaml), a markdown-with-frontmatter file, or a
// plain YAML file. Returns a *bundleerr.LoadError for anything else.
func Load(ctx context.Context, path string) (*Bundle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, bundleerr.NewNotFound(path, err)
	}

	if info.IsDir() {
		if md := filepath.Join(path, "bundle.md"); fileExists(md) {
			return loadMarkdown(ctx, md)
		}
		if yml := filepath.Join(path, "bundle.yaml"); fileExists(yml) {
			return loadYAML(ctx, yml)
		}
		return nil, bundleerr.NewLoadError(path, fmt.Errorf("missing bundle.md or bundle.yaml"))
	}

	switch filepath.Ext(path) {
	case ".md":
		return loadMarkdown(ctx, path)
	case ".yaml", ".yml":
		return loadYAML(ctx, path)
	default:
		return nil, bundleerr.NewLoadError(path, fmt.Errorf("unrecognized bundle file extension"))
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadMarkdown(ctx context.Context, path string) (*Bundle, error) {
	data, err := retryio.ReadFile(ctx, path)
	if err != nil {
		return nil, bundleerr.NewLoadError(path, err)
	}

	fm, body, err := parseFrontmatter(data)
	if err != nil {
		return nil, bundleerr.NewLoadError(path, err)
	}

	var raw map[string]any
	if len(fm) > 0 {
		if err := yaml.Unmarshal(fm, &raw); err != nil {
			return nil, bundleerr.NewLoadError(path, fmt.Errorf("parse frontmatter: %w", err))
		}
	}

	b := FromDict(raw, filepath.Dir(path))
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		b.Instruction = trimmed
	}

	logging.BundleDebug("loaded markdown bundle %s (name=%q)", path, b.Name)
	return b, nil
}

func loadYAML(ctx context.Context, path string) (*Bundle, error) {
	data, err := retryio.ReadFile(ctx, path)
	if err != nil {
		return nil, bundleerr.NewLoadError(path, err)
	}

	var raw map[string]any
	if strings.TrimSpace(string(data)) != "" {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, bundleerr.NewLoadError(path, fmt.Errorf("parse yaml: %w", err))
		}
	}

	b := FromDict(raw, filepath.Dir(path))
	logging.BundleDebug("loaded yaml bundle %s (name=%q)", path, b.Name)
	return b, nil
}

// FromDict constructs a Bundle from a parsed frontmatter/YAML mapping.
// It normalizes the agents.include and context.include sugar (spec
// §4.5): an agents.include list becomes {name: {name: name}} stubs, and
// a context.include entry is either deferred (namespaced "ns:rest",
// stored in PendingContext) or resolved immediately against basePath.
func FromDict(data map[string]any, basePath string) *Bundle {
	meta, _ := data["bundle"].(map[string]any)

	b := New(stringField(meta, "name", ""))
	b.Version = stringField(meta, "version", "1.0.0")
	b.Description = stringField(meta, "description", "")
	b.Includes = parseIncludes(data["includes"])
	b.Session = toStringMap(data["session"])
	b.Providers = parseModuleSpecs(data["providers"])
	b.Tools = parseModuleSpecs(data["tools"])
	b.Hooks = parseModuleSpecs(data["hooks"])
	b.Agents = parseAgents(toStringMap(data["agents"]))
	b.BasePath = basePath

	b.Context, b.PendingContext = parseContext(toStringMap(data["context"]), basePath)

	return b
}

func stringField(m map[string]any, key, def string) string {
	if m == nil {
		return def
	}
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return def
}

func toStringMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func toAnySlice(v any) []any {
	items, _ := v.([]any)
	return items
}

func parseIncludes(v any) []Include {
	items := toAnySlice(v)
	if len(items) == 0 {
		return nil
	}
	out := make([]Include, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case string:
			if t != "" {
				out = append(out, Include{Bundle: t})
			}
		case map[string]any:
			inc := Include{}
			if s, ok := t["bundle"].(string); ok {
				inc.Bundle = s
			}
			if s, ok := t["version"].(string); ok {
				inc.Version = s
			}
			if inc.Bundle != "" {
				out = append(out, inc)
			}
		}
	}
	return out
}

func parseModuleSpecs(v any) []ModuleSpec {
	items := toAnySlice(v)
	if len(items) == 0 {
		return nil
	}
	out := make([]ModuleSpec, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		spec := ModuleSpec{}
		if s, ok := m["module"].(string); ok {
			spec.Module = s
		}
		if s, ok := m["source"].(string); ok {
			spec.Source = s
		}
		if cfg, ok := m["config"].(map[string]any); ok {
			spec.Config = cfg
		}
		out = append(out, spec)
	}
	return out
}

func parseAgents(m map[string]any) map[string]map[string]any {
	result := make(map[string]map[string]any)
	for _, v := range toAnySlice(m["include"]) {
		if name, ok := v.(string); ok && name != "" {
			result[name] = map[string]any{"name": name}
		}
	}
	for key, v := range m {
		if key == "include" {
			continue
		}
		if def, ok := v.(map[string]any); ok {
			result[key] = def
		}
	}
	return result
}

func parseContext(m map[string]any, basePath string) (resolved map[string]string, pending map[string]string) {
	resolved = make(map[string]string)
	pending = make(map[string]string)

	for _, v := range toAnySlice(m["include"]) {
		name, ok := v.(string)
		if !ok || name == "" {
			continue
		}
		if strings.Contains(name, ":") {
			pending[name] = name
			continue
		}
		if basePath != "" {
			resolved[name] = bundlepath.ConstructContextPath(basePath, name)
		}
	}

	for key, v := range m {
		if key == "include" {
			continue
		}
		rel, ok := v.(string)
		if !ok {
			continue
		}
		if basePath != "" {
			resolved[key] = filepath.Join(basePath, rel)
		} else {
			resolved[key] = rel
		}
	}

	return resolved, pending
}
