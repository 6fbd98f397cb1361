package bundle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadMarkdownBundleParsesFrontmatterAndBody(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bundle.md"), "---\n"+
		"bundle:\n  name: demo\n  version: 2.0.0\n"+
		"providers:\n  - module: p1\n    config:\n      x: 1\n"+
		"---\n\nYou are a helpful assistant.\n")

	b, err := Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "demo", b.Name)
	assert.Equal(t, "2.0.0", b.Version)
	assert.Equal(t, "You are a helpful assistant.", b.Instruction)
	require.Len(t, b.Providers, 1)
	assert.Equal(t, "p1", b.Providers[0].Module)
	assert.Equal(t, dir, b.BasePath)
}

func TestLoadYAMLBundlePrefersOverMarkdownOnlyWhenMarkdownAbsent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bundle.yaml"), "bundle:\n  name: yamlonly\n")

	b, err := Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "yamlonly", b.Name)
	assert.Empty(t, b.Instruction)
}

func TestLoadDirectoryPrefersMarkdownOverYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bundle.yaml"), "bundle:\n  name: fromyaml\n")
	writeFile(t, filepath.Join(dir, "bundle.md"), "---\nbundle:\n  name: frommd\n---\n")

	b, err := Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "frommd", b.Name)
}

func TestLoadDirectoryMissingBundleFileIsLoadError(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(context.Background(), dir)
	require.Error(t, err)
}

func TestLoadNonexistentPathIsNotFound(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestFromDictAgentsIncludeBecomesStubs(t *testing.T) {
	data := map[string]any{
		"agents": map[string]any{
			"include": []any{"reviewer", "writer"},
			"custom":  map[string]any{"role": "direct"},
		},
	}
	b := FromDict(data, "/base")

	assert.Equal(t, map[string]any{"name": "reviewer"}, b.Agents["reviewer"])
	assert.Equal(t, map[string]any{"name": "writer"}, b.Agents["writer"])
	assert.Equal(t, map[string]any{"role": "direct"}, b.Agents["custom"])
}

func TestFromDictContextIncludeSplitsNamespacedAsPending(t *testing.T) {
	data := map[string]any{
		"context": map[string]any{
			"include": []any{"shared:guide", "local-note"},
			"direct":  "notes/direct.md",
		},
	}
	b := FromDict(data, "/base")

	assert.Equal(t, "shared:guide", b.PendingContext["shared:guide"])
	assert.Equal(t, filepath.Join("/base", "context", "local-note.md"), b.Context["local-note"])
	assert.Equal(t, filepath.Join("/base", "notes/direct.md"), b.Context["direct"])
}

func TestFromDictDefaultsVersionWhenMissing(t *testing.T) {
	b := FromDict(map[string]any{}, "/base")
	assert.Equal(t, "1.0.0", b.Version)
	assert.Equal(t, "", b.Name)
}
