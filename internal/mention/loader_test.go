package mention

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadMentionsResolvesTopLevelMention(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "notes.md", "leaf content")

	r := NewResolver(base)
	results := LoadMentions(context.Background(), "see @notes.md for detail", r, nil, 0)

	require.Len(t, results, 1)
	assert.True(t, results[0].Found())
	assert.Equal(t, "leaf content", results[0].Content)
}

func TestLoadMentionsUnresolvableMentionIsNotAnError(t *testing.T) {
	base := t.TempDir()
	r := NewResolver(base)
	results := LoadMentions(context.Background(), "see @missing.md", r, nil, 0)

	require.Len(t, results, 1)
	assert.False(t, results[0].Found())
	assert.Empty(t, results[0].Error)
}

func TestLoadMentionsRecursesIntoNestedMentions(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "top.md", "see @leaf.md")
	writeFile(t, base, "leaf.md", "bottom content")

	r := NewResolver(base)
	dedup := NewContentDeduplicator()
	LoadMentions(context.Background(), "@top.md", r, dedup, 0)

	files := dedup.GetUniqueFiles()
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = filepath.Base(f.Path)
	}
	assert.ElementsMatch(t, []string{"top.md", "leaf.md"}, paths)
}

func TestLoadMentionsSecondMentionOfSameContentHasNoContent(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "a.md", "shared")
	writeFile(t, base, "b.md", "shared")

	r := NewResolver(base)
	results := LoadMentions(context.Background(), "@a.md and @b.md", r, nil, 0)

	require.Len(t, results, 2)
	assert.True(t, results[0].Found())
	assert.False(t, results[1].Found())
	assert.NotEmpty(t, results[1].ResolvedPath)
}

func TestLoadMentionsStopsAtMaxDepth(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "l0.md", "@l1.md")
	writeFile(t, base, "l1.md", "@l2.md")
	writeFile(t, base, "l2.md", "bottom, never reached")

	r := NewResolver(base)
	dedup := NewContentDeduplicator()
	LoadMentions(context.Background(), "@l0.md", r, dedup, 1)

	files := dedup.GetUniqueFiles()
	paths := make(map[string]bool)
	for _, f := range files {
		paths[filepath.Base(f.Path)] = true
	}
	assert.True(t, paths["l0.md"])
	assert.True(t, paths["l1.md"])
	assert.False(t, paths["l2.md"])
}
