package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddFileReturnsTrueForNewContent(t *testing.T) {
	d := NewContentDeduplicator()
	assert.True(t, d.AddFile("/a.md", "hello", "@a.md"))
	assert.Len(t, d.GetUniqueFiles(), 1)
}

func TestAddFileReturnsFalseForDuplicateContent(t *testing.T) {
	d := NewContentDeduplicator()
	assert.True(t, d.AddFile("/a.md", "hello", "@a.md"))
	assert.False(t, d.AddFile("/b.md", "hello", "@b.md"))
	assert.Len(t, d.GetUniqueFiles(), 1)
}

func TestIsSeenWithoutAdding(t *testing.T) {
	d := NewContentDeduplicator()
	assert.False(t, d.IsSeen("hello"))
	d.AddFile("/a.md", "hello", "@a.md")
	assert.True(t, d.IsSeen("hello"))
}

func TestGetUniqueFilesPreservesInsertionOrder(t *testing.T) {
	d := NewContentDeduplicator()
	d.AddFile("/b.md", "second", "@b.md")
	d.AddFile("/a.md", "first", "@a.md")

	files := d.GetUniqueFiles()
	assert.Equal(t, "/b.md", files[0].Path)
	assert.Equal(t, "/a.md", files[1].Path)
}
