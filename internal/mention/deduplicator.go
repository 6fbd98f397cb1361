package mention

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentDeduplicator tracks files already loaded by content hash, so the
// same file reached through two different mentions (or two different
// paths with identical content) is only surfaced once. It is not safe
// for concurrent use; each prompt assembly gets its own fresh instance.
type ContentDeduplicator struct {
	seen  map[string]bool
	files []ContextFile
}

// NewContentDeduplicator returns an empty deduplicator.
func NewContentDeduplicator() *ContentDeduplicator {
	return &ContentDeduplicator{seen: make(map[string]bool)}
}

// AddFile records path/content under mention's attribution and reports
// whether this content hash was new. A false return means the content
// was already seen (possibly under a different path or mention) and
// nothing was added.
func (d *ContentDeduplicator) AddFile(path, content, mention string) bool {
	hash := hashContent(content)
	if d.seen[hash] {
		return false
	}
	d.seen[hash] = true
	d.files = append(d.files, ContextFile{
		Path:        path,
		Content:     content,
		ContentHash: hash,
		Mention:     mention,
	})
	return true
}

// IsSeen reports whether content's hash has already been recorded,
// without adding it.
func (d *ContentDeduplicator) IsSeen(content string) bool {
	return d.seen[hashContent(content)]
}

// GetUniqueFiles returns the files added so far, in insertion order.
func (d *ContentDeduplicator) GetUniqueFiles() []ContextFile {
	out := make([]ContextFile, len(d.files))
	copy(out, d.files)
	return out
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
