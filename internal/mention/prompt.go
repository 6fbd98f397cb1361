package mention

import (
	"context"
	"fmt"
	"strings"
)

// PromptFactory assembles a system prompt from a static instruction plus
// the content reachable from its @mentions. Build re-reads every
// mentioned file from disk and starts from a fresh deduplicator on every
// call, so edits to mentioned files are picked up without restarting
// whatever holds the factory; it is safe to call Build concurrently from
// unrelated goroutines, since each call owns its own deduplicator.
type PromptFactory struct {
	Instruction string
	Resolver    MentionResolver
	MaxDepth    int
}

// NewPromptFactory returns a factory for instruction, resolving mentions
// through resolver with the default recursion depth.
func NewPromptFactory(instruction string, resolver MentionResolver) *PromptFactory {
	return &PromptFactory{Instruction: instruction, Resolver: resolver, MaxDepth: DefaultMaxDepth}
}

// Build assembles the full prompt: a context block listing every unique
// mentioned file, followed by the original instruction text unchanged.
func (f *PromptFactory) Build(ctx context.Context) string {
	dedup := NewContentDeduplicator()
	LoadMentions(ctx, f.Instruction, f.Resolver, dedup, f.MaxDepth)

	files := dedup.GetUniqueFiles()
	if len(files) == 0 {
		return f.Instruction
	}
	return formatContextBlock(files) + "\n\n" + f.Instruction
}

func formatContextBlock(files []ContextFile) string {
	var b strings.Builder
	b.WriteString("<context>\n")
	for _, cf := range files {
		label := cf.Mention
		if label == "" {
			label = cf.Path
		}
		fmt.Fprintf(&b, "<file source=%q path=%q>\n%s\n</file>\n", label, cf.Path, cf.Content)
	}
	b.WriteString("</context>")
	return b.String()
}
