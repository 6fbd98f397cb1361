package mention

import (
	"context"

	"amplifier/internal/logging"
	"amplifier/internal/retryio"
)

// DefaultMaxDepth bounds the recursive descent into mentions found
// inside already-loaded mention content, guarding against cycles formed
// by two files mentioning each other.
const DefaultMaxDepth = 10

// MentionResolver turns an @mention string into a filesystem path. It
// does not need to know whether the path exists; LoadMentions handles
// missing files opportunistically.
type MentionResolver interface {
	Resolve(mention string) (path string, ok bool)
}

// LoadMentions extracts every top-level @mention from text and resolves
// each one, recursing into the mentions found inside newly-loaded
// content up to maxDepth. A mention that cannot be resolved, cannot be
// read, or names content already seen by dedup comes back with an empty
// Content and is never an error — mentions are opportunistic by design.
// Results reflect only the top-level mentions in text; content
// discovered purely through recursion feeds dedup and the returned
// ContextFile list, but does not get its own top-level MentionResult.
func LoadMentions(ctx context.Context, text string, resolver MentionResolver, dedup *ContentDeduplicator, maxDepth int) []MentionResult {
	if dedup == nil {
		dedup = NewContentDeduplicator()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	mentions := ParseMentions(text)
	results := make([]MentionResult, 0, len(mentions))
	for _, m := range mentions {
		results = append(results, resolveOne(ctx, m, resolver, dedup, maxDepth, 0))
	}
	return results
}

func resolveOne(ctx context.Context, mention string, resolver MentionResolver, dedup *ContentDeduplicator, maxDepth, depth int) MentionResult {
	path, ok := resolver.Resolve(mention)
	if !ok {
		logging.MentionDebug("mention %q did not resolve to a path", mention)
		return MentionResult{Mention: mention}
	}

	data, err := retryio.ReadFile(ctx, path)
	if err != nil {
		logging.MentionDebug("mention %q resolved to %s but could not be read: %v", mention, path, err)
		return MentionResult{Mention: mention, ResolvedPath: path}
	}
	content := string(data)

	if !dedup.AddFile(path, content, mention) {
		logging.MentionDebug("mention %q resolved to already-seen content at %s", mention, path)
		return MentionResult{Mention: mention, ResolvedPath: path}
	}

	if depth < maxDepth {
		for _, nested := range ParseMentions(content) {
			resolveOne(ctx, nested, resolver, dedup, maxDepth, depth+1)
		}
	} else {
		logging.MentionWarn("mention recursion depth %d reached loading %s; stopping", depth, path)
	}

	return MentionResult{Mention: mention, ResolvedPath: path, Content: content}
}
