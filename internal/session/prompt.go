package session

import (
	"context"
	"fmt"
	"strings"

	"amplifier/internal/bundle"
	"amplifier/internal/logging"
	"amplifier/internal/mention"
	"amplifier/internal/retryio"
)

// buildMentionResolver registers one mention namespace per entry in
// b.SourceBasePaths plus b's own name (if not already present), each
// pointed at that namespace's base directory — mirroring the original's
// _build_bundles_for_resolver so "@foundation:context/..." resolves
// against foundation's base_path even when the active bundle is a
// sub-bundle of it.
func buildMentionResolver(b *bundle.Bundle) *mention.Resolver {
	r := mention.NewResolver(b.BasePath)

	for ns, base := range b.SourceBasePaths {
		if ns == "" || base == "" {
			continue
		}
		r.RegisterNamespace(ns, bundle.NamespaceView(base))
	}
	if b.Name != "" {
		if _, ok := b.SourceBasePaths[b.Name]; !ok && b.BasePath != "" {
			r.RegisterNamespace(b.Name, bundle.NamespaceView(b.BasePath))
		}
	}

	return r
}

// newSystemPromptFactory builds the dynamic system-prompt factory spec
// §4.7 installs whenever a bundle carries an instruction or context:
// every call re-reads b's context files from disk and re-resolves
// @mentions in the combined text from scratch, so edits during a
// session take effect on the very next prompt (grounded on the
// original's PreparedBundle._create_system_prompt_factory).
func newSystemPromptFactory(b *bundle.Bundle) SystemPromptFactory {
	resolver := buildMentionResolver(b)

	return func(ctx context.Context) (string, error) {
		var parts []string
		if b.Instruction != "" {
			parts = append(parts, b.Instruction)
		}

		for name, path := range b.Context {
			data, err := retryio.ReadFile(ctx, path)
			if err != nil {
				logging.SessionDebug("context file %q (%s) unreadable, skipping: %v", name, path, err)
				continue
			}
			parts = append(parts, fmt.Sprintf("# Context: %s\n\n%s", name, string(data)))
		}

		combined := strings.Join(parts, "\n\n---\n\n")

		factory := mention.NewPromptFactory(combined, resolver)
		return factory.Build(ctx), nil
	}
}
