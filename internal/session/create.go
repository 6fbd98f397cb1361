package session

import (
	"context"
	"fmt"

	"amplifier/internal/bundle"
	"amplifier/internal/mention"
)

// CreateSession builds a Session from the mount plan, mounts the module
// resolver, registers bundle package paths, initializes the session,
// and — if the bundle carries any instruction or context — installs the
// dynamic system-prompt factory and the mention_resolver/
// mention_deduplicator capabilities (spec §4.7).
func (p *PreparedBundle) CreateSession(ctx context.Context, opts SessionOptions) (Session, error) {
	if p.factory == nil {
		return nil, fmt.Errorf("session: no SessionFactory configured")
	}

	opts.MountPlan = p.MountPlan
	sess, err := p.factory(opts)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	coord := sess.Coordinator()
	if err := coord.Mount(ctx, "module-source-resolver", p.Resolver); err != nil {
		return nil, fmt.Errorf("mount module resolver: %w", err)
	}

	if len(p.BundlePackagePaths) > 0 {
		if err := coord.RegisterCapability("bundle_package_paths", append([]string(nil), p.BundlePackagePaths...)); err != nil {
			return nil, fmt.Errorf("register bundle_package_paths: %w", err)
		}
	}

	if err := sess.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize session: %w", err)
	}

	p.Bundle.ResolvePendingContext()

	if p.Bundle.Instruction != "" || len(p.Bundle.Context) > 0 || len(p.Bundle.PendingContext) > 0 {
		if err := installDynamicPrompt(ctx, coord, p.Bundle); err != nil {
			return nil, err
		}
	}

	return sess, nil
}

// installDynamicPrompt registers the mention_resolver and
// mention_deduplicator capabilities (for tools like a filesystem reader
// to resolve @mention paths) and the dynamic system-prompt factory
// itself, mirroring the original's separate, tool-facing resolver/
// deduplicator instances alongside the factory's own internally
// re-instantiated pair.
func installDynamicPrompt(ctx context.Context, coord Coordinator, b *bundle.Bundle) error {
	resolver := buildMentionResolver(b)
	if err := coord.RegisterCapability("mention_resolver", resolver); err != nil {
		return fmt.Errorf("register mention_resolver: %w", err)
	}
	if err := coord.RegisterCapability("mention_deduplicator", mention.NewContentDeduplicator()); err != nil {
		return fmt.Errorf("register mention_deduplicator: %w", err)
	}

	contextCap, ok := coord.Get("context")
	if !ok {
		return nil
	}
	ctxManager, ok := contextCap.(ContextCapability)
	if !ok {
		return nil
	}

	return ctxManager.SetSystemPromptFactory(ctx, newSystemPromptFactory(b))
}
