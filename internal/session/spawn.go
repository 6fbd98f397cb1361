package session

import (
	"context"
	"fmt"

	"amplifier/internal/bundle"
)

// SpawnOptions configures Spawn (spec §4.7).
type SpawnOptions struct {
	Compose           bool
	ParentSession     Session
	SessionID         string
	OrchestratorConfig map[string]any
	ParentMessages    []Message
}

// SpawnResult is the mechanism's return value: the child's final
// response and the session ID it ran under.
type SpawnResult struct {
	Output    string
	SessionID string
}

// Spawn runs a child bundle as a sub-session of p, the mechanism side
// of delegation (spec §4.7): optionally composes the child onto p's
// bundle, builds its mount plan, passes opts.SessionID and the parent
// session's ID to the child (the parent's approval and display
// subsystems are not passed on), mounts the same module resolver, optionally seeds parent conversation history, installs the
// child's own dynamic prompt factory, executes instruction, and always
// cleans up afterward regardless of outcome.
func (p *PreparedBundle) Spawn(ctx context.Context, child *bundle.Bundle, instruction string, opts SpawnOptions) (SpawnResult, error) {
	if p.factory == nil {
		return SpawnResult{}, fmt.Errorf("session: no SessionFactory configured")
	}

	effective := child
	if opts.Compose {
		effective = p.Bundle.Compose(child)
	}

	mountPlan := effective.ToMountPlan()
	if len(opts.OrchestratorConfig) > 0 {
		mergeOrchestratorConfig(mountPlan, opts.OrchestratorConfig)
	}

	sessOpts := SessionOptions{MountPlan: mountPlan, SessionID: opts.SessionID}
	if opts.ParentSession != nil {
		sessOpts.ParentID = opts.ParentSession.SessionID()
	}

	childSession, err := p.factory(sessOpts)
	if err != nil {
		return SpawnResult{}, fmt.Errorf("spawn: create child session: %w", err)
	}

	coord := childSession.Coordinator()
	if err := coord.Mount(ctx, "module-source-resolver", p.Resolver); err != nil {
		return SpawnResult{}, fmt.Errorf("spawn: mount module resolver: %w", err)
	}
	if err := childSession.Initialize(ctx); err != nil {
		return SpawnResult{}, fmt.Errorf("spawn: initialize child session: %w", err)
	}

	if len(opts.ParentMessages) > 0 && opts.SessionID == "" {
		if capability, ok := coord.Get("context"); ok {
			if ctxManager, ok := capability.(ContextCapability); ok {
				if err := ctxManager.SetMessages(ctx, opts.ParentMessages); err != nil {
					return SpawnResult{}, fmt.Errorf("spawn: seed parent messages: %w", err)
				}
			}
		}
	}

	if effective.Instruction != "" || len(effective.Context) > 0 {
		if err := installDynamicPrompt(ctx, coord, effective); err != nil {
			return SpawnResult{}, fmt.Errorf("spawn: install system prompt: %w", err)
		}
	}

	output, execErr := childSession.Execute(ctx, instruction)
	cleanupErr := childSession.Cleanup(ctx)

	if execErr != nil {
		return SpawnResult{}, fmt.Errorf("spawn: execute: %w", execErr)
	}
	if cleanupErr != nil {
		return SpawnResult{}, fmt.Errorf("spawn: cleanup: %w", cleanupErr)
	}

	return SpawnResult{Output: output, SessionID: childSession.SessionID()}, nil
}

// mergeOrchestratorConfig deep-merges cfg under mountPlan's
// "orchestrator"."config" key, creating either level as needed (spec
// §4.7 step 2).
func mergeOrchestratorConfig(mountPlan map[string]any, cfg map[string]any) {
	orchAny, ok := mountPlan["orchestrator"].(map[string]any)
	if !ok {
		orchAny = map[string]any{}
		mountPlan["orchestrator"] = orchAny
	}
	existingCfg, ok := orchAny["config"].(map[string]any)
	if !ok {
		existingCfg = map[string]any{}
	}
	orchAny["config"] = bundle.DeepMerge(existingCfg, cfg)
}
