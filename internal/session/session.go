// Package session implements the capability-contract side of spec §6:
// the minimum session/coordinator/context surface the core depends on,
// and the PreparedBundle mechanism (C8) that turns a loaded Bundle into
// a running session or a spawned sub-session.
//
// The concrete session runtime (AmplifierSession-equivalent) lives
// outside this module; this package only defines the interfaces it
// must satisfy and the mechanism that drives them.
package session

import "context"

// Message is one turn of conversation history, passed across the
// parent/child session boundary during Spawn (spec §4.7 step 5).
type Message struct {
	Role    string
	Content string
}

// SystemPromptFactory produces the current system prompt on demand. It
// is called on every request so that edited context files and bundle
// instructions take effect without restarting the session (spec §4.7:
// "installs the dynamic system-prompt factory").
type SystemPromptFactory func(ctx context.Context) (string, error)

// ContextCapability is the sliver of the session's context manager this
// package needs: registering conversation history and the dynamic
// prompt factory (spec §6).
type ContextCapability interface {
	AddMessage(ctx context.Context, msg Message) error
	SetMessages(ctx context.Context, msgs []Message) error
	SetSystemPromptFactory(ctx context.Context, factory SystemPromptFactory) error
}

// Coordinator is the session's module-mounting and capability-registry
// surface (spec §6: "coordinator.mount", "coordinator.register_capability",
// "coordinator.get").
type Coordinator interface {
	Mount(ctx context.Context, name string, resolver ModuleResolver) error
	RegisterCapability(name string, value any) error
	Get(name string) (any, bool)
}

// Session is the minimal lifecycle surface PreparedBundle drives (spec
// §6): initialize, execute, cleanup, and an assigned ID.
type Session interface {
	Coordinator() Coordinator
	Initialize(ctx context.Context) error
	Execute(ctx context.Context, prompt string) (string, error)
	Cleanup(ctx context.Context) error
	SessionID() string
}

// ModuleResolver maps a module ID to its activated local path, mounted
// on the coordinator under the "module-source-resolver" capability name
// (spec §6, §4.7 step 6).
type ModuleResolver interface {
	ResolveModule(moduleID string) (string, bool)
}

// SessionFactory constructs a new Session from a mount plan and the
// optional session/parent identifiers and approval/display subsystems
// to inherit — the seam where an external session runtime plugs in,
// since this module defines the contract but not the runtime (spec §6).
type SessionFactory func(opts SessionOptions) (Session, error)

// SessionOptions carries everything CreateSession/Spawn need to hand to
// a SessionFactory, mirroring the original's AmplifierSession
// constructor arguments.
type SessionOptions struct {
	MountPlan      map[string]any
	SessionID      string
	ParentID       string
	ApprovalSystem any
	DisplaySystem  any
}
