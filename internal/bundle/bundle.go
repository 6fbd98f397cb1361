// Package bundle implements the composable configuration unit: its data
// model, the compose merge algebra, the mount-plan projection, and
// loading from markdown-with-frontmatter or plain YAML files.
package bundle

// Include is one entry of a Bundle's includes list: either a bare URI
// string or a record naming a bundle and an optional version pin.
type Include struct {
	Bundle  string
	Version string
}

// ModuleSpec is one entry of a providers/tools/hooks list.
type ModuleSpec struct {
	Module string
	Source string
	Config map[string]any
}

// Bundle is the core composable unit: mount-plan configuration plus the
// resources (agents, context files, instruction) that back it. A Bundle
// is logically immutable once compose returns it — compose always
// builds a new value rather than mutating receivers.
type Bundle struct {
	Name        string
	Version     string
	Description string
	Includes    []Include

	Session   map[string]any
	Providers []ModuleSpec
	Tools     []ModuleSpec
	Hooks     []ModuleSpec

	Agents  map[string]map[string]any
	Context map[string]string // name -> resolved filesystem path

	Instruction string

	BasePath        string
	SourceBasePaths map[string]string // namespace -> base_path
	PendingContext  map[string]string // name -> "ns:rest" awaiting resolution

	// SourceURI is the URI that produced this bundle, stamped by the
	// registry after load and (for composed results) after compose.
	SourceURI string
}

// New returns an empty Bundle with a default version, ready to accumulate
// fields via direct assignment or a Loader.
func New(name string) *Bundle {
	return &Bundle{
		Name:            name,
		Version:         "1.0.0",
		Session:         map[string]any{},
		Agents:          map[string]map[string]any{},
		Context:         map[string]string{},
		SourceBasePaths: map[string]string{},
		PendingContext:  map[string]string{},
	}
}

// NamespaceView adapts a plain base directory to mention.NamespaceProvider,
// so the registry/session layer can register a namespace for mention
// resolution without constructing a whole Bundle for it.
type NamespaceView string

// BasePath implements mention.NamespaceProvider.
func (n NamespaceView) BasePath() string { return string(n) }

// ToMountPlan projects the Bundle into the plain mapping consumed by a
// session: only non-empty sections are included, and each is a shallow
// copy so later mutation of the Bundle cannot leak into a plan already
// handed out.
func (b *Bundle) ToMountPlan() map[string]any {
	plan := map[string]any{}

	if len(b.Session) > 0 {
		plan["session"] = copyMap(b.Session)
	}
	if len(b.Providers) > 0 {
		plan["providers"] = append([]ModuleSpec(nil), b.Providers...)
	}
	if len(b.Tools) > 0 {
		plan["tools"] = append([]ModuleSpec(nil), b.Tools...)
	}
	if len(b.Hooks) > 0 {
		plan["hooks"] = append([]ModuleSpec(nil), b.Hooks...)
	}
	if len(b.Agents) > 0 {
		agents := make(map[string]map[string]any, len(b.Agents))
		for k, v := range b.Agents {
			agents[k] = copyMap(v)
		}
		plan["agents"] = agents
	}

	return plan
}

// ResolveContextPath resolves a registered or on-disk context file by
// name, trying the registered map first and falling back to
// <base_path>/context/<name>[.md].
func (b *Bundle) ResolveContextPath(name string) (string, bool) {
	if p, ok := b.Context[name]; ok {
		return p, true
	}
	if b.BasePath == "" {
		return "", false
	}
	return resolveExistingContextPath(b.BasePath, name)
}

// ResolveAgentPath resolves an agent file by name, handling both
// "namespace:agent" (looked up via SourceBasePaths) and plain names
// (looked up under BasePath).
func (b *Bundle) ResolveAgentPath(name string) (string, bool) {
	if ns, simple, found := cutNamespace(name); found {
		if base, ok := b.SourceBasePaths[ns]; ok {
			if p, ok := resolveAgentFile(base, simple); ok {
				return p, true
			}
		}
		if ns == b.Name && b.BasePath != "" {
			return resolveAgentFile(b.BasePath, simple)
		}
		return "", false
	}
	if b.BasePath == "" {
		return "", false
	}
	return resolveAgentFile(b.BasePath, name)
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
