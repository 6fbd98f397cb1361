package bundle

import "strings"

// Compose returns a new Bundle built by folding others onto b, left to
// right. Each field follows its own merge rule (spec §4.4):
//
//   - name/version: later non-empty wins
//   - description: later non-empty wins
//   - session: recursive map merge (DeepMerge)
//   - providers/tools/hooks: merge by Module, first-seen order preserved
//   - agents: later overrides earlier at the whole-record level
//   - context: accumulative, each side's unprefixed keys are namespaced
//     by that bundle's own Name before folding in
//   - instruction/base_path: later non-empty wins
//   - source_base_paths: union, first write wins
//
// b itself is never mutated; Compose always builds a new value.
func (b *Bundle) Compose(others ...*Bundle) *Bundle {
	result := b.seedForCompose()

	for _, other := range others {
		if other == nil {
			continue
		}

		// source_base_paths folds in before anything else, first-write-wins,
		// so values the registry already recorded (e.g. a subdirectory
		// bundle's source_root) are never clobbered by a later include.
		for ns, path := range other.SourceBasePaths {
			if _, ok := result.SourceBasePaths[ns]; !ok {
				result.SourceBasePaths[ns] = path
			}
		}
		if other.Name != "" && other.BasePath != "" {
			if _, ok := result.SourceBasePaths[other.Name]; !ok {
				result.SourceBasePaths[other.Name] = other.BasePath
			}
		}

		if other.Name != "" {
			result.Name = other.Name
		}
		if other.Version != "" {
			result.Version = other.Version
		}
		if other.Description != "" {
			result.Description = other.Description
		}

		result.Session = DeepMerge(result.Session, other.Session)

		result.Providers = mergeModuleLists(result.Providers, other.Providers)
		result.Tools = mergeModuleLists(result.Tools, other.Tools)
		result.Hooks = mergeModuleLists(result.Hooks, other.Hooks)

		for name, def := range other.Agents {
			result.Agents[name] = def
		}

		for key, path := range other.Context {
			prefixed := key
			if other.Name != "" && !strings.Contains(key, ":") {
				prefixed = other.Name + ":" + key
			}
			result.Context[prefixed] = path
		}

		for name, ref := range other.PendingContext {
			result.PendingContext[name] = ref
		}

		if other.Instruction != "" {
			result.Instruction = other.Instruction
		}

		if other.BasePath != "" {
			result.BasePath = other.BasePath
		}
	}

	return result
}

// seedForCompose builds Compose's starting accumulator: a deep-enough
// copy of b with its own context keys namespace-prefixed exactly once,
// regardless of how many times b goes on to serve as the left operand
// of a compose chain.
func (b *Bundle) seedForCompose() *Bundle {
	sourceBasePaths := make(map[string]string, len(b.SourceBasePaths)+1)
	for k, v := range b.SourceBasePaths {
		sourceBasePaths[k] = v
	}
	if b.Name != "" && b.BasePath != "" {
		if _, ok := sourceBasePaths[b.Name]; !ok {
			sourceBasePaths[b.Name] = b.BasePath
		}
	}

	context := make(map[string]string, len(b.Context))
	for key, path := range b.Context {
		prefixed := key
		if b.Name != "" && !strings.Contains(key, ":") {
			prefixed = b.Name + ":" + key
		}
		context[prefixed] = path
	}

	pending := make(map[string]string, len(b.PendingContext))
	for k, v := range b.PendingContext {
		pending[k] = v
	}

	agents := make(map[string]map[string]any, len(b.Agents))
	for k, v := range b.Agents {
		agents[k] = copyMap(v)
	}

	return &Bundle{
		Name:            b.Name,
		Version:         b.Version,
		Description:     b.Description,
		Includes:        append([]Include(nil), b.Includes...),
		Session:         copyMap(b.Session),
		Providers:       append([]ModuleSpec(nil), b.Providers...),
		Tools:           append([]ModuleSpec(nil), b.Tools...),
		Hooks:           append([]ModuleSpec(nil), b.Hooks...),
		Agents:          agents,
		Context:         context,
		PendingContext:  pending,
		Instruction:     b.Instruction,
		BasePath:        b.BasePath,
		SourceBasePaths: sourceBasePaths,
		SourceURI:       b.SourceURI,
	}
}
