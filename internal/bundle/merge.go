package bundle

// DeepMerge merges override onto base: for every key present in both
// sides as map[string]any, the merge recurses; for every other key,
// override's value wins outright (scalars, slices, and mismatched
// types are never merged, only replaced). base is not mutated.
func DeepMerge(base, override map[string]any) map[string]any {
	result := copyMap(base)
	for k, v := range override {
		if overrideMap, ok := v.(map[string]any); ok {
			if baseMap, ok := result[k].(map[string]any); ok {
				result[k] = DeepMerge(baseMap, overrideMap)
				continue
			}
		}
		result[k] = v
	}
	return result
}

// mergeModuleLists merges two module-spec lists by Module key, preserving
// first-seen order (base, then any override entries not already in
// base). When a module appears in both, Source is later-wins and Config
// is deep-merged; Module identity itself never changes.
func mergeModuleLists(base, override []ModuleSpec) []ModuleSpec {
	result := append([]ModuleSpec(nil), base...)
	index := make(map[string]int, len(result))
	for i, m := range result {
		index[m.Module] = i
	}

	for _, om := range override {
		if i, ok := index[om.Module]; ok {
			existing := result[i]
			merged := existing
			if om.Source != "" {
				merged.Source = om.Source
			}
			merged.Config = DeepMerge(existing.Config, om.Config)
			result[i] = merged
			continue
		}
		index[om.Module] = len(result)
		result = append(result, om)
	}

	return result
}
