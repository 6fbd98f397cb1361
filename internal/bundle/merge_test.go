package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepMergeRecursesOnSharedMapKeys(t *testing.T) {
	base := map[string]any{"orchestrator": map[string]any{"module": "m1", "config": map[string]any{"a": 1}}}
	override := map[string]any{"orchestrator": map[string]any{"config": map[string]any{"b": 2}}}

	result := DeepMerge(base, override)

	assert.Equal(t, "m1", result["orchestrator"].(map[string]any)["module"])
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, result["orchestrator"].(map[string]any)["config"])
}

func TestDeepMergeScalarOverrideReplacesOutright(t *testing.T) {
	base := map[string]any{"context": "string-form"}
	override := map[string]any{"context": map[string]any{"module": "m"}}

	result := DeepMerge(base, override)

	assert.Equal(t, map[string]any{"module": "m"}, result["context"])
}

func TestDeepMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"k": map[string]any{"a": 1}}
	override := map[string]any{"k": map[string]any{"b": 2}}

	_ = DeepMerge(base, override)

	assert.Equal(t, map[string]any{"a": 1}, base["k"])
	assert.Equal(t, map[string]any{"b": 2}, override["k"])
}

func TestMergeModuleListsMergesConfigAndPreservesOrder(t *testing.T) {
	base := []ModuleSpec{{Module: "a", Config: map[string]any{"x": 1}}, {Module: "b"}}
	override := []ModuleSpec{{Module: "b", Source: "new-source"}, {Module: "c"}}

	result := mergeModuleLists(base, override)

	var got []string
	for _, m := range result {
		got = append(got, m.Module)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, "new-source", result[1].Source)
}
