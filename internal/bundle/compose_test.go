package bundle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeMergesModuleConfigByModuleKey(t *testing.T) {
	// S1 from the end-to-end scenario set.
	base := New("base")
	base.Providers = []ModuleSpec{{Module: "p", Config: map[string]any{"x": 1, "y": 2}}}

	over := New("over")
	over.Providers = []ModuleSpec{{Module: "p", Config: map[string]any{"y": 3, "z": 4}}}

	result := base.Compose(over)

	require.Len(t, result.Providers, 1)
	assert.Equal(t, "p", result.Providers[0].Module)
	assert.Equal(t, map[string]any{"x": 1, "y": 3, "z": 4}, result.Providers[0].Config)
	assert.Equal(t, "over", result.Name)
}

func TestComposeWithEmptyBundlePreservesFieldsAndPrefixesContextOnce(t *testing.T) {
	// Law 3: compose identity (right), modulo the one-time context prefix.
	b := New("mine")
	b.Context["guide"] = "/tmp/mine/context/guide.md"
	b.Instruction = "hello"

	result := b.Compose(New(""))

	assert.Equal(t, "mine", result.Name)
	assert.Equal(t, "hello", result.Instruction)
	assert.Equal(t, map[string]string{"mine:guide": "/tmp/mine/context/guide.md"}, result.Context)
}

func TestComposeIsAssociativeOnMergeableSections(t *testing.T) {
	// Law 4: A.compose(B).compose(C) == A.compose(B, C) for session/
	// providers/tools/hooks/agents.
	a := New("a")
	a.Session = map[string]any{"orchestrator": "x"}
	a.Providers = []ModuleSpec{{Module: "p1", Config: map[string]any{"k": 1}}}
	a.Agents = map[string]map[string]any{"helper": {"role": "a"}}

	b := New("b")
	b.Session = map[string]any{"context": "y"}
	b.Providers = []ModuleSpec{{Module: "p2"}}
	b.Agents = map[string]map[string]any{"helper": {"role": "b"}}

	c := New("c")
	c.Session = map[string]any{"orchestrator": "z"}
	c.Providers = []ModuleSpec{{Module: "p1", Config: map[string]any{"k": 2}}}
	c.Agents = map[string]map[string]any{"other": {"role": "c"}}

	chained := a.Compose(b).Compose(c)
	direct := a.Compose(b, c)

	// cmp.Diff over the whole struct gives a field-by-field diff on
	// mismatch rather than testify's single-line "not equal" output —
	// worth it here since a broken associativity law can disagree in any
	// one of several nested sections at once.
	if diff := cmp.Diff(direct, chained); diff != "" {
		t.Fatalf("chained and direct compose diverged (-direct +chained):\n%s", diff)
	}
	assert.Equal(t, chained.Name, direct.Name)
}

func TestComposeModuleListOrderIsFirstSeen(t *testing.T) {
	// Law 5: merged order is L1 ∪ (L2 \ L1) in first-seen order.
	a := New("a")
	a.Tools = []ModuleSpec{{Module: "alpha"}, {Module: "beta"}}

	b := New("b")
	b.Tools = []ModuleSpec{{Module: "beta"}, {Module: "gamma"}}

	result := a.Compose(b)

	var names []string
	for _, m := range result.Tools {
		names = append(names, m.Module)
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, names)
}

func TestComposeSourceBasePathsFirstWriteWins(t *testing.T) {
	a := New("a")
	a.SourceBasePaths["root"] = "/from/registry"

	// b shares the "root" namespace but under a different base path: the
	// registry-recorded value must survive, not be clobbered by b's own
	// name/base_path entry.
	b := New("root")
	b.BasePath = "/from/include"

	result := a.Compose(b)
	assert.Equal(t, "/from/registry", result.SourceBasePaths["root"])

	// A bundle with its own distinct name still gets its own namespace entry.
	c := New("c")
	c.BasePath = "/from/c"
	result2 := a.Compose(c)
	assert.Equal(t, "/from/registry", result2.SourceBasePaths["root"])
	assert.Equal(t, "/from/c", result2.SourceBasePaths["c"])
}

func TestComposeAgentsReplaceWholeRecordNotMerge(t *testing.T) {
	a := New("a")
	a.Agents["helper"] = map[string]any{"role": "a", "extra": "kept-if-not-replaced"}

	b := New("b")
	b.Agents["helper"] = map[string]any{"role": "b"}

	result := a.Compose(b)

	assert.Equal(t, map[string]any{"role": "b"}, result.Agents["helper"])
}

func TestComposeLaterEmptyFieldPreservesCurrent(t *testing.T) {
	a := New("a")
	a.Description = "kept"
	a.Instruction = "kept instruction"

	b := New("")
	b.Description = ""
	b.Instruction = ""

	result := a.Compose(b)

	assert.Equal(t, "kept", result.Description)
	assert.Equal(t, "kept instruction", result.Instruction)
	assert.Equal(t, "a", result.Name)
}

func TestToMountPlanOnlyIncludesNonEmptySections(t *testing.T) {
	b := New("solo")
	b.Providers = []ModuleSpec{{Module: "p"}}

	plan := b.ToMountPlan()

	_, hasProviders := plan["providers"]
	_, hasSession := plan["session"]
	_, hasAgents := plan["agents"]
	assert.True(t, hasProviders)
	assert.False(t, hasSession)
	assert.False(t, hasAgents)
}

func TestToMountPlanIsAShallowCopy(t *testing.T) {
	b := New("solo")
	b.Session = map[string]any{"orchestrator": "x"}

	plan := b.ToMountPlan()
	plan["session"].(map[string]any)["orchestrator"] = "mutated"

	assert.Equal(t, "x", b.Session["orchestrator"])
}
