package session

import (
	"context"

	"amplifier/internal/bundle"
	"amplifier/internal/logging"
	"amplifier/internal/module"
)

// SourceOverride lets an application apply its own source-substitution
// policy to a module spec before activation (spec §4.7 step 4: "pure
// policy injection — the core never consults application settings
// directly").
type SourceOverride func(moduleID, source string) string

// PrepareOptions configures Prepare. Activator is required. Factory is
// needed only by CreateSession and Spawn, which return an error without
// it. InstallDeps defaults to false, so bundle packages are installed
// only when it is set; a nil SourceOverride leaves module sources
// unchanged.
type PrepareOptions struct {
	Activator    module.Activator
	Factory      SessionFactory
	InstallDeps  bool
	SourceOverride SourceOverride
}

// PreparedBundle is a Bundle with every module it names activated to a
// local path, ready to back a Session (spec §4.7).
type PreparedBundle struct {
	MountPlan           map[string]any
	Resolver            *BundleModuleResolver
	Bundle              *bundle.Bundle
	BundlePackagePaths  []string
	factory             SessionFactory
}

// Prepare activates every module bundle.{orchestrator,context,
// providers,tools,hooks} name a source for, installing bundle packages
// first (spec §4.7 steps 1-6).
func Prepare(ctx context.Context, b *bundle.Bundle, opts PrepareOptions) (*PreparedBundle, error) {
	mountPlan := b.ToMountPlan()

	var packagePaths []string
	if opts.InstallDeps {
		packagePaths = installBundlePackages(ctx, b)
	}

	specs := collectModuleSources(mountPlan)
	if opts.SourceOverride != nil {
		for id, src := range specs {
			specs[id] = opts.SourceOverride(id, src)
		}
	}

	paths := module.ActivateAll(ctx, opts.Activator, specs)

	return &PreparedBundle{
		MountPlan:          mountPlan,
		Resolver:           NewBundleModuleResolver(paths),
		Bundle:             b,
		BundlePackagePaths: packagePaths,
		factory:            opts.Factory,
	}, nil
}

// installBundlePackages installs b's own package (if its base_path
// carries a manifest) followed by every distinct source_base_paths
// directory other than b's own (spec §4.7 step 2), returning the
// directories actually attempted so child sessions can inherit them.
func installBundlePackages(ctx context.Context, b *bundle.Bundle) []string {
	var installed []string

	if b.BasePath != "" {
		if err := installBundlePackage(ctx, b.BasePath); err != nil {
			logging.SessionWarn("bundle package install failed for %s: %v", b.BasePath, err)
		}
		installed = append(installed, b.BasePath)
	}

	seen := map[string]bool{b.BasePath: true}
	for _, path := range b.SourceBasePaths {
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		if err := installBundlePackage(ctx, path); err != nil {
			logging.SessionWarn("bundle package install failed for %s: %v", path, err)
		}
		installed = append(installed, path)
	}

	return installed
}

// collectModuleSources gathers every module spec carrying a "source"
// field from the mount plan's session.orchestrator, session.context,
// and providers/tools/hooks lists (spec §4.7 step 3).
func collectModuleSources(mountPlan map[string]any) map[string]string {
	specs := make(map[string]string)

	if sessionCfg, ok := mountPlan["session"].(map[string]any); ok {
		addModuleSourceFromSessionEntry(specs, sessionCfg["orchestrator"])
		addModuleSourceFromSessionEntry(specs, sessionCfg["context"])
	}

	for _, section := range []string{"providers", "tools", "hooks"} {
		list, ok := mountPlan[section].([]bundle.ModuleSpec)
		if !ok {
			continue
		}
		for _, spec := range list {
			if spec.Module != "" && spec.Source != "" {
				specs[spec.Module] = spec.Source
			}
		}
	}

	return specs
}

func addModuleSourceFromSessionEntry(specs map[string]string, entry any) {
	m, ok := entry.(map[string]any)
	if !ok {
		return
	}
	module, _ := m["module"].(string)
	src, _ := m["source"].(string)
	if module != "" && src != "" {
		specs[module] = src
	}
}
