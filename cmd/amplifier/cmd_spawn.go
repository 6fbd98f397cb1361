package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"amplifier/internal/module"
	"amplifier/internal/session"
)

var spawnInstallDeps bool

// spawnCmd prepares a bundle the way a host application would before
// handing it to a real SessionFactory: it activates every module's
// source to a local path and reports the resulting mount plan. Actually
// running a session requires a SessionFactory the host application
// supplies (spec §6: the concrete session runtime lives outside this
// module), so this command stops at PreparedBundle and prints what a
// factory would receive.
var spawnCmd = &cobra.Command{
	Use:   "spawn <name-or-uri>",
	Short: "Prepare a bundle's modules and report its resolved mount plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		b, err := reg.Load(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}

		activator := module.NewPathResolver(reg.Resolver())
		prepared, err := session.Prepare(ctx, b, session.PrepareOptions{
			Activator:   activator,
			InstallDeps: spawnInstallDeps,
		})
		if err != nil {
			return fmt.Errorf("prepare %s: %w", b.Name, err)
		}

		dryRunID := uuid.New().String()
		fmt.Printf("prepared %s (%s) [dry-run session %s]\n", b.Name, b.Version, dryRunID)
		modules := prepared.Resolver.ModulePaths()
		ids := make([]string, 0, len(modules))
		for id := range modules {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Printf("  module %-24s -> %s\n", id, modules[id])
		}
		for _, path := range prepared.BundlePackagePaths {
			fmt.Printf("  package install attempted in %s\n", path)
		}
		fmt.Println("no SessionFactory configured; supply one via the session package to actually run this bundle")
		return nil
	},
}

func init() {
	spawnCmd.Flags().BoolVar(&spawnInstallDeps, "install-deps", false, "Install the bundle's own packages (its base path and source_base_paths directories) before activating modules")
}
