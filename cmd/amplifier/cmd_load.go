package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <name-or-uri>",
	Short: "Load a bundle, resolving its includes and composing them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		b, err := reg.Load(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}

		fmt.Printf("name:        %s\n", b.Name)
		fmt.Printf("version:     %s\n", b.Version)
		if b.Description != "" {
			fmt.Printf("description: %s\n", b.Description)
		}
		fmt.Printf("source:      %s\n", b.SourceURI)
		fmt.Printf("providers:   %d\n", len(b.Providers))
		fmt.Printf("tools:       %d\n", len(b.Tools))
		fmt.Printf("hooks:       %d\n", len(b.Hooks))
		fmt.Printf("agents:      %d\n", len(b.Agents))
		fmt.Printf("context:     %d\n", len(b.Context))
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <name> <uri>",
	Short: "Register a name->URI mapping without loading it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg.Register(map[string]string{args[0]: args[1]})
		return reg.Save()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered bundle and its tracked state",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := reg.ListRegistered()
		sort.Strings(names)
		if len(names) == 0 {
			fmt.Println("no bundles registered")
			return nil
		}
		for _, name := range names {
			state, _ := reg.GetState(name)
			version := "-"
			if state.Version != nil {
				version = *state.Version
			}
			root := ""
			if !state.IsRoot && state.RootName != "" {
				root = fmt.Sprintf(" (sub-bundle of %s)", state.RootName)
			}
			fmt.Printf("%-24s %-10s %s%s\n", name, version, state.URI, root)
		}
		return nil
	},
}
