package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Reload a registered bundle bypassing the in-memory cache, or every registered bundle if name is omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		if len(args) == 1 {
			b, err := reg.Update(ctx, args[0])
			if err != nil {
				return fmt.Errorf("update %s: %w", args[0], err)
			}
			fmt.Printf("%s: updated to version %s\n", b.Name, b.Version)
			return nil
		}

		updated := reg.UpdateAll(ctx)
		for name, b := range updated {
			fmt.Printf("%s: updated to version %s\n", name, b.Version)
		}
		fmt.Printf("%d bundle(s) updated\n", len(updated))
		return nil
	},
}
