package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"amplifier/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <name-or-uri>",
	Short: "Load a bundle and report structural validation errors and warnings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		b, err := reg.Load(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}

		result := (validator.Validator{}).Validate(b)

		for _, w := range result.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		for _, e := range result.Errors {
			fmt.Printf("error: %s\n", e)
		}

		if !result.Valid {
			return fmt.Errorf("%s: %d validation error(s)", b.Name, len(result.Errors))
		}
		fmt.Printf("%s: valid\n", b.Name)
		return nil
	},
}
