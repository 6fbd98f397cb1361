// Package main implements the amplifier CLI, a thin cobra front end
// over the registry/bundle/session packages.
//
// Command implementations are split across cmd_*.go files:
//
//	main.go        - entry point, rootCmd, global flags, shared app wiring
//	cmd_load.go     - loadCmd, registerCmd, listCmd
//	cmd_validate.go - validateCmd
//	cmd_update.go   - updateCmd
//	cmd_spawn.go    - spawnCmd
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"amplifier/internal/config"
	"amplifier/internal/logging"
	"amplifier/internal/registry"
	"amplifier/internal/source"
)

var (
	verbose  bool
	homeFlag string
	timeout  time.Duration

	logger  *zap.Logger
	cfg     *config.Config
	reg     *registry.Registry
	watcher *registry.Watcher
)

// rootCmd is the base command; amplifier has no interactive default
// mode, every operation is an explicit subcommand.
var rootCmd = &cobra.Command{
	Use:   "amplifier",
	Short: "amplifier - bundle composition and session orchestration CLI",
	Long: `amplifier loads, composes, validates, and spawns sessions from
bundles: declarative configuration units for providers, tools, hooks,
agents, and context, resolved from git/zip/http/local sources and
merged through an order-sensitive compose algebra.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		cfg, err = config.Load(homeFlag)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			cfg.Logging.Enabled = true
			cfg.Logging.Level = "debug"
		}
		if err := logging.Initialize(cfg.Home, cfg.LoggingSettings()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}

		gitTimeout, err := cfg.GitCloneTimeout()
		if err != nil {
			return fmt.Errorf("git.clone_timeout: %w", err)
		}
		resolver := source.NewResolver(cfg.CacheDir(), "", cfg.Git.Depth, gitTimeout)
		reg = registry.New(cfg.Home, resolver)

		watcher, err = registry.NewWatcher(reg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create registry watcher: %v\n", err)
		} else if err := watcher.Start(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to start registry watcher: %v\n", err)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if watcher != nil {
			watcher.Stop()
		}
		if logger != nil {
			_ = logger.Sync()
		}
		var err error
		if reg != nil {
			err = reg.Save()
		}
		logging.CloseAll()
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "amplifier home directory (default: $AMPLIFIER_HOME or ~/.amplifier)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(
		loadCmd,
		registerCmd,
		listCmd,
		validateCmd,
		updateCmd,
		spawnCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
