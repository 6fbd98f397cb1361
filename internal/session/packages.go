package session

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"amplifier/internal/logging"
)

// installBundlePackage runs the host's package manager against dir if
// it carries a packaging manifest; a directory with neither is a no-op
// (spec §4.7 step 2). Grounded on the original activator's
// pyproject.toml/requirements.txt handling: uv is tried first (it's
// faster), falling back to pip when uv isn't on PATH or fails.
func installBundlePackage(ctx context.Context, dir string) error {
	if dir == "" {
		return nil
	}

	pyproject := filepath.Join(dir, "pyproject.toml")
	requirements := filepath.Join(dir, "requirements.txt")

	switch {
	case fileExists(pyproject):
		return runWithFallback(ctx, dir,
			[]string{"uv", "pip", "install", "-e", dir, "--quiet"},
			[]string{"pip", "install", "-e", dir, "--quiet"},
		)
	case fileExists(requirements):
		return runWithFallback(ctx, dir,
			[]string{"uv", "pip", "install", "-r", requirements, "--quiet"},
			[]string{"pip", "install", "-r", requirements, "--quiet"},
		)
	default:
		return nil
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// runWithFallback runs primary, retrying with fallback if primary's
// binary is missing or the command fails.
func runWithFallback(ctx context.Context, dir string, primary, fallback []string) error {
	if err := run(ctx, dir, primary); err != nil {
		logging.SessionDebug("package install via %s failed (%v), falling back to %s", primary[0], err, fallback[0])
		return run(ctx, dir, fallback)
	}
	return nil
}

func run(ctx context.Context, dir string, args []string) error {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logging.SessionWarn("package install %v in %s failed: %v: %s", args, dir, err, stderr.String())
		return err
	}
	logging.SessionDebug("installed bundle package in %s via %s", dir, args[0])
	return nil
}
