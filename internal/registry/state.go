// Package registry is the process-wide facade over bundle discovery: it
// maps names to URIs, runs the load pipeline (URI parse, source
// resolution, bundle load, root-bundle discovery, include composition),
// tracks the include graph, detects cycles, and persists its state as
// JSON under <home>/registry.json.
package registry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"amplifier/internal/logging"
	"amplifier/internal/retryio"
)

// BundleState is one persisted registry row. Field presence mirrors the
// on-disk JSON shape exactly (spec §6): uri/name/version/loaded_at/
// checked_at/local_path/is_root are always present (null when unset),
// includes/included_by/root_name are omitted entirely when empty.
type BundleState struct {
	URI        string     `json:"uri"`
	Name       string     `json:"name"`
	Version    *string    `json:"version"`
	LoadedAt   *time.Time `json:"loaded_at"`
	CheckedAt  *time.Time `json:"checked_at"`
	LocalPath  *string    `json:"local_path"`
	IsRoot     bool       `json:"is_root"`
	Includes   []string   `json:"includes,omitempty"`
	IncludedBy []string   `json:"included_by,omitempty"`
	RootName   string     `json:"root_name,omitempty"`
}

type persistedFile struct {
	Version int                     `json:"version"`
	Bundles map[string]*BundleState `json:"bundles"`
}

// registryFilePath is <home>/registry.json.
func registryFilePath(home string) string {
	return filepath.Join(home, "registry.json")
}

// Save persists the registry's current rows to <home>/registry.json,
// creating home if necessary.
func (r *Registry) Save() error {
	r.mu.Lock()
	snapshot := make(map[string]*BundleState, len(r.states))
	for name, state := range r.states {
		copied := *state
		snapshot[name] = &copied
	}
	r.mu.Unlock()

	if err := os.MkdirAll(r.home, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(persistedFile{Version: 1, Bundles: snapshot}, "", "  ")
	if err != nil {
		return err
	}

	path := registryFilePath(r.home)
	if err := retryio.WriteFile(context.Background(), path, data); err != nil {
		return err
	}
	logging.RegistryDebug("saved registry to %s (%d bundles)", path, len(snapshot))
	return nil
}

// loadPersisted reads <home>/registry.json if present. A missing or
// unreadable file is not an error: the registry just starts empty, the
// same way config.Load tolerates a missing config file.
func (r *Registry) loadPersisted() {
	path := registryFilePath(r.home)
	data, err := retryio.ReadFile(context.Background(), path)
	if err != nil {
		return
	}

	var persisted persistedFile
	if err := json.Unmarshal(data, &persisted); err != nil {
		logging.RegistryWarn("failed to parse registry state at %s: %v", path, err)
		return
	}

	for name, state := range persisted.Bundles {
		state.Name = name
		r.states[name] = state
	}
	logging.RegistryDebug("loaded registry from %s (%d bundles)", path, len(r.states))
}
