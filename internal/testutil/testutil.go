// Package testutil provides a per-test fresh-engine fixture, the Go
// equivalent of the reference test suite's conftest.py temp-database
// fixture: a fresh cold/KV/PBM store triple under a temp directory,
// torn down automatically when the test ends.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/humancognome/textpbm/engine"
	"github.com/humancognome/textpbm/internal/config"
)

// NewTestEngine returns a ready Engine backed by fresh, isolated store
// files under t.TempDir(), closed automatically via t.Cleanup.
func NewTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		ColdStorePath:  filepath.Join(dir, "vocab.db"),
		PBMStorePath:   filepath.Join(dir, "pbm.db"),
		KVCachePath:    filepath.Join(dir, "cache.bolt"),
		LRUSize:        256,
		DefaultCentury: "AA",
		LogLevel:       "error",
	}
	e, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}
