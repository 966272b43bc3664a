package testutils

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it
// with the same strict, read-only configuration the loader uses in production.
// It returns the absolute path to the temp dir and the initialized repository.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	tmpDir := t.TempDir()

	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	options := append([]loam.Option{
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	}, opts...)

	repo, err := loam.Init(absPath, options...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// WriteSets seeds dir with one JSON document per parameter set.
func WriteSets(t *testing.T, dir string, sets map[string]string) {
	t.Helper()
	for name, content := range sets {
		path := filepath.Join(dir, filepath.FromSlash(name)+".json")
		require.NoError(t, writeFile(path, content), "Failed to seed %s", name)
	}
}
