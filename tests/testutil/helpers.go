// Package testutil provides shared helpers for the integration tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"skill-installer/internal/types"
)

// WriteCatalog writes a catalog index listing entries and returns its path.
func WriteCatalog(t *testing.T, dir string, entries ...types.SkillEntry) string {
	t.Helper()
	data, err := yaml.Marshal(types.CatalogIndexFile{Skills: entries})
	require.NoError(t, err)
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// InstallLocal marks names as installed by creating their skill directories.
func InstallLocal(t *testing.T, skillsDir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(skillsDir, name), 0o755))
	}
}

// DirExecutor installs a skill by creating its directory and removes it by
// deleting the directory, without touching the network.
type DirExecutor struct{}

func (DirExecutor) Install(_ context.Context, _ types.SkillEntry, dir string) error {
	return os.MkdirAll(dir, 0o755)
}

func (DirExecutor) Update(_ context.Context, _ types.SkillEntry, dir string) error {
	return os.MkdirAll(dir, 0o755)
}

func (DirExecutor) Remove(_ context.Context, _ types.SkillEntry, dir string) error {
	return os.RemoveAll(dir)
}
