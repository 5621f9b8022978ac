package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/skyoverlay/internal/cli/config"
)

func TestEnvRows(t *testing.T) {
	rows := envRows(scalarConfigKeys())

	vars := make(map[string]string)
	for _, row := range rows {
		vars[row[0]] = row[2]
	}
	assert.Equal(t, config.DefaultProjection, vars[InlineCode("SKYOVERLAY_VIEW__PROJECTION")])
	assert.Contains(t, vars, InlineCode("SKYOVERLAY_VIEW__FOV"))
	assert.Contains(t, vars, InlineCode("SKYOVERLAY_OUTPUT"))
	assert.NotContains(t, vars, InlineCode("SKYOVERLAY_PALETTE"), "list keys are file-only")
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "## Workflows")
	assert.Contains(t, string(index), "skyoverlay sources faint --drawn")
	assert.Contains(t, string(index), "SKYOVERLAY_VIEW__CENTER")

	render, err := os.ReadFile(filepath.Join(dir, "render.md"))
	require.NoError(t, err)
	assert.Contains(t, string(render), "`view.fov`")
	assert.Contains(t, string(render), "skyoverlay render --watch")

	for _, name := range []string{"fields", "sources", "stcs", "init", "version", "completion"} {
		_, err := os.Stat(filepath.Join(dir, name+".md"))
		assert.NoError(t, err, "missing %s.md", name)
	}
}
