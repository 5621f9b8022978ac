package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/skyoverlay/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name     string
		setupDir func(t *testing.T, dir string)
		args     []string
		wantErr  bool
		wantFile string
	}{
		{
			name:     "init empty directory",
			wantFile: "skyoverlay.yaml",
		},
		{
			name:     "init into new directory",
			args:     []string{"m31"},
			wantFile: "m31/skyoverlay.yaml",
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "skyoverlay.yaml"), []byte("existing"), 0600)
			},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "skyoverlay.yaml"), []byte("existing"), 0600)
			},
			args:     []string{"--force"},
			wantFile: "skyoverlay.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Chdir(tmpDir)

			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			_, _, err := execute(t, NewInitCommand(), tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			_, err = os.Stat(filepath.Join(tmpDir, tt.wantFile))
			assert.NoError(t, err, "expected %q to exist", tt.wantFile)
		})
	}
}

func TestInitCreatesValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	_, _, err := execute(t, NewInitCommand())
	require.NoError(t, err)

	content, err := os.ReadFile("skyoverlay.yaml")
	require.NoError(t, err)
	for _, want := range []string{"# skyoverlay configuration", "00 42 44.3 +41 16 09", "type: inline", "POLYGON ICRS"} {
		assert.Contains(t, string(content), want)
	}

	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	require.Len(t, cfg.Catalogs, 1)
	assert.Equal(t, "local group", cfg.Catalogs[0].Name)
	assert.Len(t, cfg.Catalogs[0].Input.Rows, 3)
	require.Len(t, cfg.Overlays, 1)
	assert.InDelta(t, 3.0, cfg.View.FoV, 1e-9)
}
