// Package main provides tests for the skyoverlay CLI.
package main

import (
	"bytes"
	"encoding/json"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/skyoverlay/internal/cli"
	"github.com/leapstack-labs/skyoverlay/internal/cli/config"
	"github.com/leapstack-labs/skyoverlay/internal/cli/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := run(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "skyoverlay") {
		t.Errorf("version output should contain 'skyoverlay', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := run(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"render", "fields", "sources", "stcs", "init", "version"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestRenderCommandFlags(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	out := filepath.Join(dir, "override.png")

	_, err := run(t,
		"render",
		"--config", filepath.Join(dir, "skyoverlay.yaml"),
		"--image", out,
		"--width", "120",
		"--height", "80",
	)
	if err != nil {
		t.Fatalf("render command error = %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("rendered image missing: %v", err)
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode rendered image: %v", err)
	}
	if cfg.Width != 120 || cfg.Height != 80 {
		t.Errorf("image size = %dx%d, want 120x80", cfg.Width, cfg.Height)
	}
}

func TestRenderCommandEnv(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	out := filepath.Join(dir, "env.png")
	t.Setenv("SKYOVERLAY_IMAGE", out)

	if _, err := run(t, "render", "--config", filepath.Join(dir, "skyoverlay.yaml")); err != nil {
		t.Fatalf("render command error = %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected image at %s: %v", out, err)
	}
}

func TestFieldsCommandJSON(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	output, err := run(t, "fields", "--config", filepath.Join(dir, "skyoverlay.yaml"), "-o", "json")
	if err != nil {
		t.Fatalf("fields command error = %v", err)
	}

	var infos []struct {
		Catalog string `json:"catalog"`
		RA      string `json:"ra"`
		Dec     string `json:"dec"`
	}
	if err := json.Unmarshal([]byte(output), &infos); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, output)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d catalogs, want 2", len(infos))
	}
	if infos[0].Catalog != "stars" || infos[0].RA != "ra" || infos[0].Dec != "dec" {
		t.Errorf("unexpected fields for stars: %+v", infos[0])
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skyoverlay.yaml")
	if err := os.WriteFile(path, []byte("view:\n  fov: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "render", "--config", path)
	if err == nil {
		t.Fatal("expected an error for an invalid configuration")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("unexpected error: %v", err)
	}
}
