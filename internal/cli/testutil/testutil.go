// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/skyoverlay/internal/cli/output"
)

// ProjectConfig is a small scene used by command tests: an inline catalog
// around the view centre and one overlay.
const ProjectConfig = `view:
  center: "10 20"
  fov: 2
  width: 200
  height: 100
image: sky.png
catalogs:
  - name: stars
    color: "#ff0000"
    input:
      type: inline
      columns: [name, ra, dec, mag]
      rows:
        - [alpha, 10.0, 20.0, 5.5]
        - [beta, 10.2, 20.1, 9.1]
        - [gamma, 10.4, 19.9, 12.0]
  - name: faint
    input:
      type: csv
      path: faint.csv
    filter: "row['mag'] > 10"
overlays:
  - name: regions
    color: "#00ff00"
    stcs:
      - "CIRCLE ICRS 10 20 0.1"
      - "POLYGON ICRS 9.8 19.8 10.2 19.8 10 20.2"
`

// FaintCSV backs the csv catalog of ProjectConfig.
const FaintCSV = `name,RA_d,DEC_d,mag
delta,9.9,20.05,11.5
epsilon,9.95,19.95,8.0
`

// SetupTestProject creates a temporary project holding skyoverlay.yaml and
// the files it references.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	files := map[string]string{
		"skyoverlay.yaml": ProjectConfig,
		"faint.csv":       FaintCSV,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
