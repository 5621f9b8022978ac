package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/leapstack-labs/skyoverlay/internal/expr"
)

// exprVariables are bound for every evaluated source.
var exprVariables = [][]string{
	{InlineCode("ra"), "float", "Right ascension of the source in degrees"},
	{InlineCode("dec"), "float", "Declination of the source in degrees"},
	{InlineCode("row"), "dict", "Every column of the source row, keyed by column name"},
}

// builtinDocs describes the predeclared names. Names missing here are listed
// without a description so new builtins still show up.
var builtinDocs = map[string][2]string{
	"circle": {"circle(ra, dec, radius)", "STC-S circle centred on ra, dec with radius in degrees"},
	"box":    {"box(ra, dec, width, height)", "STC-S polygon of width by height degrees centred on ra, dec"},
	"float":  {"float(x)", "Converts a number or numeric string"},
	"pi":     {"pi", "The constant π"},
}

// generateExprDocs generates the reference for filter and footprint
// expressions.
func generateExprDocs(outDir string) error {
	log.Printf("Generating expression docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Expressions", "Starlark filter and footprint expressions")
	w.GeneratedMarker()

	w.Header(1, "Expressions")
	w.Paragraph("Catalog " + InlineCode("filter") + " and " + InlineCode("footprint") + " keys hold a single Starlark expression evaluated once per source.")
	w.Paragraph("A filter draws the source when the expression is truthy. A footprint returns an STC-S string, a list of STC-S strings or " + InlineCode("None") + ".")

	w.Header(2, "Variables")
	w.Table([]string{"Name", "Type", "Description"}, exprVariables)

	w.Header(2, "Builtins")
	predeclared := expr.Predeclared()
	names := make([]string, 0, len(predeclared))
	for name := range predeclared {
		names = append(names, name)
	}
	sort.Strings(names)

	var rows [][]string
	for _, name := range names {
		doc, ok := builtinDocs[name]
		if !ok {
			doc = [2]string{name, ""}
		}
		rows = append(rows, []string{InlineCode(doc[0]), doc[1]})
	}
	w.Table([]string{"Builtin", "Description"}, rows)

	w.Header(2, "Examples")
	w.CodeBlock("yaml", `catalogs:
  - name: bright
    filter: "row['vmag'] < 6"
  - name: fields
    footprint: "box(ra, dec, 0.2, 0.2)"
  - name: obs
    footprint: "[circle(ra, dec, r) for r in (0.05, 0.1)]"`)

	filename := filepath.Join(outDir, "expressions.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated expressions.md")
	return nil
}
