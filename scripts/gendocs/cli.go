package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/skyoverlay/internal/cli"
	"github.com/leapstack-labs/skyoverlay/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// workflow is one task walked through on the CLI index page.
type workflow struct {
	Title  string
	Text   string
	Script string
}

var workflows = []workflow{
	{
		Title: "Render a field",
		Text: "Start from the starter configuration, then override the view from the command line. " +
			"The image format follows the extension of " + InlineCode("--image") + ".",
		Script: `skyoverlay init m31 && cd m31
skyoverlay render
skyoverlay render --center "00:42:44.3 +41:16:09" --fov 1.5 --projection SIN --image m31.tiff`,
	},
	{
		Title: "Iterate on a catalog",
		Text: "Watch mode redraws whenever skyoverlay.yaml or a local VOTable, CSV or SQLite input changes. " +
			"Remote VOTables are fetched once per reload.",
		Script: `skyoverlay render --watch -v`,
	},
	{
		Title: "Check coordinate columns",
		Text: "RA and Dec are found from hints, then UCDs, then column names. " +
			InlineCode("fields") + " shows the result per catalog, and " + InlineCode("ra_field") + "/" +
			InlineCode("dec_field") + " override it.",
		Script: `skyoverlay fields
skyoverlay fields faint -o json | jq '.[0].ra'`,
	},
	{
		Title:  "List what was drawn",
		Text:   "Sources outside the view, filtered out, or covered by a legible footprint are not drawn.",
		Script: `skyoverlay sources faint --drawn --columns name,mag -n 50`,
	},
	{
		Title: "Try STC-S",
		Text: "Only POLYGON and CIRCLE in ICRS, J2000 or FK5 are drawn. " +
			"Dropped shapes are reported on stderr.",
		Script: `skyoverlay stcs "CIRCLE ICRS 10.68 41.27 0.5"
echo "POLYGON J2000 0 0 1 0 1 1 0 1" | skyoverlay stcs -o json
skyoverlay stcs --repl`,
	},
}

// generateCLIDocs writes index.md plus one page per visible command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	keys := scalarConfigKeys()

	pages := map[string]*MarkdownWriter{"index": cliIndex(root, keys)}
	for _, cmd := range visibleCommands(root) {
		pages[cmd.Name()] = commandPage(cmd, keys)
	}

	for name, w := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name+".md"), w.Bytes(), 0600); err != nil {
			return fmt.Errorf("failed to write %s.md: %w", name, err)
		}
		log.Printf("  Generated %s.md", name)
	}
	return nil
}

func visibleCommands(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

// scalarConfigKeys maps every key that can be set from a flag or the
// environment to its default. Catalogs and overlays are lists and are only
// configured in the file.
func scalarConfigKeys() map[string]ConfigField {
	keys := make(map[string]ConfigField)
	for _, f := range getConfigSchema() {
		if strings.HasPrefix(f.Type, "[]") {
			continue
		}
		switch f.Category {
		case "top":
			keys[f.Name] = f
		case "view":
			keys["view."+f.Name] = f
		}
	}
	return keys
}

func cliIndex(root *cobra.Command, keys map[string]ConfigField) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for skyoverlay")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)
	w.CodeBlock("bash", "go install github.com/leapstack-labs/skyoverlay/cmd/skyoverlay@latest")

	w.Header(2, "Workflows")
	for _, wf := range workflows {
		w.Header(3, wf.Title)
		w.Paragraph(wf.Text)
		w.CodeBlock("bash", wf.Script)
	}

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range visibleCommands(root) {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name()),
			cleanDescription(cmd.Short),
		})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	flagTable(w, root.PersistentFlags(), keys)

	w.Header(2, "Environment Variables")
	w.Paragraph("Flags override environment variables, which override " + InlineCode(config.ConfigFileNames[0]) + ".")
	w.Table([]string{"Variable", "Key", "Default"}, envRows(keys))

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Invalid configuration, unreadable input or failed render; details on stderr"},
	})
	return w
}

// envRows lists one variable per scalar key, sorted the way the
// configuration reference orders them.
func envRows(keys map[string]ConfigField) [][]string {
	var rows [][]string
	for _, f := range getConfigSchema() {
		key := f.Name
		if f.Category == "view" {
			key = "view." + f.Name
		}
		if _, ok := keys[key]; !ok {
			continue
		}
		rows = append(rows, []string{InlineCode(config.EnvVar(key)), InlineCode(key), orNone(f.Default)})
	}
	return rows
}

func commandPage(cmd *cobra.Command, keys map[string]ConfigField) *MarkdownWriter {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	use := cmd.UseLine()
	if !strings.HasPrefix(use, "skyoverlay") {
		use = "skyoverlay " + use
	}
	w.CodeBlock("bash", use)

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		flagTable(w, cmd.LocalFlags(), keys)
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		flagTable(w, cmd.InheritedFlags(), keys)
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", unindentExample(cmd.Example))
	}
	return w
}

// flagTable lists flags with the configuration key each one overrides.
func flagTable(w *MarkdownWriter, flags *pflag.FlagSet, keys map[string]ConfigField) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			name = InlineCode("-"+f.Shorthand) + ", " + name
		}
		key := "-"
		if k := config.FlagKey(f.Name); keys[k].Name != "" {
			key = InlineCode(k)
		}
		def := f.DefValue
		if def != "" && f.Value.Type() == "string" {
			def = InlineCode(def)
		}
		rows = append(rows, []string{name, orNone(def), key, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Default", "Config key", "Description"}, rows)
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// unindentExample strips the two-space indent cobra examples carry.
func unindentExample(example string) string {
	lines := strings.Split(example, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "  ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
