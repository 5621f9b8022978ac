package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/skyoverlay/internal/cli/output"
	"github.com/leapstack-labs/skyoverlay/pkg/shape"
	"github.com/leapstack-labs/skyoverlay/pkg/stcs"
	"github.com/spf13/cobra"
)

// STCSOptions holds options for the stcs command.
type STCSOptions struct {
	REPL bool
}

// ShapeRow is one parsed STC-S shape.
type ShapeRow struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	STCS        string `json:"stcs"`
}

// STCSResult is the outcome of parsing one STC-S string.
type STCSResult struct {
	Input   string     `json:"input"`
	Shapes  []ShapeRow `json:"shapes"`
	Notices []string   `json:"notices,omitempty"`
}

// NewSTCSCommand creates the stcs command.
func NewSTCSCommand() *cobra.Command {
	opts := &STCSOptions{}

	cmd := &cobra.Command{
		Use:   "stcs [text]",
		Short: "Parse STC-S region strings",
		Long: `Parse an STC-S string and list the circles and polygons it describes.
Unsupported or malformed parts are reported as notices.

The text is read from the arguments, from stdin when no argument is given,
or interactively with --repl.`,
		Example: `  skyoverlay stcs "CIRCLE ICRS 10 20 0.5 POLYGON ICRS 1 2 3 4 5 6"
  echo "CIRCLE ICRS 10 20 1" | skyoverlay stcs
  skyoverlay stcs --repl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			if opts.REPL {
				return runSTCSREPL(cmd, cc.Renderer)
			}

			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("no STC-S text given")
			}
			return renderSTCS(cc.Renderer, parseSTCS(text))
		},
	}

	cmd.Flags().BoolVar(&opts.REPL, "repl", false, "Start an interactive session")
	return cmd
}

func parseSTCS(text string) STCSResult {
	shapes, notices := stcs.Inspect(text)
	res := STCSResult{Input: strings.TrimSpace(text), Shapes: make([]ShapeRow, 0, len(shapes))}
	for _, s := range shapes {
		res.Shapes = append(res.Shapes, ShapeRow{
			Kind:        string(s.Kind()),
			Description: shape.Describe(s),
			STCS:        s.STCS(),
		})
	}
	for _, n := range notices {
		res.Notices = append(res.Notices, n.String())
	}
	return res
}

func renderSTCS(r *output.Renderer, res STCSResult) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res)
	}

	if len(res.Shapes) == 0 {
		r.Println("No shapes found.")
	} else {
		rows := make([][]any, 0, len(res.Shapes))
		for i, s := range res.Shapes {
			rows = append(rows, []any{i + 1, s.Kind, s.Description, s.STCS})
		}
		r.Table([]string{"#", "Kind", "Description", "STC-S"}, rows)
	}
	for _, n := range res.Notices {
		r.Warnf("%s", n)
	}
	return nil
}

func runSTCSREPL(cmd *cobra.Command, r *output.Renderer) error {
	historyFile := ""
	if dir, err := os.UserCacheDir(); err == nil {
		historyFile = filepath.Join(dir, "skyoverlay", "stcs_history")
		_ = os.MkdirAll(filepath.Dir(historyFile), 0750)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "stcs> ",
		HistoryFile:     historyFile,
		AutoComplete:    newSTCSCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "STC-S REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case ".quit", ".exit":
			return nil
		case ".help":
			printSTCSHelp(cmd.OutOrStdout())
			continue
		}

		if err := renderSTCS(r, parseSTCS(line)); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func printSTCSHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .quit / .exit   Exit the REPL

Shapes:
  CIRCLE [frame] ra dec radius
  POLYGON [frame] ra1 dec1 ra2 dec2 ra3 dec3 ...

Frames: ICRS, J2000, FK5 (others are skipped).
`
	_, _ = fmt.Fprintln(w, help)
}

// newSTCSCompleter completes keywords and frames.
func newSTCSCompleter() *readline.PrefixCompleter {
	frames := []readline.PrefixCompleterInterface{
		readline.PcItem("ICRS"),
		readline.PcItem("J2000"),
		readline.PcItem("FK5"),
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("CIRCLE", frames...),
		readline.PcItem("POLYGON", frames...),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
	)
}
