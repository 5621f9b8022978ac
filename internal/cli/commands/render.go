package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/skyoverlay/internal/cli/config"
	"github.com/leapstack-labs/skyoverlay/internal/cli/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// watchDebounce collapses bursts of file events into one re-render.
const watchDebounce = 100 * time.Millisecond

// RenderOptions holds options for the render command.
type RenderOptions struct {
	Watch bool
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render catalogs and overlays to an image",
		Long: `Render the configured view of the sky with its catalog sources,
footprints and STC-S overlays into a PNG, TIFF or BMP image.

The image format follows the file extension of --image. With --watch the
configuration file and every local input are watched, and the image is
rendered again whenever one of them changes.`,
		Example: `  # Render skyoverlay.yaml to sky.png
  skyoverlay render

  # Override the view
  skyoverlay render --center "00 42 44.3 +41 16 09" --fov 3 --image m31.png

  # Re-render on every change
  skyoverlay render --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}

	addViewFlags(cmd.Flags())
	cmd.Flags().String("image", "", "Output image path (.png, .tif, .bmp)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-render when the configuration or its inputs change")

	_ = cmd.RegisterFlagCompletionFunc("projection", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"TAN", "SIN"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// addViewFlags registers the flags that override the view section.
func addViewFlags(flags *pflag.FlagSet) {
	flags.String("center", "", `View centre, e.g. "10.68 +41.27" or "00 42 44.3 +41 16 09"`)
	flags.Float64("fov", 0, "Horizontal field of view in degrees")
	flags.Int("width", 0, "Image width in pixels")
	flags.Int("height", 0, "Image height in pixels")
	flags.String("projection", "", "Projection (TAN|SIN)")
	flags.String("background", "", "Background colour")
}

func runRender(cmd *cobra.Command, opts *RenderOptions) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	if !opts.Watch {
		stats, err := renderOnce(ctx, cc.Cfg, SceneOptions{Logger: cc.Logger})
		if err != nil {
			return err
		}
		printRenderStats(cc.Renderer, cc.Cfg.Image, stats)
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watchAndRender(ctx, cmd, cc)
}

func renderOnce(ctx context.Context, cfg *config.Config, opts SceneOptions) ([]LayerStats, error) {
	scene, err := BuildScene(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	canvas, stats := scene.Render()
	if err := canvas.WriteFile(cfg.Image); err != nil {
		return nil, err
	}
	return stats, nil
}

func printRenderStats(r *output.Renderer, image string, stats []LayerStats) {
	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(map[string]any{"image": image, "layers": stats})
		return
	}
	rows := make([][]any, 0, len(stats))
	for _, s := range stats {
		drawn := fmt.Sprintf("%d", s.Drawn)
		if s.Hidden {
			drawn = "hidden"
		}
		rows = append(rows, []any{s.Kind, s.Name, s.Total, drawn})
	}
	if len(rows) > 0 {
		r.Table([]string{"Layer", "Name", "Total", "Drawn"}, rows)
	}
	r.Success("Rendered " + image)
}

// framePacer collects redraw requests between frames.
type framePacer struct {
	dirty bool
}

func (p *framePacer) RequestRedraw() { p.dirty = true }

// watchAndRender renders once, then again after every debounced change to
// the configuration file or a local input. Errors during a re-render are
// reported and the watch continues.
func watchAndRender(ctx context.Context, cmd *cobra.Command, cc *CommandContext) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	configFile := config.GetConfigFileUsed()
	cfg := cc.Cfg
	pacer := &framePacer{}
	watched := map[string]bool{}

	rebuild := func() {
		scene, err := BuildScene(ctx, cfg, SceneOptions{Logger: cc.Logger, Redraw: pacer})
		if err != nil {
			cc.Renderer.Warnf("render failed: %v", err)
			return
		}
		if len(scene.Catalogs)+len(scene.Overlays) == 0 {
			// Nothing reports changes; the background still needs a frame.
			pacer.RequestRedraw()
		}
		if !pacer.dirty {
			return
		}
		pacer.dirty = false
		canvas, stats := scene.Render()
		if err := canvas.WriteFile(cfg.Image); err != nil {
			cc.Renderer.Warnf("render failed: %v", err)
			return
		}
		printRenderStats(cc.Renderer, cfg.Image, stats)
	}

	for _, path := range watchPaths(configFile, cfg) {
		addWatch(watcher, watched, path, cc)
	}
	rebuild()
	cc.Renderer.Println("Watching for changes (Ctrl+C to stop)")

	reload := make(chan struct{}, 1)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cc.Logger.Debug("input changed, rendering again")
			if configFile != "" {
				next, err := config.LoadConfig(configFile, cmd.Flags())
				if err != nil {
					cc.Renderer.Warnf("%v", err)
					continue
				}
				cfg = next
				for _, path := range watchPaths(configFile, cfg) {
					addWatch(watcher, watched, path, cc)
				}
			}
			rebuild()

		case err := <-watcher.Errors:
			cc.Logger.Error("watcher error", "error", err)
		}
	}
}

// addWatch watches the directory holding path and records path so events on
// siblings are ignored. Editors often replace files instead of writing them.
func addWatch(watcher *fsnotify.Watcher, watched map[string]bool, path string, cc *CommandContext) {
	path = filepath.Clean(path)
	if watched[path] {
		return
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		cc.Logger.Error("failed to watch", "path", path, "error", err)
		return
	}
	watched[path] = true
}

// watchPaths lists the local files a render depends on.
func watchPaths(configFile string, cfg *config.Config) []string {
	var paths []string
	if configFile != "" {
		paths = append(paths, configFile)
	}
	for _, c := range cfg.Catalogs {
		in := c.Input
		switch in.Type {
		case config.InputVOTable, config.InputCSV:
			if in.Path != "" && !isRemote(in.Path) {
				paths = append(paths, in.Path)
			}
		case config.InputSQL:
			if p := in.Adapter.Path; p != "" && p != ":memory:" && !isRemote(p) {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

func isRemote(path string) bool {
	return strings.Contains(path, "://")
}
