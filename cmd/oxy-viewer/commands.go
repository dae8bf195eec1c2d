package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/ui"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewpoint"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// flagValues holds the command line overrides of the settings file.
type flagValues struct {
	configPath     string
	asset          string
	root           string
	width          int
	height         int
	logLevel       string
	profile        bool
	cancelPrevious bool
}

func newRootCommand() *cobra.Command {
	flags := &flagValues{}
	cmd := &cobra.Command{
		Use:   "oxy-viewer",
		Short: "Interactive glTF model viewer",
		Long: `oxy-viewer - Interactive glTF model viewer

Loads <root>/<asset>/scene.gltf into a lit scene with an orbit camera.

Controls:
  Left drag    - Orbit
  Right drag   - Pan (middle drag too)
  Scroll       - Zoom
  1-6          - Fly to a viewpoint
  Esc          - Quit`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runViewer(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", config.DefaultPath, "Settings file (TOML)")
	pf.StringVar(&flags.root, "root", "", "Directory holding the asset directories")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	f := cmd.Flags()
	f.StringVarP(&flags.asset, "asset", "a", "", "Asset directory name under the root")
	f.IntVar(&flags.width, "width", 0, "Window width")
	f.IntVar(&flags.height, "height", 0, "Window height")
	f.BoolVar(&flags.profile, "profile", false, "Log FPS and memory once per second")
	f.BoolVar(&flags.cancelPrevious, "cancel-previous", false, "Stop a running viewpoint transition when another is selected")

	cmd.AddCommand(newViewpointsCommand(), newInfoCommand(flags))
	return cmd
}

func newViewpointsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "viewpoints",
		Short: "List the predefined camera viewpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printViewpoints(termenv.NewOutput(cmd.OutOrStdout()))
		},
	}
}

func newInfoCommand(flags *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "info [asset]",
		Short: "Load an asset without a window and print what it contains",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.asset = args[0]
			}
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
			l := loader.NewLoader(loader.BackendTypeGLTF,
				loader.WithRoot(cfg.ResourceRoot),
				loader.WithMaxTextureSize(cfg.MaxTextureSize),
				loader.WithLogger(logger),
			)
			res, err := l.Load(cmd.Context(), cfg.Asset)
			if err != nil {
				return fmt.Errorf("load %s: %w", cfg.Asset, err)
			}
			return printInfo(termenv.NewOutput(cmd.OutOrStdout()), res)
		},
	}
}

// loadConfig reads the settings file and applies the flags that were set.
// A missing file is only an error when --config was given explicitly.
func loadConfig(cmd *cobra.Command, flags *flagValues) (config.Config, error) {
	var cfg config.Config
	var err error
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(flags.configPath)
	} else {
		cfg, _, err = config.LoadIfExists(flags.configPath)
	}
	if err != nil {
		return config.Config{}, err
	}

	changed := cmd.Flags().Changed
	if flags.asset != "" {
		cfg.Asset = flags.asset
	}
	if changed("root") {
		cfg.ResourceRoot = flags.root
	}
	if changed("width") {
		cfg.Window.Width = flags.width
	}
	if changed("height") {
		cfg.Window.Height = flags.height
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("profile") {
		cfg.Window.Profile = flags.profile
	}
	if changed("cancel-previous") {
		cfg.Animation.CancelPrevious = flags.cancelPrevious
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// rendererOptions translates the renderer settings into builder options.
func rendererOptions(cfg config.Config, logger *slog.Logger) ([]renderer.RendererBuilderOption, error) {
	clear, err := common.ParseHexColor(cfg.Renderer.ClearColor)
	if err != nil {
		return nil, err
	}
	tm, err := renderer.ParseToneMapping(cfg.Renderer.ToneMapping)
	if err != nil {
		return nil, err
	}
	present := renderer.PresentModeVSync
	if !cfg.Renderer.VSync {
		present = renderer.PresentModeUncapped
	}

	opts := []renderer.RendererBuilderOption{
		renderer.WithClearColor(clear),
		renderer.WithToneMapping(tm),
		renderer.WithExposure(cfg.Renderer.Exposure),
		renderer.WithShadows(cfg.Renderer.Shadows),
		renderer.WithShadowMapSize(cfg.Renderer.ShadowMapSize),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithPresentMode(present),
		renderer.WithLogger(logger),
	}
	if cfg.Renderer.PixelRatio > 0 {
		opts = append(opts, renderer.WithPixelRatio(cfg.Renderer.PixelRatio))
	}
	return opts, nil
}

// runViewer opens the window and blocks until it is closed.
func runViewer(ctx context.Context, cfg config.Config, out io.Writer) error {
	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	menu, err := ui.NewMenu(cfg.Menu)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Viewpoints:")
	if err := menu.Print(out); err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithSizeLimits(320, 200, 0, 0),
		window.WithResizable(cfg.Window.Resizable),
	)
	if err != nil {
		return fmt.Errorf("failed to open window: %w", err)
	}
	defer win.Close()

	opts, err := rendererOptions(cfg, logger)
	if err != nil {
		return err
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win, opts...)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Release()

	baseTitle := cfg.Window.Title
	if hint := menu.Hint(); hint != "" {
		baseTitle += " | " + hint
	}
	win.SetTitle(baseTitle)
	indicator := ui.NewMultiIndicator(ui.NewTitleIndicator(win, baseTitle), ui.NewLogIndicator(logger))

	v, err := viewer.New(r,
		viewer.WithConfig(cfg),
		viewer.WithIndicator(indicator),
		viewer.WithMenu(menu),
		viewer.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	v.Attach(win)

	eng, err := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithFrameCallback(v.Frame),
		engine.WithResizeCallback(v.Resize),
		engine.WithProfiling(cfg.Window.Profile),
		engine.WithFrameLimit(float64(cfg.Window.FrameLimit)),
		engine.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := v.Start(ctx); err != nil {
		return err
	}
	return eng.Run()
}

func printViewpoints(out *termenv.Output) error {
	title := out.String("Viewpoints").Bold()
	if _, err := fmt.Fprintln(out, title); err != nil {
		return err
	}
	for i, id := range viewpoint.IDs() {
		vp, err := viewpoint.Lookup(id)
		if err != nil {
			return err
		}
		name := out.String(fmt.Sprintf("%-16s", id)).Foreground(out.Color("6"))
		label := out.String(vp.Label).Faint()
		if _, err := fmt.Fprintf(out, "  %d  %s %s\n     position %s\n     look at  %s\n",
			i+1, name, label, formatVec(vp.Position), formatVec(vp.LookAt)); err != nil {
			return err
		}
	}
	return nil
}

func printInfo(out *termenv.Output, res loader.Result) error {
	if res.Root == nil {
		return errors.New("asset has no model")
	}
	row := func(name string, value any) error {
		_, err := fmt.Fprintf(out, "  %-10s %v\n", out.String(name).Faint(), value)
		return err
	}
	if _, err := fmt.Fprintln(out, out.String(res.Name).Bold()); err != nil {
		return err
	}
	s := res.Stats
	for _, r := range []struct {
		name  string
		value any
	}{
		{"nodes", s.Nodes},
		{"meshes", s.Meshes},
		{"triangles", s.Triangles},
		{"vertices", s.Vertices},
		{"materials", s.Materials},
		{"textures", s.Textures},
		{"skipped", s.Skipped},
		{"bytes", s.Bytes},
	} {
		if err := row(r.name, r.value); err != nil {
			return err
		}
	}
	return nil
}

func formatVec(v [3]float32) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v[0], v[1], v[2])
}
