package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureRoot = "../../engine/loader/testdata"

func asciiOutput(buf *bytes.Buffer) *termenv.Output {
	return termenv.NewOutput(buf, termenv.WithProfile(termenv.Ascii))
}

func TestPrintViewpoints(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printViewpoints(asciiOutput(&buf)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Viewpoints\n"))
	for _, id := range []string{"satellite", "machineGun", "frontal", "sidePod", "airConditioning", "warpDrive"} {
		assert.Contains(t, out, id)
	}
	assert.Contains(t, out, "position (2.2363, 2.8207, 2.6848)")
	assert.Contains(t, out, "look at  (0.0000, 2.0000, -0.5000)")
	assert.Less(t, strings.Index(out, "satellite"), strings.Index(out, "warpDrive"), "menu order")
}

func TestInfoCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"info", "quad", "--root", fixtureRoot, "--log-level", "error", "--config", filepath.Join(t.TempDir(), "none.toml")})

	err := cmd.ExecuteContext(context.Background())
	assert.Error(t, err, "an explicit missing config file is an error")

	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"info", "quad", "--root", fixtureRoot, "--log-level", "error"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	text := out.String()
	assert.Contains(t, text, "quad")
	assert.Regexp(t, `triangles\s+2`, text)
	assert.Regexp(t, `textures\s+1`, text)
	assert.Regexp(t, `meshes\s+1`, text)
}

func TestInfoCommandMissingAsset(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"info", "nothing-here", "--root", fixtureRoot, "--log-level", "error"})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte("asset = \"from_file\"\n[window]\nwidth = 640\n"), 0o644))

	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--height", "480", "--cancel-previous", "--log-level", "debug"}))
	flags := &flagValues{}
	flags.configPath, _ = cmd.Flags().GetString("config")
	flags.height, _ = cmd.Flags().GetInt("height")
	flags.cancelPrevious, _ = cmd.Flags().GetBool("cancel-previous")
	flags.logLevel, _ = cmd.Flags().GetString("log-level")

	cfg, err := loadConfig(cmd, flags)
	require.NoError(t, err)
	assert.Equal(t, "from_file", cfg.Asset)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 480, cfg.Window.Height)
	assert.True(t, cfg.Animation.CancelPrevious)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, config.Default().ResourceRoot, cfg.ResourceRoot, "unset flags keep file values")

	flags.asset = "cli_asset"
	cfg, err = loadConfig(cmd, flags)
	require.NoError(t, err)
	assert.Equal(t, "cli_asset", cfg.Asset)
}

func TestLoadConfigRejectsInvalidOverride(t *testing.T) {
	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "--width=-5"}))
	flags := &flagValues{width: -5}
	flags.configPath, _ = cmd.Flags().GetString("config")

	_, err := loadConfig(cmd, flags)
	assert.Error(t, err)

	cmd = newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--width=-5"}))
	flags = &flagValues{configPath: filepath.Join(t.TempDir(), "missing.toml"), width: -5}
	_, err = loadConfig(cmd, flags)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRendererOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Renderer.VSync = false
	cfg.Renderer.ToneMapping = "none"
	cfg.Renderer.ClearColor = "#336699"
	cfg.Renderer.PixelRatio = 2
	cfg.Renderer.MSAA = 1

	opts, err := rendererOptions(cfg, nil)
	require.NoError(t, err)

	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, nil, opts...)
	require.NoError(t, err)
	got := r.Options()
	assert.Equal(t, renderer.PresentModeUncapped, got.PresentMode)
	assert.Equal(t, renderer.ToneMappingNone, got.ToneMapping)
	assert.Equal(t, renderer.MSAAOff, got.MSAA)
	assert.Equal(t, float32(2), r.PixelRatio())
	assert.Greater(t, got.ClearColor[2], got.ClearColor[0])

	cfg.Renderer.ToneMapping = "filmic"
	_, err = rendererOptions(cfg, nil)
	assert.Error(t, err)
}
