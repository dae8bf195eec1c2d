package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "millennium_falcon", cfg.Asset)
	assert.Equal(t, "public", cfg.ResourceRoot)
	assert.Equal(t, 2*time.Second, cfg.AnimationDuration())
	assert.False(t, cfg.Animation.CancelPrevious)
	assert.Equal(t, [3]float32{0, 12, 0}, cfg.Camera.Position)
	assert.Equal(t, [3]float32{0, 2, -0.5}, cfg.Controls.Target)
	assert.InDelta(t, 1.309, cfg.FovRadians(), 1e-3)
}

func TestDefaultMenu(t *testing.T) {
	menu := DefaultMenu()
	require.Len(t, menu, 6)
	assert.Equal(t, MenuEntry{ID: "satellite", Label: "Satellite", Key: "1"}, menu[0])
	assert.Equal(t, "warpDrive", menu[5].ID)
	assert.Equal(t, "6", menu[5].Key)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
asset = "x_wing"

[window]
width = 800

[animation]
duration_ms = 500
cancel_previous = true

[log]
level = "debug"
`))
	require.NoError(t, err)
	assert.Equal(t, "x_wing", cfg.Asset)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset keys keep their default")
	assert.Equal(t, 500*time.Millisecond, cfg.AnimationDuration())
	assert.True(t, cfg.Animation.CancelPrevious)
	assert.Len(t, cfg.Menu, 6)
}

func TestParseMenuReplacesDefault(t *testing.T) {
	cfg, err := Parse([]byte(`
[[menu]]
id = "frontal"
label = "Front"
key = "f"

[[menu]]
id = "sidePod"
label = "Side pod"
key = "s"
`))
	require.NoError(t, err)
	assert.Equal(t, []MenuEntry{
		{ID: "frontal", Label: "Front", Key: "f"},
		{ID: "sidePod", Label: "Side pod", Key: "s"},
	}, cfg.Menu)
}

func TestParseRejectsMenuEntryWithoutViewpoint(t *testing.T) {
	_, err := Parse([]byte("[[menu]]\nid = \"bogus\"\nkey = \"1\"\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "bogus")
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[window]\nfullscreen = true\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseRejectsMalformedToml(t *testing.T) {
	_, err := Parse([]byte("asset = \n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"empty asset":        func(c *Config) { c.Asset = "" },
		"nested asset":       func(c *Config) { c.Asset = "a/b" },
		"parent asset":       func(c *Config) { c.Asset = ".." },
		"zero width":         func(c *Config) { c.Window.Width = 0 },
		"bad clear color":    func(c *Config) { c.Renderer.ClearColor = "black" },
		"bad tone mapping":   func(c *Config) { c.Renderer.ToneMapping = "reinhard" },
		"shadow map size":    func(c *Config) { c.Renderer.ShadowMapSize = 1000 },
		"msaa":               func(c *Config) { c.Renderer.MSAA = 2 },
		"fov":                func(c *Config) { c.Camera.Fov = 180 },
		"far before near":    func(c *Config) { c.Camera.Far = 0.001 },
		"distance bounds":    func(c *Config) { c.Controls.MinDistance = 30 },
		"polar bounds":       func(c *Config) { c.Controls.MaxPolar = 4 },
		"damping factor":     func(c *Config) { c.Controls.DampingFactor = 0 },
		"negative duration":  func(c *Config) { c.Animation.DurationMS = -1 },
		"unknown easing":     func(c *Config) { c.Animation.Easing = "bounce" },
		"log level":          func(c *Config) { c.Log.Level = "chatty" },
		"log format":         func(c *Config) { c.Log.Format = "xml" },
		"empty menu id":      func(c *Config) { c.Menu[0].ID = "" },
		"unknown menu id":    func(c *Config) { c.Menu[0].ID = "bogus" },
		"unparseable key":    func(c *Config) { c.Menu[0].Key = "F1" },
		"duplicate menu key": func(c *Config) { c.Menu[1].Key = c.Menu[0].Key },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadAndLoadIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.toml")

	cfg, found, err := LoadIfExists(path)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Default(), cfg)

	_, err = Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("resource_root = \"assets\"\n"), 0o644))
	cfg, found, err = LoadIfExists(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "assets", cfg.ResourceRoot)

	require.NoError(t, os.WriteFile(path, []byte("max_texture_size = 0\n"), 0o644))
	_, _, err = LoadIfExists(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEncodeParsesBack(t *testing.T) {
	cfg := Default()
	cfg.Asset = "tie_fighter"
	cfg.Controls.AutoRotate = true

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))

	parsed, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "component", "test")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"component":"test"`)
}
