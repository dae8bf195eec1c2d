// Package config loads the viewer settings file.
//
// Settings are stored as TOML. Every field has a default (see Default), and a
// settings file only needs the keys it wants to change.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/tween"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewpoint"
	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is the settings file looked up when none is given.
const DefaultPath = "oxy-viewer.toml"

// ErrInvalidConfig is returned when a settings value is out of range or malformed.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every viewer setting.
type Config struct {
	// Asset is the directory name of the model under ResourceRoot; the model is <Asset>/scene.gltf.
	Asset string `toml:"asset"`
	// ResourceRoot is the directory holding the asset directories.
	ResourceRoot string `toml:"resource_root"`
	// MaxTextureSize is the largest texture edge uploaded without downscaling.
	MaxTextureSize int `toml:"max_texture_size"`

	Window    WindowConfig    `toml:"window"`
	Renderer  RendererConfig  `toml:"renderer"`
	Camera    CameraConfig    `toml:"camera"`
	Controls  ControlsConfig  `toml:"controls"`
	Animation AnimationConfig `toml:"animation"`
	Log       LogConfig       `toml:"log"`

	// Menu lists the viewpoint entries bound to keys, in display order.
	Menu []MenuEntry `toml:"menu"`
}

// WindowConfig configures the platform window and frame loop.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
	// FrameLimit caps frames per second; 0 leaves pacing to vsync.
	FrameLimit int `toml:"frame_limit"`
	// Profile logs FPS and memory once per second.
	Profile bool `toml:"profile"`
}

// RendererConfig configures the drawing surface.
type RendererConfig struct {
	ClearColor    string  `toml:"clear_color"`
	ToneMapping   string  `toml:"tone_mapping"`
	Exposure      float32 `toml:"exposure"`
	Shadows       bool    `toml:"shadows"`
	ShadowMapSize int     `toml:"shadow_map_size"`
	MSAA          int     `toml:"msaa"`
	VSync         bool    `toml:"vsync"`
	// PixelRatio overrides the window's content scale when positive.
	PixelRatio float32 `toml:"pixel_ratio"`
}

// CameraConfig configures the perspective camera. Angles are in degrees.
type CameraConfig struct {
	Fov      float32    `toml:"fov"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
	Position [3]float32 `toml:"position"`
}

// ControlsConfig configures the orbit controls. Polar angles are in radians.
type ControlsConfig struct {
	Target          [3]float32 `toml:"target"`
	Damping         bool       `toml:"damping"`
	DampingFactor   float32    `toml:"damping_factor"`
	Pan             bool       `toml:"pan"`
	MinDistance     float32    `toml:"min_distance"`
	MaxDistance     float32    `toml:"max_distance"`
	MinPolar        float32    `toml:"min_polar"`
	MaxPolar        float32    `toml:"max_polar"`
	AutoRotate      bool       `toml:"auto_rotate"`
	AutoRotateSpeed float32    `toml:"auto_rotate_speed"`
	RotateSpeed     float32    `toml:"rotate_speed"`
	ZoomSpeed       float32    `toml:"zoom_speed"`
	PanSpeed        float32    `toml:"pan_speed"`
}

// AnimationConfig configures viewpoint transitions.
type AnimationConfig struct {
	DurationMS int    `toml:"duration_ms"`
	Easing     string `toml:"easing"`
	// CancelPrevious stops a running transition when a new viewpoint is selected.
	CancelPrevious bool `toml:"cancel_previous"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MenuEntry binds a viewpoint id to a label and a key.
type MenuEntry struct {
	ID    string `toml:"id"`
	Label string `toml:"label"`
	Key   string `toml:"key"`
}

// Default returns the built-in settings.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Asset:          "millennium_falcon",
		ResourceRoot:   "public",
		MaxTextureSize: common.DefaultMaxTextureSize,
		Window: WindowConfig{
			Title:     "oxy-viewer",
			Width:     1280,
			Height:    720,
			Resizable: true,
		},
		Renderer: RendererConfig{
			ClearColor:    "#000000",
			ToneMapping:   "aces",
			Exposure:      1,
			Shadows:       true,
			ShadowMapSize: 2048,
			MSAA:          4,
			VSync:         true,
		},
		Camera: CameraConfig{
			Fov:      75,
			Near:     0.01,
			Far:      2000,
			Position: [3]float32{0, 12, 0},
		},
		Controls: ControlsConfig{
			Target:          [3]float32{0, 2, -0.5},
			Damping:         true,
			DampingFactor:   0.05,
			Pan:             true,
			MinDistance:     0.1,
			MaxDistance:     20,
			MinPolar:        0.5,
			MaxPolar:        1.5,
			AutoRotateSpeed: 2,
			RotateSpeed:     1,
			ZoomSpeed:       1,
			PanSpeed:        1,
		},
		Animation: AnimationConfig{
			DurationMS: 2000,
			Easing:     "quadratic-out",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Menu: DefaultMenu(),
	}
}

// DefaultMenu binds every viewpoint, in menu order, to the keys 1 through 9.
//
// Returns:
//   - []MenuEntry: the default entries
func DefaultMenu() []MenuEntry {
	ids := viewpoint.IDs()
	entries := make([]MenuEntry, 0, len(ids))
	for i, id := range ids {
		vp, _ := viewpoint.Lookup(id)
		key := ""
		if i < 9 {
			key = fmt.Sprintf("%d", i+1)
		}
		entries = append(entries, MenuEntry{ID: id, Label: vp.Label, Key: key})
	}
	return entries
}

// Load reads a settings file over the defaults and validates the result.
// Keys absent from the file keep their default. Unknown keys are rejected.
//
// Parameters:
//   - path: the TOML file to read
//
// Returns:
//   - Config: the merged settings
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadIfExists behaves like Load but returns the defaults when path does not exist.
//
// Parameters:
//   - path: the TOML file to read
//
// Returns:
//   - Config: the merged settings, or the defaults
//   - bool: true if the file was found
//   - error: error if the file exists but is invalid
func LoadIfExists(path string) (Config, bool, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return Config{}, true, err
	}
	return cfg, true, nil
}

// Parse decodes TOML settings over the defaults and validates the result.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the merged settings
//   - error: error if the document is malformed or invalid
func Parse(data []byte) (Config, error) {
	cfg := Default()
	// array tables append on decode; start the menu empty so the file replaces it
	cfg.Menu = nil

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.TrimSpace(strict.String()))
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return Config{}, fmt.Errorf("%w: line %d column %d: %s", ErrInvalidConfig, row, col, decodeErr.Error())
		}
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(cfg.Menu) == 0 {
		cfg.Menu = DefaultMenu()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes the settings as TOML.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - error: error if encoding or writing fails
func (c Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate checks every field for range and format errors.
//
// Returns:
//   - error: ErrInvalidConfig wrapped with the first offending field, or nil
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
	}

	if c.Asset == "" || c.Asset == "." || strings.ContainsAny(c.Asset, `/\`) || !fs.ValidPath(c.Asset) {
		return invalid("asset must be a single directory name, got %q", c.Asset)
	}
	if c.ResourceRoot == "" {
		return invalid("resource_root must not be empty")
	}
	if c.MaxTextureSize < 1 {
		return invalid("max_texture_size must be positive, got %d", c.MaxTextureSize)
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return invalid("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.FrameLimit < 0 {
		return invalid("window.frame_limit must not be negative, got %d", c.Window.FrameLimit)
	}

	if _, err := common.ParseHexColor(c.Renderer.ClearColor); err != nil {
		return invalid("renderer.clear_color: %v", err)
	}
	switch c.Renderer.ToneMapping {
	case "aces", "none":
	default:
		return invalid("renderer.tone_mapping must be \"aces\" or \"none\", got %q", c.Renderer.ToneMapping)
	}
	if !(c.Renderer.Exposure > 0) {
		return invalid("renderer.exposure must be positive, got %v", c.Renderer.Exposure)
	}
	if s := c.Renderer.ShadowMapSize; s < 256 || s > 8192 || s&(s-1) != 0 {
		return invalid("renderer.shadow_map_size must be a power of two in [256, 8192], got %d", s)
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		return invalid("renderer.msaa must be 1 or 4, got %d", c.Renderer.MSAA)
	}
	if c.Renderer.PixelRatio < 0 {
		return invalid("renderer.pixel_ratio must not be negative, got %v", c.Renderer.PixelRatio)
	}

	if !(c.Camera.Fov > 0 && c.Camera.Fov < 180) {
		return invalid("camera.fov must be in (0, 180) degrees, got %v", c.Camera.Fov)
	}
	if !(c.Camera.Near > 0) || !(c.Camera.Far > c.Camera.Near) {
		return invalid("camera planes must satisfy 0 < near < far, got near %v far %v", c.Camera.Near, c.Camera.Far)
	}
	if !common.IsFinite3(c.Camera.Position) {
		return invalid("camera.position must be finite")
	}

	ctl := c.Controls
	if !common.IsFinite3(ctl.Target) {
		return invalid("controls.target must be finite")
	}
	if !(ctl.MinDistance > 0) || ctl.MaxDistance < ctl.MinDistance {
		return invalid("controls distance bounds must satisfy 0 < min <= max, got [%v, %v]", ctl.MinDistance, ctl.MaxDistance)
	}
	if ctl.MinPolar < 0 || ctl.MaxPolar > math32.Pi || ctl.MaxPolar < ctl.MinPolar {
		return invalid("controls polar bounds must satisfy 0 <= min <= max <= pi, got [%v, %v]", ctl.MinPolar, ctl.MaxPolar)
	}
	if !(ctl.DampingFactor > 0 && ctl.DampingFactor <= 1) {
		return invalid("controls.damping_factor must be in (0, 1], got %v", ctl.DampingFactor)
	}

	if c.Animation.DurationMS < 0 {
		return invalid("animation.duration_ms must not be negative, got %d", c.Animation.DurationMS)
	}
	if _, ok := tween.EasingByName(c.Animation.Easing); !ok {
		return invalid("animation.easing %q is not known", c.Animation.Easing)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return invalid("log.level: %v", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}

	keys := make(map[uint32]string, len(c.Menu))
	for i, entry := range c.Menu {
		if entry.ID == "" {
			return invalid("menu[%d].id must not be empty", i)
		}
		if _, err := viewpoint.Lookup(entry.ID); err != nil {
			return invalid("menu[%d].id: %v", i, err)
		}
		if entry.Key == "" {
			continue
		}
		code, err := common.ParseKey(entry.Key)
		if err != nil {
			return invalid("menu[%d].key: %v", i, err)
		}
		if other, dup := keys[code]; dup {
			return invalid("menu key %q is bound to both %q and %q", entry.Key, other, entry.ID)
		}
		keys[code] = entry.ID
	}
	return nil
}

// AnimationDuration returns the viewpoint transition length.
//
// Returns:
//   - time.Duration: the duration
func (c Config) AnimationDuration() time.Duration {
	return time.Duration(c.Animation.DurationMS) * time.Millisecond
}

// FovRadians returns the camera field of view in radians.
func (c Config) FovRadians() float32 {
	return c.Camera.Fov * math32.Pi / 180
}

// SlogLevel parses Level into a slog level.
//
// Returns:
//   - slog.Level: the level
//   - error: error if the level name is unknown
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// NewLogger builds a structured logger writing to w in the configured format.
//
// Parameters:
//   - w: the log destination
//
// Returns:
//   - *slog.Logger: the logger
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
