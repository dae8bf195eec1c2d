// Package viewer assembles the model viewer: camera, orbit controls, lit scene,
// asynchronous asset load and viewpoint animation, stepped once per frame.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/tween"
	"github.com/Carmen-Shannon/oxy-viewer/engine/ui"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewpoint"
)

// ModelPosition is where the loaded model root is placed.
var ModelPosition = [3]float32{0, 2, -0.5}

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("viewer already started")

// Viewer is the state of one model viewer. Several viewers may coexist.
// All methods must be called from the frame thread; the asset loader hands its
// results over through the load operation, which Frame drains.
type Viewer struct {
	cfg    config.Config
	logger *slog.Logger

	renderer  renderer.Renderer
	camera    camera.Camera
	controls  camera.OrbitControls
	scene     scene.Scene
	tweens    tween.Group
	animator  viewpoint.Animator
	loader    loader.Loader
	indicator ui.ProgressIndicator
	menu      ui.Menu

	op      *loader.Operation
	loadRes *loader.Result
	root    scene.Node
	ground  scene.Node

	indicatorHidden bool
	modelAdded      bool

	drag dragState
}

// New builds a viewer around a renderer: camera, scene, orbit controls and lights.
// Nothing is loaded until Start.
//
// Parameters:
//   - r: the renderer frames are drawn with
//   - options: functional options to configure the viewer
//
// Returns:
//   - *Viewer: the viewer
//   - error: error if the configuration is invalid
func New(r renderer.Renderer, options ...ViewerBuilderOption) (*Viewer, error) {
	if r == nil {
		return nil, errors.New("viewer requires a renderer")
	}
	v := &Viewer{
		cfg:      config.Default(),
		logger:   slog.Default(),
		renderer: r,
	}
	for _, option := range options {
		option(v)
	}
	if err := v.cfg.Validate(); err != nil {
		return nil, err
	}
	base := v.logger
	v.logger = base.With("component", "viewer")

	cfg := v.cfg
	w, h := r.Size()
	aspect := float32(1)
	if w > 0 && h > 0 {
		aspect = float32(w) / float32(h)
	}

	ctl := cfg.Controls
	v.controls = camera.NewOrbitControls(
		camera.WithPosition(cfg.Camera.Position[0], cfg.Camera.Position[1], cfg.Camera.Position[2]),
		camera.WithTarget(ctl.Target[0], ctl.Target[1], ctl.Target[2]),
		camera.WithDistanceBounds(ctl.MinDistance, ctl.MaxDistance),
		camera.WithPolarBounds(ctl.MinPolar, ctl.MaxPolar),
		camera.WithDamping(ctl.Damping, ctl.DampingFactor),
		camera.WithPan(ctl.Pan),
		camera.WithRotateSpeed(ctl.RotateSpeed),
		camera.WithZoomSpeed(ctl.ZoomSpeed),
		camera.WithPanSpeed(ctl.PanSpeed),
		camera.WithAutoRotate(ctl.AutoRotate, ctl.AutoRotateSpeed),
	)
	v.camera = camera.NewCamera(
		camera.WithFov(cfg.FovRadians()),
		camera.WithAspect(aspect),
		camera.WithNear(cfg.Camera.Near),
		camera.WithFar(cfg.Camera.Far),
		camera.WithController(v.controls),
	)
	v.camera.Update()

	v.scene = scene.NewScene(scene.WithSceneName(cfg.Asset), scene.WithLights(SpotLights()...))

	easing, _ := tween.EasingByName(cfg.Animation.Easing)
	v.tweens = tween.NewGroup()
	v.animator = viewpoint.NewAnimator(v.controls,
		viewpoint.WithGroup(v.tweens),
		viewpoint.WithDuration(cfg.AnimationDuration()),
		viewpoint.WithEasing(easing),
		viewpoint.WithCancelPrevious(cfg.Animation.CancelPrevious),
		viewpoint.WithLogger(base),
	)

	if v.loader == nil {
		v.loader = loader.NewLoader(loader.BackendTypeGLTF,
			loader.WithRoot(cfg.ResourceRoot),
			loader.WithMaxTextureSize(cfg.MaxTextureSize),
			loader.WithLogger(base),
		)
	}
	if v.indicator == nil {
		v.indicator = ui.NewLogIndicator(base)
	}
	if v.menu == nil {
		m, err := ui.NewMenu(cfg.Menu)
		if err != nil {
			return nil, fmt.Errorf("failed to build menu: %w", err)
		}
		v.menu = m
	}
	return v, nil
}

// SpotLights returns the two shadow-casting spot lights that light the model.
//
// Returns:
//   - []light.Light: the lights
func SpotLights() []light.Light {
	spot := func(distance, x, y, z float32) light.Light {
		return light.NewLight(light.LightTypeSpot,
			light.WithColor(1, 1, 1),
			light.WithIntensity(3),
			light.WithDistance(distance),
			light.WithCone(0.22, 1),
			light.WithDecay(2),
			light.WithPosition(x, y, z),
			light.WithTarget(0, 0, 0),
			light.WithCastShadow(true, light.DefaultShadowBias),
		)
	}
	return []light.Light{
		spot(50, -10, 25, -10),
		spot(200, 10, 25, 25),
	}
}

// Start begins loading the configured asset in the background.
// Progress and the result are applied by Frame.
//
// Parameters:
//   - ctx: cancels the load
//
// Returns:
//   - error: ErrAlreadyStarted on a second call
func (v *Viewer) Start(ctx context.Context) error {
	if v.op != nil || v.loadRes != nil {
		return ErrAlreadyStarted
	}
	v.logger.Info("loading asset", "asset", v.cfg.Asset, "root", v.cfg.ResourceRoot)
	v.indicator.SetText(loader.Progress{}.String())
	v.op = v.loader.LoadAsync(ctx, v.cfg.Asset)
	return nil
}

// Frame advances the viewer by dt and draws one frame: pending load events,
// tweens, orbit controls, camera matrices, then the renderer.
// Render errors are logged and the frame is skipped.
//
// Parameters:
//   - dt: time since the previous frame
func (v *Viewer) Frame(dt time.Duration) {
	v.drainLoad()
	v.tweens.Update(dt)
	v.controls.Update(dt)
	v.camera.Update()
	if err := v.renderer.Render(v.scene, v.camera); err != nil {
		v.logger.Warn("frame skipped", "error", err)
	}
}

// Resize applies a new logical viewport size to the camera and renderer.
// Zero or negative sizes (a minimized window) are ignored.
//
// Parameters:
//   - width: logical width
//   - height: logical height
func (v *Viewer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.camera.SetAspect(float32(width) / float32(height))
	v.renderer.Resize(width, height)
}

// Select animates the camera to the viewpoint registered under id.
//
// Parameters:
//   - id: the viewpoint id
//
// Returns:
//   - error: viewpoint.ErrUnknownViewpoint wrapped with the id
func (v *Viewer) Select(id string) error {
	return v.animator.Select(id)
}

// drainLoad applies every load event already queued, without blocking.
func (v *Viewer) drainLoad() {
	for v.op != nil {
		select {
		case ev, ok := <-v.op.Events():
			if !ok {
				v.op = nil
				return
			}
			if ev.Done() {
				v.applyResult(*ev.Result)
				continue
			}
			v.indicator.SetText(ev.Progress.String())
		default:
			return
		}
	}
}

// applyResult is the load subscriber: it hides the indicator and inserts the
// ground and model, each at most once.
func (v *Viewer) applyResult(res loader.Result) {
	v.loadRes = &res
	if res.Err != nil {
		v.logger.Error("failed to load asset", "asset", res.Name, "error", res.Err)
		v.indicator.SetText("Loading failed: " + res.Name)
		return
	}

	if !v.indicatorHidden {
		v.indicator.Hide()
		v.indicatorHidden = true
	}
	if v.modelAdded || res.Root == nil {
		return
	}

	v.ground = scene.NewGround()
	res.Root.Traverse(func(n scene.Node) bool {
		if n.Mesh() != nil {
			n.SetShadows(true, true)
		}
		return true
	})
	res.Root.SetPosition(ModelPosition[0], ModelPosition[1], ModelPosition[2])
	if err := v.scene.Add(v.ground, res.Root); err != nil {
		v.logger.Error("failed to add model to scene", "asset", res.Name, "error", err)
		return
	}
	v.root = res.Root
	v.modelAdded = true
	v.logger.Info("asset loaded",
		"asset", res.Name,
		"meshes", res.Stats.Meshes,
		"triangles", res.Stats.Triangles,
		"textures", res.Stats.Textures,
		"bytes", res.Stats.Bytes,
	)
}

// Loaded reports whether the model has been added to the scene.
func (v *Viewer) Loaded() bool {
	return v.modelAdded
}

// LoadResult returns the terminal load result, or nil while loading.
func (v *Viewer) LoadResult() *loader.Result {
	return v.loadRes
}

// Model returns the loaded model root, nil until loaded.
func (v *Viewer) Model() scene.Node {
	return v.root
}

// Ground returns the ground plane, nil until the model is loaded.
func (v *Viewer) Ground() scene.Node {
	return v.ground
}

// Config returns the validated settings the viewer was built with.
func (v *Viewer) Config() config.Config {
	return v.cfg
}

// Camera returns the perspective camera driven by the orbit controls.
func (v *Viewer) Camera() camera.Camera {
	return v.camera
}

// Controls returns the orbit controls that own the camera pose.
func (v *Viewer) Controls() camera.OrbitControls {
	return v.controls
}

// Scene returns the scene holding the lights, ground and model.
func (v *Viewer) Scene() scene.Scene {
	return v.scene
}

// Renderer returns the renderer frames are drawn with.
func (v *Viewer) Renderer() renderer.Renderer {
	return v.renderer
}

// Animator returns the viewpoint animator behind Select.
func (v *Viewer) Animator() viewpoint.Animator {
	return v.animator
}

// Indicator returns where load progress is shown.
func (v *Viewer) Indicator() ui.ProgressIndicator {
	return v.indicator
}

// Menu returns the viewpoint menu used for key bindings.
func (v *Viewer) Menu() ui.Menu {
	return v.menu
}
