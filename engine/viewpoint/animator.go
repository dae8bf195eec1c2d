package viewpoint

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/tween"
)

type animatorImpl struct {
	mu *sync.Mutex

	controls camera.CameraController
	group    tween.Group
	logger   *slog.Logger

	duration       time.Duration
	easing         tween.Easing
	cancelPrevious bool

	// active holds the most recently started position/target pair.
	active []tween.Tween
}

// Animator moves a camera controller to a viewpoint with two eased tweens:
// one for the camera position and one for the orbit target.
// The tweens live in a shared tween.Group that the caller advances every frame.
type Animator interface {
	// Select starts animating towards the viewpoint registered under id.
	// Unknown ids are logged and returned without changing any state.
	//
	// Parameters:
	//   - id: the viewpoint id
	//
	// Returns:
	//   - error: ErrUnknownViewpoint wrapped with the id
	Select(id string) error

	// AnimateTo starts animating towards an arbitrary pose.
	//
	// Parameters:
	//   - vp: the destination pose
	AnimateTo(vp Viewpoint)

	// Busy reports whether the most recently started animation is still running.
	//
	// Returns:
	//   - bool: true while either tween of the latest pair runs
	Busy() bool

	// Group returns the tween group the animator adds to.
	//
	// Returns:
	//   - tween.Group: the shared group
	Group() tween.Group
}

var _ Animator = &animatorImpl{}

// NewAnimator creates an animator driving controls.
// Defaults: 2000 ms, QuadraticOut, overlapping selections allowed, a private tween group.
//
// Parameters:
//   - controls: the controller whose position and target are animated
//   - options: functional options to configure the animator
//
// Returns:
//   - Animator: the new animator
func NewAnimator(controls camera.CameraController, options ...AnimatorBuilderOption) Animator {
	a := &animatorImpl{
		mu:       &sync.Mutex{},
		controls: controls,
		duration: 2000 * time.Millisecond,
		easing:   tween.QuadraticOut,
		logger:   slog.Default(),
	}
	for _, option := range options {
		option(a)
	}
	if a.group == nil {
		a.group = tween.NewGroup()
	}
	a.logger = a.logger.With("component", "viewpoint")
	return a
}

func (a *animatorImpl) Select(id string) error {
	vp, err := Lookup(id)
	if err != nil {
		a.logger.Error("viewpoint selection failed", "id", id, "error", err)
		return err
	}
	a.logger.Debug("animating to viewpoint", "id", id, "duration", a.duration)
	a.AnimateTo(vp)
	return nil
}

func (a *animatorImpl) AnimateTo(vp Viewpoint) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancelPrevious {
		for _, t := range a.active {
			t.Stop()
		}
	}

	ctrl := a.controls
	positionTween := tween.NewTween(
		func() [3]float32 {
			x, y, z := ctrl.Position()
			return [3]float32{x, y, z}
		},
		func(v [3]float32) { ctrl.SetPosition(v[0], v[1], v[2]) },
		vp.Position,
		tween.WithDuration(a.duration),
		tween.WithEasing(a.easing),
	)
	targetTween := tween.NewTween(
		func() [3]float32 {
			x, y, z := ctrl.Target()
			return [3]float32{x, y, z}
		},
		func(v [3]float32) { ctrl.SetTarget(v[0], v[1], v[2]) },
		vp.LookAt,
		tween.WithDuration(a.duration),
		tween.WithEasing(a.easing),
		tween.WithOnUpdate(func([3]float32, float32) { ctrl.Update(0) }),
	)

	positionTween.Start()
	targetTween.Start()
	a.group.Add(positionTween)
	a.group.Add(targetTween)
	a.active = []tween.Tween{positionTween, targetTween}
}

func (a *animatorImpl) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range a.active {
		if t.Running() {
			return true
		}
	}
	return false
}

func (a *animatorImpl) Group() tween.Group {
	return a.group
}
