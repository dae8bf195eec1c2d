package viewpoint

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/tween"
)

// AnimatorBuilderOption is a functional option for configuring an Animator.
type AnimatorBuilderOption func(*animatorImpl)

// WithGroup shares a tween group with other animations.
//
// Parameters:
//   - g: the group the animator adds its tweens to
//
// Returns:
//   - AnimatorBuilderOption: functional option to set the group
func WithGroup(g tween.Group) AnimatorBuilderOption {
	return func(a *animatorImpl) {
		a.group = g
	}
}

// WithDuration sets the animation length.
//
// Parameters:
//   - d: duration of both tweens
//
// Returns:
//   - AnimatorBuilderOption: functional option to set the duration
func WithDuration(d time.Duration) AnimatorBuilderOption {
	return func(a *animatorImpl) {
		a.duration = d
	}
}

// WithEasing sets the easing of both tweens.
func WithEasing(e tween.Easing) AnimatorBuilderOption {
	return func(a *animatorImpl) {
		if e != nil {
			a.easing = e
		}
	}
}

// WithCancelPrevious controls what happens when a selection arrives while another animates.
// When false, both pairs keep running and the newest pair writes last each frame.
// When true, the previous pair is stopped first.
//
// Parameters:
//   - cancel: true to stop the previous animation
//
// Returns:
//   - AnimatorBuilderOption: functional option to set the overlap policy
func WithCancelPrevious(cancel bool) AnimatorBuilderOption {
	return func(a *animatorImpl) {
		a.cancelPrevious = cancel
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) AnimatorBuilderOption {
	return func(a *animatorImpl) {
		if logger != nil {
			a.logger = logger
		}
	}
}
