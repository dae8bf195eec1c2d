package tween

import "time"

// TweenBuilderOption is a functional option for configuring a Tween.
type TweenBuilderOption func(*tweenImpl)

// WithDuration sets how long the tween takes to reach its destination.
//
// Parameters:
//   - d: the duration; zero or negative jumps to the destination on the first Update
//
// Returns:
//   - TweenBuilderOption: functional option to set the duration
func WithDuration(d time.Duration) TweenBuilderOption {
	return func(t *tweenImpl) {
		t.duration = d
	}
}

// WithEasing sets the easing function. Nil keeps Linear.
//
// Parameters:
//   - e: the easing function
//
// Returns:
//   - TweenBuilderOption: functional option to set the easing
func WithEasing(e Easing) TweenBuilderOption {
	return func(t *tweenImpl) {
		if e != nil {
			t.easing = e
		}
	}
}

// WithOnUpdate registers a callback invoked after each value write.
//
// Parameters:
//   - fn: receives the written value and the eased progress
//
// Returns:
//   - TweenBuilderOption: functional option to set the update callback
func WithOnUpdate(fn func(value [3]float32, eased float32)) TweenBuilderOption {
	return func(t *tweenImpl) {
		t.onUpdate = fn
	}
}

// WithOnComplete registers a callback invoked once the destination is written.
func WithOnComplete(fn func()) TweenBuilderOption {
	return func(t *tweenImpl) {
		t.onComplete = fn
	}
}
