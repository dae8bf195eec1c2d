// Package tween interpolates three-component values over time.
package tween

import (
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

type tweenImpl struct {
	get func() [3]float32
	set func([3]float32)

	from [3]float32
	to   [3]float32

	duration time.Duration
	elapsed  time.Duration
	easing   Easing

	running   bool
	completed bool

	onUpdate   func(value [3]float32, eased float32)
	onComplete func()
}

// Tween animates a [3]float32 value from its current state to a destination.
// The start value is read when Start is called; every Update writes the interpolated
// value through the setter, and the final step writes the destination exactly.
type Tween interface {
	// Start captures the current value as the start point and begins the animation.
	// Restarting a running tween captures a new start value.
	Start()

	// Stop ends the animation without writing further values or firing OnComplete.
	Stop()

	// Update advances the animation by dt and writes the new value.
	//
	// Parameters:
	//   - dt: time elapsed since the previous update
	//
	// Returns:
	//   - bool: true while the tween is still running
	Update(dt time.Duration) bool

	// Running reports whether the tween has been started and has not finished or stopped.
	//
	// Returns:
	//   - bool: true if running
	Running() bool

	// Completed reports whether the tween reached its destination.
	//
	// Returns:
	//   - bool: true once the final value has been written
	Completed() bool

	// Progress returns the linear progress in [0, 1].
	//
	// Returns:
	//   - float32: elapsed / duration
	Progress() float32

	// From returns the start value captured by Start.
	//
	// Returns:
	//   - [3]float32: the start value
	From() [3]float32

	// To returns the destination value.
	//
	// Returns:
	//   - [3]float32: the destination value
	To() [3]float32

	// Duration returns the total animation time.
	//
	// Returns:
	//   - time.Duration: the duration
	Duration() time.Duration
}

var _ Tween = &tweenImpl{}

// NewTween creates a stopped tween that drives a value towards to.
// Defaults: 1 second, Linear easing.
//
// Parameters:
//   - get: reads the current value, called once by Start
//   - set: writes the interpolated value on every Update
//   - to: the destination value
//   - options: functional options to configure the tween
//
// Returns:
//   - Tween: the new tween
func NewTween(get func() [3]float32, set func([3]float32), to [3]float32, options ...TweenBuilderOption) Tween {
	t := &tweenImpl{
		get:      get,
		set:      set,
		to:       to,
		duration: time.Second,
		easing:   Linear,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *tweenImpl) Start() {
	if t.get != nil {
		t.from = t.get()
	}
	t.elapsed = 0
	t.running = true
	t.completed = false
}

func (t *tweenImpl) Stop() {
	t.running = false
}

func (t *tweenImpl) Update(dt time.Duration) bool {
	if !t.running {
		return false
	}
	if dt > 0 {
		t.elapsed += dt
	}

	k := float32(1)
	if t.duration > 0 && t.elapsed < t.duration {
		k = float32(t.elapsed.Seconds() / t.duration.Seconds())
	}
	eased := t.easing(k)

	value := t.to
	if k < 1 {
		value = common.Lerp3(t.from, t.to, eased)
	}
	if t.set != nil {
		t.set(value)
	}
	if t.onUpdate != nil {
		t.onUpdate(value, eased)
	}

	if k >= 1 {
		t.running = false
		t.completed = true
		if t.onComplete != nil {
			t.onComplete()
		}
	}
	return t.running
}

func (t *tweenImpl) Running() bool {
	return t.running
}

func (t *tweenImpl) Completed() bool {
	return t.completed
}

func (t *tweenImpl) Progress() float32 {
	if t.completed {
		return 1
	}
	if t.duration <= 0 {
		return 0
	}
	return common.Clamp(float32(t.elapsed.Seconds()/t.duration.Seconds()), 0, 1)
}

func (t *tweenImpl) From() [3]float32 {
	return t.from
}

func (t *tweenImpl) To() [3]float32 {
	return t.to
}

func (t *tweenImpl) Duration() time.Duration {
	return t.duration
}
