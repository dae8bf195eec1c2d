package tween

import (
	"sync"
	"time"
)

type groupImpl struct {
	mu     *sync.Mutex
	tweens []Tween
}

// Group advances a set of tweens together, in the order they were added.
type Group interface {
	// Add starts tracking a tween. The tween is updated from the next Update on.
	//
	// Parameters:
	//   - t: the tween to add, usually already started
	Add(t Tween)

	// Update advances every running tween by dt in insertion order and drops
	// the ones that finished or were stopped.
	//
	// Parameters:
	//   - dt: time elapsed since the previous update
	Update(dt time.Duration)

	// Len returns the number of tracked tweens.
	//
	// Returns:
	//   - int: the tween count
	Len() int

	// StopAll stops and drops every tracked tween.
	StopAll()
}

var _ Group = &groupImpl{}

// NewGroup creates an empty tween group.
//
// Returns:
//   - Group: the new group
func NewGroup() Group {
	return &groupImpl{mu: &sync.Mutex{}}
}

func (g *groupImpl) Add(t Tween) {
	if t == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tweens = append(g.tweens, t)
}

func (g *groupImpl) Update(dt time.Duration) {
	// snapshot so callbacks may add tweens without holding the lock
	g.mu.Lock()
	active := make([]Tween, len(g.tweens))
	copy(active, g.tweens)
	g.mu.Unlock()

	for _, t := range active {
		t.Update(dt)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.tweens[:0]
	for _, t := range g.tweens {
		if t.Running() {
			kept = append(kept, t)
		}
	}
	clear(g.tweens[len(kept):])
	g.tweens = kept
}

func (g *groupImpl) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tweens)
}

func (g *groupImpl) StopAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.tweens {
		t.Stop()
	}
	clear(g.tweens)
	g.tweens = g.tweens[:0]
}
