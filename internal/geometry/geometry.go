// Package geometry keeps a renderer's bounds in step with its host control.
package geometry

import (
	"fmt"
	"sync"
)

// Rect is a screen-space rectangle. X and Y are the top-left corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Size is a width and height.
type Size struct {
	Width, Height float64
}

// Position returns the top-left corner.
func (r Rect) Position() (x, y float64) {
	return r.X, r.Y
}

// Size returns the rectangle's extent.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// Layout is the host state bounds are computed from.
type Layout interface {
	GlobalRect() Rect
	ViewportSize() Size
}

// Target receives computed bounds.
type Target interface {
	SetBounds(r Rect)
}

// Synchronizer computes bounds from a Layout and pushes them to a Target.
type Synchronizer struct {
	mu         sync.Mutex
	layout     Layout
	fullWindow bool
	tracked    bool
	lastX      float64
	lastY      float64
	bounds     Rect
}

// NewSynchronizer creates a synchronizer reading from layout.
func NewSynchronizer(layout Layout, fullWindow bool) *Synchronizer {
	return &Synchronizer{layout: layout, fullWindow: fullWindow}
}

// SetFullWindow switches between full-window and embedded bounds. It does
// not push; call Sync afterwards.
func (s *Synchronizer) SetFullWindow(on bool) {
	s.mu.Lock()
	s.fullWindow = on
	s.mu.Unlock()
}

// FullWindow reports the current mode.
func (s *Synchronizer) FullWindow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullWindow
}

// Tick pushes new bounds only when the control has moved since the previous
// tick. The first tick always pushes. It reports whether it pushed.
func (s *Synchronizer) Tick(t Target) bool {
	rect := s.layout.GlobalRect()
	x, y := rect.Position()

	s.mu.Lock()
	if s.tracked && x == s.lastX && y == s.lastY {
		s.mu.Unlock()
		return false
	}
	bounds := s.computeLocked(rect)
	s.mu.Unlock()

	if t != nil {
		t.SetBounds(bounds)
	}
	return true
}

// Sync recomputes and pushes bounds unconditionally.
func (s *Synchronizer) Sync(t Target) Rect {
	rect := s.layout.GlobalRect()

	s.mu.Lock()
	bounds := s.computeLocked(rect)
	s.mu.Unlock()

	if t != nil {
		t.SetBounds(bounds)
	}
	return bounds
}

// Bounds returns the last computed bounds.
func (s *Synchronizer) Bounds() Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

func (s *Synchronizer) computeLocked(rect Rect) Rect {
	s.tracked = true
	s.lastX, s.lastY = rect.Position()

	if s.fullWindow {
		vp := s.layout.ViewportSize()
		s.bounds = Rect{Width: vp.Width, Height: vp.Height}
	} else {
		s.bounds = rect
	}
	return s.bounds
}
