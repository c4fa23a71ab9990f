// Package flow renders the game-flow diagram: nodes at fixed positions
// joined by labelled, directed connections, under a pan/zoom viewport.
package flow

import "math"

// Zoom limits and the multiplicative step of the zoom buttons.
const (
	MinScale = 0.5
	MaxScale = 3.0
	ZoomStep = 1.2
)

// Viewport maps world coordinates to the drawing surface:
// screen = offset + scale*world.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64

	panning    bool
	panOriginX float64
	panOriginY float64
}

// NewViewport returns the identity viewport.
func NewViewport() Viewport {
	return Viewport{Scale: 1}
}

// SetScale sets the zoom, clamped to [MinScale, MaxScale].
func (v *Viewport) SetScale(s float64) {
	if math.IsNaN(s) {
		return
	}
	v.Scale = math.Max(MinScale, math.Min(MaxScale, s))
}

// ZoomIn multiplies the scale by ZoomStep.
func (v *Viewport) ZoomIn() { v.SetScale(v.Scale * ZoomStep) }

// ZoomOut divides the scale by ZoomStep.
func (v *Viewport) ZoomOut() { v.SetScale(v.Scale / ZoomStep) }

// Wheel zooms out 10% for a positive (scroll-down) delta and in 10% otherwise.
func (v *Viewport) Wheel(deltaY float64) {
	if deltaY > 0 {
		v.SetScale(v.Scale * 0.9)
	} else {
		v.SetScale(v.Scale * 1.1)
	}
}

// Reset restores scale 1 and zero offsets and cancels any pan.
func (v *Viewport) Reset() {
	*v = NewViewport()
}

// BeginPan starts a drag-pan at screen point (x, y).
func (v *Viewport) BeginPan(x, y float64) {
	v.panning = true
	v.panOriginX = x - v.OffsetX
	v.panOriginY = y - v.OffsetY
}

// PanTo moves the pan so the point grabbed in BeginPan sits under (x, y).
func (v *Viewport) PanTo(x, y float64) {
	if !v.panning {
		return
	}
	v.OffsetX = x - v.panOriginX
	v.OffsetY = y - v.panOriginY
}

// EndPan releases the drag-pan.
func (v *Viewport) EndPan() { v.panning = false }

// Panning reports whether a drag-pan is in progress.
func (v *Viewport) Panning() bool { return v.panning }

// ToWorld converts a screen point to world coordinates.
func (v *Viewport) ToWorld(x, y float64) (float64, float64) {
	return (x - v.OffsetX) / v.Scale, (y - v.OffsetY) / v.Scale
}
