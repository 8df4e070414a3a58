// Package viewport maps a fixed logical canvas onto the physical window.
//
// Scaling is full-bleed: the drawing surface always matches the physical
// size, and Scale only sizes UI primitives proportionally. There is no
// letterboxing.
package viewport

import (
	"errors"
	"fmt"
	"math"
)

// Default logical canvas and minimum physical window.
const (
	BaseWidth  = 1000
	BaseHeight = 700
	MinWidth   = 800
	MinHeight  = 560
)

// ErrDegenerateSize is returned for non-positive physical sizes.
var ErrDegenerateSize = errors.New("viewport: degenerate size")

// Transform is the current logical-to-physical mapping.
type Transform struct {
	BaseW, BaseH         int
	Scale                float64
	PhysicalW, PhysicalH int
}

// Viewport holds the transform for one window.
type Viewport struct {
	t Transform
}

// New creates a viewport at 1:1 scale over the base canvas.
func New(baseW, baseH int) *Viewport {
	return &Viewport{t: Transform{
		BaseW:     baseW,
		BaseH:     baseH,
		Scale:     1,
		PhysicalW: baseW,
		PhysicalH: baseH,
	}}
}

// UpdateLayout recomputes the transform for a new physical size.
// Calling it again with the same size is a no-op. It reports whether the
// transform changed.
func (v *Viewport) UpdateLayout(physicalW, physicalH int) (bool, error) {
	if physicalW <= 0 || physicalH <= 0 {
		return false, fmt.Errorf("%w: %dx%d", ErrDegenerateSize, physicalW, physicalH)
	}
	if physicalW == v.t.PhysicalW && physicalH == v.t.PhysicalH {
		return false, nil
	}

	v.t.PhysicalW = physicalW
	v.t.PhysicalH = physicalH
	v.t.Scale = math.Min(
		float64(physicalW)/float64(v.t.BaseW),
		float64(physicalH)/float64(v.t.BaseH),
	)
	return true, nil
}

// ToPhysical converts a logical length to whole physical pixels.
func (v *Viewport) ToPhysical(logical float64) int {
	return int(math.Round(logical * v.t.Scale))
}

// Rect converts a logical rectangle to physical pixels.
func (v *Viewport) Rect(x, y, w, h float64) Rect {
	return Rect{X: v.ToPhysical(x), Y: v.ToPhysical(y), W: v.ToPhysical(w), H: v.ToPhysical(h)}
}

// Scale returns the current logical-to-physical multiplier.
func (v *Viewport) Scale() float64 {
	return v.t.Scale
}

// Size returns the physical surface size.
func (v *Viewport) Size() (int, int) {
	return v.t.PhysicalW, v.t.PhysicalH
}

// Transform returns a copy of the current mapping.
func (v *Viewport) Transform() Transform {
	return v.t
}

// Rect is an axis-aligned rectangle in physical pixels.
type Rect struct {
	X, Y, W, H int
}

// Clamp raises a window size to the minimum the UI supports.
// Window plumbing calls it before UpdateLayout.
func Clamp(w, h, minW, minH int) (int, int) {
	return max(w, minW), max(h, minH)
}
