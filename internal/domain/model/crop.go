package model

import "math"

// Crop overlay constraints, in display pixels.
const (
	MinCropSize         = 50.0
	DefaultCropFraction = 0.8
)

// Size is a width/height pair in pixels.
type Size struct {
	W float64
	H float64
}

// Empty reports whether either dimension is not a positive finite number.
func (s Size) Empty() bool {
	return !(s.W > 0 && s.H > 0) || math.IsInf(s.W, 0) || math.IsInf(s.H, 0)
}

// CropRect is the square crop overlay in display coordinates.
type CropRect struct {
	Left float64
	Top  float64
	Size float64
}

// Finite reports whether every field is a finite number.
func (r CropRect) Finite() bool {
	for _, v := range []float64{r.Left, r.Top, r.Size} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SourceRect is a crop rectangle mapped into source-image pixel coordinates.
type SourceRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Within returns the part of r that lies inside a w x h image. The result has
// zero size when they do not overlap or when r is not finite.
func (r SourceRect) Within(w, h float64) SourceRect {
	x0, y0 := math.Max(r.X, 0), math.Max(r.Y, 0)
	x1, y1 := math.Min(r.X+r.Width, w), math.Min(r.Y+r.Height, h)
	if !(x1 > x0 && y1 > y0) {
		return SourceRect{}
	}
	return SourceRect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// CropFrame ties a source image of natural size to the size it is displayed
// at and to the container the crop overlay moves in. The overlay must stay
// inside the container.
type CropFrame struct {
	Natural   Size
	Display   Size
	Container Size
	Rect      CropRect
}

// NewCropFrame returns a frame whose overlay is the default centered square of
// side DefaultCropFraction * min(container width, container height).
func NewCropFrame(natural, display, container Size) CropFrame {
	size := math.Min(container.W, container.H) * DefaultCropFraction
	return CropFrame{
		Natural:   natural,
		Display:   display,
		Container: container,
		Rect: CropRect{
			Left: (container.W - size) / 2,
			Top:  (container.H - size) / 2,
			Size: size,
		},
	}
}

// Scale returns the natural-to-display ratios on each axis.
func (f CropFrame) Scale() (float64, float64) {
	return f.Natural.W / f.Display.W, f.Natural.H / f.Display.H
}

// CropToSource maps a display-space overlay to source-image pixels.
func (f CropFrame) CropToSource(r CropRect) SourceRect {
	sx, sy := f.Scale()
	return SourceRect{
		X:      r.Left * sx,
		Y:      r.Top * sy,
		Width:  r.Size * sx,
		Height: r.Size * sy,
	}
}

// Source maps the frame's current overlay to source-image pixels.
func (f CropFrame) Source() SourceRect {
	return f.CropToSource(f.Rect)
}

// Drag moves an overlay that was at start when the gesture began by the
// pointer delta (dx, dy), clamping the top-left corner so the whole square
// stays inside the container.
func (f CropFrame) Drag(start CropRect, dx, dy float64) CropRect {
	return CropRect{
		Left: clamp(start.Left+dx, 0, f.Container.W-start.Size),
		Top:  clamp(start.Top+dy, 0, f.Container.H-start.Size),
		Size: start.Size,
	}
}

// Resize grows or shrinks an overlay that was at start when the gesture began.
// The larger of the two pointer deltas drives the side so the overlay stays
// square. The side is floored at MinCropSize and then clamped so the square
// does not cross the container edge from its current top-left corner.
func (f CropFrame) Resize(start CropRect, dx, dy float64) CropRect {
	size := math.Max(MinCropSize, start.Size+math.Max(dx, dy))
	size = math.Min(size, f.Container.W-start.Left)
	size = math.Min(size, f.Container.H-start.Top)
	return CropRect{Left: start.Left, Top: start.Top, Size: size}
}

// Clamp normalizes an overlay supplied by a client: the side is floored at
// MinCropSize and capped by the container, then the corner is pulled inside.
func (f CropFrame) Clamp(r CropRect) CropRect {
	size := math.Max(MinCropSize, r.Size)
	size = math.Min(size, math.Min(f.Container.W, f.Container.H))
	return CropRect{
		Left: clamp(r.Left, 0, f.Container.W-size),
		Top:  clamp(r.Top, 0, f.Container.H-size),
		Size: size,
	}
}

// clamp bounds v to [lo, hi]. When hi < lo the lower bound wins.
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
