// Package viewport tracks the zoom state for one displayed raster and
// reports zoom relative to the fit-to-viewport scale, where 1.0 means
// the raster exactly fits the viewport.
//
// A View is purely reactive and not safe for concurrent use; callers
// that share one across goroutines serialize access themselves.
package viewport

import "image"

// Zoom gesture directions.
type Direction int

const (
	ZoomIn Direction = iota
	ZoomOut
)

// Default zoom behavior: each gesture scales by 15%, and the relative
// zoom is kept between fit-to-viewport and 10x fit.
const (
	DefaultZoomStepFactor = 1.15
	DefaultZoomMin        = 1.0
	DefaultZoomMax        = 10.0
)

// View holds the zoom state for a single displayed raster.
type View struct {
	// OnZoomChanged, when set, receives the relative zoom after every
	// accepted gesture, image load, and viewport resize.
	OnZoomChanged func(relativeZoom float64)

	ZoomStepFactor float64
	ZoomMin        float64
	ZoomMax        float64

	viewportWidth  int
	viewportHeight int

	img         image.Image
	currentZoom float64
	baseScale   float64
}

// NewView creates a View with the default gesture step and zoom bounds.
// The viewport starts empty; callers report its size with Resize.
func NewView() *View {
	return &View{
		ZoomStepFactor: DefaultZoomStepFactor,
		ZoomMin:        DefaultZoomMin,
		ZoomMax:        DefaultZoomMax,
	}
}

// LoadImage replaces the displayed raster and resets the zoom to
// fit-to-viewport, reporting a relative zoom of 1.0.
func (v *View) LoadImage(img image.Image) {
	v.img = img
	v.refit()
}

// Resize records a new viewport size and re-fits the raster, discarding
// any zoom the user had applied. Re-fitting on every resize matches the
// viewer's long-standing behavior; see DESIGN.md before changing it.
func (v *View) Resize(width, height int) {
	v.viewportWidth = width
	v.viewportHeight = height
	v.refit()
}

// Zoom applies one zoom gesture. The candidate scale is accepted only
// while the resulting relative zoom stays within [ZoomMin, ZoomMax];
// out-of-bounds gestures leave the state untouched. Returns the
// relative zoom after the gesture.
func (v *View) Zoom(direction Direction) float64 {
	if v.img == nil {
		return v.RelativeZoom()
	}

	candidate := v.currentZoom * v.ZoomStepFactor
	if direction == ZoomOut {
		candidate = v.currentZoom / v.ZoomStepFactor
	}

	relative := candidate / v.baseScale
	if relative < v.ZoomMin || relative > v.ZoomMax {
		return v.RelativeZoom()
	}

	v.currentZoom = candidate
	v.emit()

	return v.RelativeZoom()
}

// Clear drops the displayed raster and resets the transform to
// identity.
func (v *View) Clear() {
	v.img = nil
	v.currentZoom = 0
	v.baseScale = 0
}

// Image reports the displayed raster, or nil when the view is empty.
func (v *View) Image() image.Image {
	return v.img
}

// Scale reports the absolute raster-to-device scale.
func (v *View) Scale() float64 {
	if v.img == nil {
		return 1
	}

	return v.currentZoom
}

// RelativeZoom reports the zoom relative to fit-to-viewport. An empty
// view reports 1.0.
func (v *View) RelativeZoom() float64 {
	if v.img == nil || v.baseScale == 0 {
		return 1
	}

	return v.currentZoom / v.baseScale
}

// ScaledSize reports the displayed raster size after applying the
// current scale.
func (v *View) ScaledSize() (width, height int) {
	if v.img == nil {
		return 0, 0
	}

	bounds := v.img.Bounds()

	return int(float64(bounds.Dx()) * v.currentZoom), int(float64(bounds.Dy()) * v.currentZoom)
}

// refit recomputes the fit-to-viewport scale and resets the zoom to it.
func (v *View) refit() {
	if v.img == nil {
		return
	}

	v.baseScale = fitScale(v.viewportWidth, v.viewportHeight, v.img.Bounds())
	v.currentZoom = v.baseScale
	v.emit()
}

func (v *View) emit() {
	if v.OnZoomChanged != nil {
		v.OnZoomChanged(v.RelativeZoom())
	}
}

// fitScale is the largest scale at which the raster still fits entirely
// within the viewport. Degenerate raster or viewport sizes fit at
// identity.
func fitScale(viewportWidth, viewportHeight int, raster image.Rectangle) float64 {
	rw, rh := raster.Dx(), raster.Dy()
	if rw <= 0 || rh <= 0 || viewportWidth <= 0 || viewportHeight <= 0 {
		return 1
	}

	sx := float64(viewportWidth) / float64(rw)
	sy := float64(viewportHeight) / float64(rh)
	if sx < sy {
		return sx
	}

	return sy
}
