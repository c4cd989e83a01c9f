package render

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
)

// NormalizeForDisplay converts one frame's samples plus display
// metadata into an 8-bit grayscale raster. It is a pure function: no
// I/O, no retained references, the caller's grid is never mutated.
//
// The stages run in a fixed order, each a no-op when its inputs are
// absent or default:
//
//  1. modality rescale (value*slope + intercept), which promotes the
//     storage kind to float;
//  2. MONOCHROME1 polarity inversion (max of the current array minus
//     each value), which preserves the storage kind;
//  3. window clipping to [center-width/2, center+width/2], which
//     promotes to float;
//  4. min-max scaling to [0, 255], skipped entirely when the storage
//     is still 8-bit unsigned after the prior stages, so an image that
//     arrives displayable passes through untouched.
//
// NaN and ±Inf samples survive the arithmetic stages untouched and are
// clipped deterministically at stage 4: NaN and -Inf map to 0, +Inf to
// 255. A flat image (hi == lo) maps to all black.
func NormalizeForDisplay(props ImageProperties) (*image.Gray, error) {
	if err := props.Grid.validate(); err != nil {
		return nil, err
	}

	grid := props.Grid.clone()
	kind := grid.Kind

	if props.RescaleSlope != 1.0 || props.RescaleIntercept != 0.0 {
		floats.Scale(props.RescaleSlope, grid.Data)
		floats.AddConst(props.RescaleIntercept, grid.Data)
		kind = KindFloat
	}

	if props.Photometric == Monochrome1 {
		// The maximum is taken over the finite samples of the current
		// array so that a stray NaN cannot blank the whole image; the
		// NaN itself still propagates through the subtraction.
		_, hi, ok := finiteRange(grid.Data)
		if !ok {
			hi = 0
		}
		for i, v := range grid.Data {
			grid.Data[i] = hi - v
		}
	}

	if props.Window != nil {
		lo := props.Window.Center - props.Window.Width/2
		hi := props.Window.Center + props.Window.Width/2
		for i, v := range grid.Data {
			// NaN fails both comparisons and passes through.
			if v < lo {
				grid.Data[i] = lo
			} else if v > hi {
				grid.Data[i] = hi
			}
		}
		kind = KindFloat
	}

	out := image.NewGray(image.Rect(0, 0, grid.Cols(), grid.Rows()))

	if kind == KindUint8 {
		// Still 8-bit unsigned storage: the samples are already
		// display-ready.
		for i, v := range grid.Data {
			out.Pix[i] = uint8(v)
		}
		return out, nil
	}

	lo, hi, ok := finiteRange(grid.Data)
	if !ok || hi == lo {
		return out, nil
	}

	scale := 255 / (hi - lo)
	for i, v := range grid.Data {
		switch {
		case math.IsNaN(v) || v < lo:
			out.Pix[i] = 0
		case v > hi:
			out.Pix[i] = 255
		default:
			px := math.Round((v - lo) * scale)
			if px < 0 {
				px = 0
			} else if px > 255 {
				px = 255
			}
			out.Pix[i] = uint8(px)
		}
	}

	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteRange reports the min and max over the finite samples of data.
// ok is false when no finite sample exists.
func finiteRange(data []float64) (lo, hi float64, ok bool) {
	for _, v := range data {
		if !isFinite(v) {
			continue
		}
		if !ok {
			lo, hi = v, v
			ok = true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	return lo, hi, ok
}
