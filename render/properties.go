package render

import (
	"strings"
)

// Photometric is the declared photometric interpretation of a
// grayscale image: whether higher stored values render brighter
// (MONOCHROME2) or darker (MONOCHROME1).
type Photometric string

const (
	Monochrome1 Photometric = "MONOCHROME1"
	Monochrome2 Photometric = "MONOCHROME2"
)

// ParsePhotometric normalizes a raw tag value. DICOM writers are sloppy
// about case and trailing padding, so both are forgiven. Unknown values
// are preserved as-is and treated like MONOCHROME2 by the pipeline.
func ParsePhotometric(raw string) Photometric {
	return Photometric(strings.ToUpper(strings.TrimSpace(raw)))
}

// Window is a display contrast preset: the intensity band
// [Center-Width/2, Center+Width/2] maps onto the visible grayscale
// range.
type Window struct {
	Center float64
	Width  float64
}

// ImageProperties bundles one frame's samples with the metadata that
// drives display normalization. It is built fresh each time an image is
// selected for display, never mutated afterward, and discarded once the
// output raster exists.
type ImageProperties struct {
	Grid PixelGrid

	Photometric Photometric

	// Window is set only when both center and width were present in
	// the source. Multi-valued center/width fields contribute their
	// first value.
	Window *Window

	RescaleSlope     float64
	RescaleIntercept float64

	// BitsStored and BitsAllocated describe source sample precision.
	// They feed ValueRange but are not needed for normalization
	// correctness.
	BitsStored    int
	BitsAllocated int
}

// DefaultProperties wraps a grid with neutral display metadata: no
// rescale, no window, MONOCHROME2 polarity.
func DefaultProperties(grid PixelGrid) ImageProperties {
	return ImageProperties{
		Grid:             grid,
		Photometric:      Monochrome2,
		RescaleSlope:     1.0,
		RescaleIntercept: 0.0,
		BitsStored:       8,
		BitsAllocated:    8,
	}
}

// ValueRange reports the theoretical sample range implied by
// BitsStored: [0, 2^BitsStored - 1]. An unset BitsStored is treated as
// 8 bits.
func (p ImageProperties) ValueRange() (lo, hi float64) {
	bits := p.BitsStored
	if bits <= 0 {
		bits = 8
	}

	return 0, float64(uint64(1)<<uint(bits) - 1)
}
