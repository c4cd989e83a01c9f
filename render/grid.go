// Package render converts decoded DICOM pixel samples into 8-bit
// grayscale rasters suitable for direct display, thumbnailing, and
// export. The normalization pipeline itself is a pure function of the
// samples and their display metadata; everything touching real datasets
// lives in the adapters.
package render

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrInvalidShape reports a sample grid that is not exactly
	// 2-dimensional (multi-frame and color grids arrive with higher
	// rank and are rejected rather than silently flattened).
	ErrInvalidShape = errors.New("sample grid is not 2-dimensional")

	// ErrEmptyArray reports a sample grid with no samples.
	ErrEmptyArray = errors.New("sample grid has no samples")
)

// Kind identifies the numeric storage of a sample grid's source data.
// The pipeline tracks storage through its stages: rescaling and
// windowing promote to KindFloat, while polarity inversion preserves
// the incoming kind. Only a grid still in KindUint8 at the final stage
// bypasses min-max normalization.
type Kind uint8

const (
	KindUint8 Kind = iota
	KindInt8
	KindUint16
	KindInt16
	KindUint32
	KindInt32
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindUint8:
		return "uint8"
	case KindInt8:
		return "int8"
	case KindUint16:
		return "uint16"
	case KindInt16:
		return "int16"
	case KindUint32:
		return "uint32"
	case KindInt32:
		return "int32"
	case KindFloat:
		return "float64"
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// PixelGrid holds decoded samples in row-major order alongside their
// logical shape. Shape is kept explicit, numpy-style, so that callers
// handing over multi-frame ({frames, rows, cols}) or multi-channel
// ({rows, cols, channels}) data produce a checkable contract violation
// instead of a scrambled image. The grid is owned by its creator; the
// pipeline copies the samples and never retains or mutates the
// original.
type PixelGrid struct {
	Shape []int
	Data  []float64
	Kind  Kind
}

// NewGrid allocates a zeroed rows x cols grid of the given storage
// kind.
func NewGrid(rows, cols int, kind Kind) PixelGrid {
	return PixelGrid{
		Shape: []int{rows, cols},
		Data:  make([]float64, rows*cols),
		Kind:  kind,
	}
}

// GridFromGray re-ingests a rendered raster as a fresh 8-bit unsigned
// grid, as if it had been decoded from a file that stores 8-bit
// samples.
func GridFromGray(img *image.Gray) PixelGrid {
	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()

	g := NewGrid(rows, cols, KindUint8)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g.Data[y*cols+x] = float64(img.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
	}

	return g
}

// Rows returns the first dimension of a 2-D grid.
func (g PixelGrid) Rows() int {
	if len(g.Shape) != 2 {
		return 0
	}
	return g.Shape[0]
}

// Cols returns the second dimension of a 2-D grid.
func (g PixelGrid) Cols() int {
	if len(g.Shape) != 2 {
		return 0
	}
	return g.Shape[1]
}

// Len returns the number of samples implied by the shape.
func (g PixelGrid) Len() int {
	if len(g.Shape) == 0 {
		return 0
	}

	n := 1
	for _, dim := range g.Shape {
		n *= dim
	}
	return n
}

func (g PixelGrid) validate() error {
	if len(g.Shape) != 2 {
		return fmt.Errorf("Got a %d-dimensional grid with shape %v: %w", len(g.Shape), g.Shape, ErrInvalidShape)
	}
	for _, dim := range g.Shape {
		if dim < 0 {
			return fmt.Errorf("Got a grid with negative shape %v: %w", g.Shape, ErrInvalidShape)
		}
	}
	if g.Len() == 0 || len(g.Data) == 0 {
		return ErrEmptyArray
	}
	if len(g.Data) != g.Len() {
		return fmt.Errorf("Grid shape %v implies %d samples but %d are present: %w", g.Shape, g.Len(), len(g.Data), ErrInvalidShape)
	}

	return nil
}

func (g PixelGrid) clone() PixelGrid {
	out := PixelGrid{
		Shape: make([]int, len(g.Shape)),
		Data:  make([]float64, len(g.Data)),
		Kind:  g.Kind,
	}
	copy(out.Shape, g.Shape)
	copy(out.Data, g.Data)

	return out
}
