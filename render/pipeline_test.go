package render

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func grid2D(rows, cols int, kind Kind, data ...float64) PixelGrid {
	return PixelGrid{Shape: []int{rows, cols}, Data: data, Kind: kind}
}

func TestUint8InputIsIdentity(t *testing.T) {
	props := DefaultProperties(grid2D(2, 3, KindUint8, 0, 7, 50, 128, 200, 255))

	img, err := NormalizeForDisplay(props)
	if err != nil {
		t.Fatal(err)
	}

	expected := []byte{0, 7, 50, 128, 200, 255}
	if !bytes.Equal(img.Pix, expected) {
		t.Fatalf("\nGot: %v\nExpected: %v\n", img.Pix, expected)
	}
}

func TestOutputShapeMatchesInput(t *testing.T) {
	grid := NewGrid(4, 7, KindUint16)
	for i := range grid.Data {
		grid.Data[i] = float64(i * 91)
	}

	img, err := NormalizeForDisplay(DefaultProperties(grid))
	if err != nil {
		t.Fatal(err)
	}

	if b := img.Bounds(); b.Dx() != 7 || b.Dy() != 4 {
		t.Errorf("Output bounds %v, expected 7x4", b)
	}
}

func TestIdempotence(t *testing.T) {
	grid := grid2D(2, 2, KindInt16, -1024, 0, 512, 3071)

	first, err := NormalizeForDisplay(DefaultProperties(grid))
	if err != nil {
		t.Fatal(err)
	}

	second, err := NormalizeForDisplay(DefaultProperties(GridFromGray(first)))
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatalf("\nFirst pass: %v\nSecond pass: %v\n", first.Pix, second.Pix)
	}
}

func TestFlatInputRendersBlack(t *testing.T) {
	props := DefaultProperties(grid2D(1, 3, KindInt16, 7, 7, 7))

	img, err := NormalizeForDisplay(props)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(img.Pix, []byte{0, 0, 0}) {
		t.Fatalf("Flat input rendered %v, expected all zero", img.Pix)
	}
}

func TestMonochrome1Inversion(t *testing.T) {
	// 16-bit storage passes through min-max scaling after inversion:
	// [10 20 30] inverts to [20 10 0] and scales to [255 128 0].
	props := DefaultProperties(grid2D(1, 3, KindUint16, 10, 20, 30))
	props.Photometric = Monochrome1

	img, err := NormalizeForDisplay(props)
	if err != nil {
		t.Fatal(err)
	}

	expected := []byte{255, 128, 0}
	if !bytes.Equal(img.Pix, expected) {
		t.Fatalf("\nGot: %v\nExpected: %v\n", img.Pix, expected)
	}
}

func TestMonochrome1PreservesUint8Storage(t *testing.T) {
	// Inversion does not promote the storage kind, so an 8-bit unsigned
	// image skips scaling and carries the inverted values directly.
	props := DefaultProperties(grid2D(1, 3, KindUint8, 10, 20, 30))
	props.Photometric = Monochrome1

	img, err := NormalizeForDisplay(props)
	if err != nil {
		t.Fatal(err)
	}

	expected := []byte{20, 10, 0}
	if !bytes.Equal(img.Pix, expected) {
		t.Fatalf("\nGot: %v\nExpected: %v\n", img.Pix, expected)
	}
}

func TestWindowingClipsThenScales(t *testing.T) {
	// Window center 100 width 100 clips to [50, 150]. Windowing promotes
	// the storage kind, so even 8-bit input is rescaled afterward.
	for _, kind := range []Kind{KindUint8, KindInt16} {
		props := DefaultProperties(grid2D(1, 5, kind, 0, 50, 100, 150, 200))
		props.Window = &Window{Center: 100, Width: 100}

		img, err := NormalizeForDisplay(props)
		if err != nil {
			t.Fatal(err)
		}

		expected := []byte{0, 0, 128, 255, 255}
		if !bytes.Equal(img.Pix, expected) {
			t.Fatalf("\nKind: %v\nGot: %v\nExpected: %v\n", kind, img.Pix, expected)
		}
	}
}

func TestRescaleAppliesBeforeScaling(t *testing.T) {
	// Slope 2 intercept 10 maps [0 1 2] to [10 12 14], which then
	// min-max scales to [0 128 255]. Rescaling promotes the storage
	// kind, so this holds for 8-bit input too.
	for _, kind := range []Kind{KindUint8, KindUint16} {
		props := DefaultProperties(grid2D(1, 3, kind, 0, 1, 2))
		props.RescaleSlope = 2.0
		props.RescaleIntercept = 10.0

		img, err := NormalizeForDisplay(props)
		if err != nil {
			t.Fatal(err)
		}

		expected := []byte{0, 128, 255}
		if !bytes.Equal(img.Pix, expected) {
			t.Fatalf("\nKind: %v\nGot: %v\nExpected: %v\n", kind, img.Pix, expected)
		}
	}
}

func TestShapeValidation(t *testing.T) {
	for _, v := range []struct {
		Shape []int
		Data  []float64
		Err   error
	}{
		{[]int{3}, []float64{1, 2, 3}, ErrInvalidShape},
		{[]int{1, 2, 2}, []float64{1, 2, 3, 4}, ErrInvalidShape},
		{[]int{2, 2, 3}, make([]float64, 12), ErrInvalidShape},
		{[]int{0, 0}, nil, ErrEmptyArray},
		{[]int{2, 2}, []float64{1, 2, 3}, ErrInvalidShape},
	} {
		props := DefaultProperties(PixelGrid{Shape: v.Shape, Data: v.Data, Kind: KindUint16})

		_, err := NormalizeForDisplay(props)
		if !errors.Is(err, v.Err) {
			t.Fatalf("\nError with input: %+v\nGot: %v\nExpected: %v\n", v, err, v.Err)
		}
	}
}

func TestNaNAndInfClipDeterministically(t *testing.T) {
	props := DefaultProperties(grid2D(1, 5, KindFloat,
		math.NaN(), 0, 100, math.Inf(1), math.Inf(-1)))

	img, err := NormalizeForDisplay(props)
	if err != nil {
		t.Fatal(err)
	}

	expected := []byte{0, 0, 255, 255, 0}
	if !bytes.Equal(img.Pix, expected) {
		t.Fatalf("\nGot: %v\nExpected: %v\n", img.Pix, expected)
	}
}

func TestAllNonFiniteRendersBlack(t *testing.T) {
	props := DefaultProperties(grid2D(1, 3, KindFloat,
		math.NaN(), math.Inf(1), math.Inf(-1)))

	img, err := NormalizeForDisplay(props)
	if err != nil {
		t.Fatal(err)
	}

	// +Inf clips to the upper bound, but with no finite samples there is
	// no range to scale into, so the output stays black.
	if !bytes.Equal(img.Pix, []byte{0, 0, 0}) {
		t.Fatalf("Got %v, expected all zero", img.Pix)
	}
}

func TestCallerGridIsNotMutated(t *testing.T) {
	grid := grid2D(1, 3, KindUint16, 10, 20, 30)
	original := append([]float64(nil), grid.Data...)

	props := DefaultProperties(grid)
	props.Photometric = Monochrome1
	props.RescaleSlope = 2.0
	props.RescaleIntercept = 5.0
	props.Window = &Window{Center: 30, Width: 20}

	if _, err := NormalizeForDisplay(props); err != nil {
		t.Fatal(err)
	}

	for i := range original {
		if grid.Data[i] != original[i] {
			t.Fatalf("Caller samples mutated: %v, originally %v", grid.Data, original)
		}
	}
}

func TestPipelineOrderRescaleThenInvertThenWindow(t *testing.T) {
	// Slope 10 maps [1 2 3] to [10 20 30]; MONOCHROME1 inverts to
	// [20 10 0]; window center 15 width 10 clips to [10 15 20] giving
	// [20 10 10]; scaling maps to [255 0 0].
	props := DefaultProperties(grid2D(1, 3, KindUint16, 1, 2, 3))
	props.RescaleSlope = 10.0
	props.Photometric = Monochrome1
	props.Window = &Window{Center: 15, Width: 10}

	img, err := NormalizeForDisplay(props)
	if err != nil {
		t.Fatal(err)
	}

	expected := []byte{255, 0, 0}
	if !bytes.Equal(img.Pix, expected) {
		t.Fatalf("\nGot: %v\nExpected: %v\n", img.Pix, expected)
	}
}
