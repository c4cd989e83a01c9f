package render

import (
	"errors"
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/carbocation/dicomexplorer/dicomfile"
)

var (
	// ErrNoPixelData reports a dataset without displayable pixel data.
	ErrNoPixelData = errors.New("dataset contains no pixel data")

	// ErrEncapsulated reports pixel data stored in a compressed
	// transfer syntax, which this package does not decode.
	ErrEncapsulated = errors.New("pixel data is encapsulated in a compressed transfer syntax")
)

// PropertiesFromDataset derives display properties from a decoded
// dataset. The grid keeps the pixel data's true rank: multi-frame data
// arrives as {frames, rows, cols} and color data as {rows, cols,
// channels}, both of which NormalizeForDisplay rejects under its
// single-frame grayscale contract.
func PropertiesFromDataset(ds dicom.Dataset) (ImageProperties, error) {
	frames, err := nativeFrames(ds)
	if err != nil {
		return ImageProperties{}, err
	}

	props := propertiesFromTags(ds)
	grid, err := buildGrid(frames, gridKind(frames[0], ds))
	if err != nil {
		return ImageProperties{}, err
	}
	props.Grid = grid

	return props, nil
}

// PropertiesForFrame is PropertiesFromDataset restricted to a single
// frame of a multi-frame dataset, yielding a 2-D grid that satisfies
// the pipeline contract frame-by-frame.
func PropertiesForFrame(ds dicom.Dataset, index int) (ImageProperties, error) {
	frames, err := nativeFrames(ds)
	if err != nil {
		return ImageProperties{}, err
	}
	if index < 0 || index >= len(frames) {
		return ImageProperties{}, fmt.Errorf("Frame %d out of range: dataset has %d frames", index, len(frames))
	}

	props := propertiesFromTags(ds)
	grid, err := buildGrid(frames[index:index+1], gridKind(frames[index], ds))
	if err != nil {
		return ImageProperties{}, err
	}
	props.Grid = grid

	return props, nil
}

// FrameCount reports the number of native frames in the dataset's
// pixel data, or 0 when none are present.
func FrameCount(ds dicom.Dataset) int {
	frames, err := nativeFrames(ds)
	if err != nil {
		return 0
	}

	return len(frames)
}

func nativeFrames(ds dicom.Dataset) ([]*frame.Frame, error) {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, ErrNoPixelData
	}

	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return nil, fmt.Errorf("Pixel data element holds %T, not pixel data info: %w", el.Value.GetValue(), ErrNoPixelData)
	}
	if info.IntentionallySkipped {
		return nil, fmt.Errorf("Pixel data was skipped at parse time: %w", ErrNoPixelData)
	}
	if info.IsEncapsulated {
		return nil, ErrEncapsulated
	}
	if len(info.Frames) == 0 {
		return nil, ErrNoPixelData
	}
	for _, f := range info.Frames {
		if f.Encapsulated {
			return nil, ErrEncapsulated
		}
	}

	return info.Frames, nil
}

// buildGrid flattens native frames row-major into a grid whose shape
// reflects the data's true rank. Frame count and channel count only
// contribute dimensions when they exceed one.
func buildGrid(frames []*frame.Frame, kind Kind) (PixelGrid, error) {
	native := frames[0].NativeData
	rows, cols := native.Rows, native.Cols
	if rows*cols != len(native.Data) {
		return PixelGrid{}, fmt.Errorf("Frame claims %dx%d but carries %d pixels", rows, cols, len(native.Data))
	}

	channels := 0
	if len(native.Data) > 0 {
		channels = len(native.Data[0])
	}
	if channels == 0 {
		return PixelGrid{}, ErrNoPixelData
	}

	var shape []int
	if len(frames) > 1 {
		shape = append(shape, len(frames))
	}
	shape = append(shape, rows, cols)
	if channels > 1 {
		shape = append(shape, channels)
	}

	data := make([]float64, 0, len(frames)*rows*cols*channels)
	for _, f := range frames {
		nd := f.NativeData
		if nd.Rows != rows || nd.Cols != cols {
			return PixelGrid{}, fmt.Errorf("Frame size %dx%d differs from first frame %dx%d", nd.Rows, nd.Cols, rows, cols)
		}
		for _, px := range nd.Data {
			for _, sample := range px {
				data = append(data, float64(sample))
			}
		}
	}

	return PixelGrid{Shape: shape, Data: data, Kind: kind}, nil
}

// gridKind infers the storage kind from the frame's own bit depth,
// falling back to the BitsAllocated tag, with signedness from
// PixelRepresentation.
func gridKind(f *frame.Frame, ds dicom.Dataset) Kind {
	bits := f.NativeData.BitsPerSample
	if bits <= 0 {
		if el, err := ds.FindElementByTag(tag.BitsAllocated); err == nil {
			if n, err := dicomfile.FirstInt(el); err == nil {
				bits = n
			}
		}
	}

	signed := false
	if el, err := ds.FindElementByTag(tag.PixelRepresentation); err == nil {
		if n, err := dicomfile.FirstInt(el); err == nil && n == 1 {
			signed = true
		}
	}

	switch {
	case bits <= 8:
		if signed {
			return KindInt8
		}
		return KindUint8
	case bits <= 16:
		if signed {
			return KindInt16
		}
		return KindUint16
	default:
		if signed {
			return KindInt32
		}
		return KindUint32
	}
}

// propertiesFromTags walks the top-level elements once, picking out the
// display-relevant tags. Malformed numeric strings leave the defaults
// in place. Multi-valued window center/width contribute their first
// value; the window is only set when both are present.
func propertiesFromTags(ds dicom.Dataset) ImageProperties {
	props := ImageProperties{
		Photometric:      Monochrome2,
		RescaleSlope:     1.0,
		RescaleIntercept: 0.0,
		BitsStored:       8,
		BitsAllocated:    8,
	}

	var center, width float64
	var hasCenter, hasWidth bool

	for _, el := range ds.Elements {
		switch el.Tag {
		case tag.PhotometricInterpretation:
			if s, err := dicomfile.FirstString(el); err == nil {
				props.Photometric = ParsePhotometric(s)
			}
		case tag.WindowCenter:
			if f, err := dicomfile.FirstFloat(el); err == nil {
				center, hasCenter = f, true
			}
		case tag.WindowWidth:
			if f, err := dicomfile.FirstFloat(el); err == nil {
				width, hasWidth = f, true
			}
		case tag.RescaleSlope:
			if f, err := dicomfile.FirstFloat(el); err == nil {
				props.RescaleSlope = f
			}
		case tag.RescaleIntercept:
			if f, err := dicomfile.FirstFloat(el); err == nil {
				props.RescaleIntercept = f
			}
		case tag.BitsStored:
			if n, err := dicomfile.FirstInt(el); err == nil && n > 0 {
				props.BitsStored = n
			}
		case tag.BitsAllocated:
			if n, err := dicomfile.FirstInt(el); err == nil && n > 0 {
				props.BitsAllocated = n
			}
		}
	}

	if hasCenter && hasWidth {
		props.Window = &Window{Center: center, Width: width}
	}

	return props
}
