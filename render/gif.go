package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"runtime"

	"github.com/carbocation/go-quantize/quantize"
	"github.com/suyashkumar/dicom"
)

type orderedPaletted struct {
	key   int
	image *image.Paletted
}

// FramesGIF assembles an ordered slice of frames into an animated gif.
// The delay between frames is in hundredths of a second. The color
// quantizer is built from *all* input frames, and the quantized palette
// is shared across all of the output frames so that the animation does
// not flicker between per-frame palettes.
func FramesGIF(frames []image.Image, delay int) (*gif.GIF, error) {
	if len(frames) < 1 {
		return nil, fmt.Errorf("No frames to assemble into a gif")
	}

	// Block gif creation if the input frames don't all share the same
	// size.
	firstBounds := frames[0].Bounds()
	for k, frame := range frames {
		if x := frame.Bounds(); x != firstBounds {
			return nil, fmt.Errorf("Frame %d had unexpected bounds (frame 0 bounds: %v, frame %d bounds: %v)", k, firstBounds, k, x)
		}
	}

	outGif := &gif.GIF{}

	quantizer := quantize.MedianCutQuantizer{
		Aggregation:    quantize.Mean,
		Weighting:      nil,
		AddTransparent: false,
	}

	pal := quantizer.QuantizeMultiple(make([]color.Color, 0, 256), frames)

	// Convert each frame to a paletted image. This is surprisingly slow
	// and so is worth parallelizing.
	palettedImages := make(chan orderedPaletted)
	semaphore := make(chan struct{}, runtime.NumCPU())

	go func() {
		for k, frame := range frames {
			semaphore <- struct{}{}

			go func(k int, frame image.Image) {
				defer func() { <-semaphore }()

				palettedImage := image.NewPaletted(frame.Bounds(), pal)
				draw.Draw(palettedImage, frame.Bounds(), frame, image.Point{}, draw.Over)

				palettedImages <- orderedPaletted{
					key:   k,
					image: palettedImage,
				}
			}(k, frame)
		}
	}()

	// Collect the outputs - in order
	sortedPaletted := make([]*image.Paletted, len(frames))
	for range frames {
		palettedImage := <-palettedImages
		sortedPaletted[palettedImage.key] = palettedImage.image
	}

	for _, palettedImage := range sortedPaletted {
		outGif.Image = append(outGif.Image, palettedImage)
		outGif.Delay = append(outGif.Delay, delay)
	}

	return outGif, nil
}

// DatasetGIF normalizes every frame of a multi-frame dataset and
// assembles the results into an animated gif.
func DatasetGIF(ds dicom.Dataset, delay int) (*gif.GIF, error) {
	native, err := nativeFrames(ds)
	if err != nil {
		return nil, err
	}

	frames := make([]image.Image, 0, len(native))
	for i := 0; i < len(native); i++ {
		props, err := PropertiesForFrame(ds, i)
		if err != nil {
			return nil, err
		}

		img, err := NormalizeForDisplay(props)
		if err != nil {
			return nil, err
		}

		frames = append(frames, img)
	}

	return FramesGIF(frames, delay)
}
