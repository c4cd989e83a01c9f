package render

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Thumbnail normalizes the pixels for display and shrinks the result to
// fit within maxWidth x maxHeight, preserving the aspect ratio. Images
// already inside the box are returned at their native size.
func Thumbnail(props ImageProperties, maxWidth, maxHeight int) (image.Image, error) {
	img, err := NormalizeForDisplay(props)
	if err != nil {
		return nil, err
	}

	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos), nil
}

// Placeholder draws a dark tile with a centered label, standing in for
// entries whose pixel data cannot be rendered.
func Placeholder(label string, width, height int) image.Image {
	ctx := gg.NewContext(width, height)
	ctx.SetRGB(0.15, 0.15, 0.15)
	ctx.Clear()

	ctx.SetFontFace(basicfont.Face7x13)
	ctx.SetRGB(0.85, 0.85, 0.85)
	ctx.DrawStringAnchored(label, float64(width)/2, float64(height)/2, 0.5, 0.5)

	return ctx.Image()
}

// Annotate writes a short label onto the top-left corner of an image.
func Annotate(img image.Image, label string) image.Image {
	ctx := gg.NewContextForImage(img)
	ctx.SetFontFace(basicfont.Face7x13)
	ctx.SetRGB(1, 1, 1)
	ctx.DrawString(label, 2, 10)

	return ctx.Image()
}
