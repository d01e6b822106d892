// Package convert renders image.Image values to and from selection.RawImage.
package convert

import (
	"fmt"
	"image"

	"github.com/AnyUserName/imgsel-cli/internal/selection"
	"github.com/disintegration/imaging"
)

// NRGBA converts through non-premultiplied 8-bit RGBA, so a RawImage
// survives Encode followed by Decode byte for byte.
type NRGBA struct{}

var _ selection.Converter = NRGBA{}

// Decode renders img into a RawImage anchored at the origin.
func (NRGBA) Decode(img image.Image) (selection.RawImage, error) {
	if img == nil {
		return selection.RawImage{}, fmt.Errorf("%w: nil image", selection.ErrInvalidArgument)
	}
	b := img.Bounds()
	if b.Dx() < 0 || b.Dy() < 0 {
		return selection.RawImage{}, fmt.Errorf("%w: malformed bounds %v", selection.ErrInvalidArgument, b)
	}

	// imaging.Clone always returns a tightly packed image at (0,0).
	dst := imaging.Clone(img)
	return selection.NewRawImage(dst.Rect.Dx(), dst.Rect.Dy(), dst.Pix)
}

// Encode wraps a copy of the raw buffer as an *image.NRGBA.
func (NRGBA) Encode(raw selection.RawImage) image.Image {
	return &image.NRGBA{
		Pix:    raw.Bytes(),
		Stride: raw.RowBytes(),
		Rect:   raw.Bounds(),
	}
}
