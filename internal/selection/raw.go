package selection

import (
	"bytes"
	"fmt"
	"image"
)

// BytesPerPixel is the size of one RGBA8 pixel.
const BytesPerPixel = 4

// Pixel is one RGBA8 pixel: R, G, B, A.
type Pixel [4]uint8

// RawImage is a flat RGBA8 bitmap, row-major, 4 bytes per pixel.
// A RawImage is never modified after construction.
type RawImage struct {
	width  int
	height int
	pix    []byte
}

// NewRawImage wraps pix as a width x height image. The RawImage takes
// ownership of pix; the caller must not modify it afterwards.
func NewRawImage(width, height int, pix []byte) (RawImage, error) {
	if width < 0 || height < 0 {
		return RawImage{}, fmt.Errorf("%w: negative dimensions %dx%d", ErrFatal, width, height)
	}
	if want := BytesPerPixel * width * height; len(pix) != want {
		return RawImage{}, fmt.Errorf("%w: buffer is %d bytes, %dx%d needs %d",
			ErrFatal, len(pix), width, height, want)
	}
	return RawImage{width: width, height: height, pix: pix}, nil
}

// MustRawImage is like NewRawImage but panics on a malformed buffer.
func MustRawImage(width, height int, pix []byte) RawImage {
	r, err := NewRawImage(width, height, pix)
	if err != nil {
		panic(err)
	}
	return r
}

func (r RawImage) Width() int  { return r.width }
func (r RawImage) Height() int { return r.height }

// Bounds returns the image rectangle anchored at the origin.
func (r RawImage) Bounds() image.Rectangle { return image.Rect(0, 0, r.width, r.height) }

// RowBytes is the row stride in bytes.
func (r RawImage) RowBytes() int { return BytesPerPixel * r.width }

// TotalByteCount is the length of the pixel buffer.
func (r RawImage) TotalByteCount() int { return r.height * r.RowBytes() }

// IsSameSize reports whether both images have the same width and height.
// Pixel content is not compared.
func (r RawImage) IsSameSize(other RawImage) bool {
	return r.width == other.width && r.height == other.height
}

// PixelAt returns the pixel at (x, y). It panics if the point is out of range.
func (r RawImage) PixelAt(x, y int) Pixel {
	i := r.offset(x, y)
	return Pixel{r.pix[i], r.pix[i+1], r.pix[i+2], r.pix[i+3]}
}

// Bytes returns a copy of the pixel buffer.
func (r RawImage) Bytes() []byte {
	out := make([]byte, len(r.pix))
	copy(out, r.pix)
	return out
}

// Equal reports whether both images have identical dimensions and bytes.
func (r RawImage) Equal(other RawImage) bool {
	return r.IsSameSize(other) && bytes.Equal(r.pix, other.pix)
}

func (r RawImage) offset(x, y int) int {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		panic(fmt.Sprintf("selection: point (%d,%d) outside %dx%d image", x, y, r.width, r.height))
	}
	return y*r.RowBytes() + BytesPerPixel*x
}
