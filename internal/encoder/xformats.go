package encoder

import (
	"bytes"
	"image"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// TIFFEncoder encodes images to deflate-compressed TIFF.
type TIFFEncoder struct{}

func (e *TIFFEncoder) Format() string       { return "tiff" }
func (e *TIFFEncoder) Extensions() []string { return []string{"tiff", "tif"} }
func (e *TIFFEncoder) Lossless() bool       { return true }

func (e *TIFFEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BMPEncoder encodes images to BMP. The decoder reads every pixel back as
// opaque, so translucent composites do not survive and raw digests are not
// checked.
type BMPEncoder struct{}

func (e *BMPEncoder) Format() string       { return "bmp" }
func (e *BMPEncoder) Extensions() []string { return []string{"bmp"} }
func (e *BMPEncoder) Lossless() bool       { return false }

func (e *BMPEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
