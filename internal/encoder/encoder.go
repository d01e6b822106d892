package encoder

import (
	"image"
)

// Encoder writes a composite image in one file format.
type Encoder interface {
	// Format returns the format name ("png", "jpeg", "tiff", "bmp").
	Format() string

	// Encode converts the image to bytes. quality (1-100) only affects lossy formats.
	Encode(img image.Image, quality int) ([]byte, error)

	// Lossless reports whether decoding the output yields the exact pixels.
	Lossless() bool

	// Extensions returns the file extensions without dot, preferred first.
	Extensions() []string
}
