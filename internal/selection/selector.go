package selection

import (
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"
)

// PixelSelector decides the output pixel for one coordinate. It must be a
// pure function of its arguments: it is called once per pixel, in any order,
// possibly from several goroutines.
type PixelSelector func(a, b Pixel, at image.Point) Pixel

// RawSelector combines two raw images into a new one.
type RawSelector func(a, b RawImage) (RawImage, error)

// InvalidRawSelector returns a RawSelector that always fails with ErrUnimplemented.
func InvalidRawSelector() RawSelector {
	return func(_, _ RawImage) (RawImage, error) {
		return RawImage{}, fmt.Errorf("%w: invalid selector", ErrUnimplemented)
	}
}

// RGBASelector lifts a PixelSelector to a RawSelector.
// The zero value has no PixelSelector and fails with ErrUnimplemented.
type RGBASelector struct {
	sel     PixelSelector
	workers int
}

// FromPixelSelector creates an RGBASelector that walks pixels sequentially.
func FromPixelSelector(sel PixelSelector) RGBASelector {
	return RGBASelector{sel: sel, workers: 1}
}

// WithWorkers returns a copy that splits rows into bands processed by up to n
// goroutines. n <= 1 keeps the sequential walk.
func (s RGBASelector) WithWorkers(n int) RGBASelector {
	if n < 1 {
		n = 1
	}
	return RGBASelector{sel: s.sel, workers: n}
}

// Workers reports the configured parallelism.
func (s RGBASelector) Workers() int { return max(1, s.workers) }

// RawSelector returns the selector as a RawSelector.
func (s RGBASelector) RawSelector() RawSelector {
	return s.Select
}

// Select applies the pixel selector to every coordinate of a and b.
// The images must have identical dimensions; the result has the same ones.
func (s RGBASelector) Select(a, b RawImage) (RawImage, error) {
	if s.sel == nil {
		return RawImage{}, fmt.Errorf("%w: no pixel selector", ErrUnimplemented)
	}
	if !a.IsSameSize(b) {
		return RawImage{}, fmt.Errorf("%w: incompatible images %dx%d and %dx%d",
			ErrInvalidArgument, a.width, a.height, b.width, b.height)
	}

	var out []byte
	if s.Workers() > 1 && a.height > 1 {
		out = s.selectBands(a, b)
	} else {
		out = s.selectRows(a, b)
	}
	return NewRawImage(a.width, a.height, out)
}

// selectRows appends output pixels in row-major order so the buffer layout
// mirrors the inputs.
func (s RGBASelector) selectRows(a, b RawImage) []byte {
	out := make([]byte, 0, a.TotalByteCount())
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			p := s.sel(a.PixelAt(x, y), b.PixelAt(x, y), image.Pt(x, y))
			out = append(out, p[0], p[1], p[2], p[3])
		}
	}
	return out
}

// selectBands fills disjoint row ranges of a preallocated buffer concurrently.
func (s RGBASelector) selectBands(a, b RawImage) []byte {
	out := make([]byte, a.TotalByteCount())
	stride := a.RowBytes()

	workers := min(s.Workers(), a.height)
	band := (a.height + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < a.height; y0 += band {
		y1 := min(y0+band, a.height)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				row := out[y*stride : (y+1)*stride]
				for x := 0; x < a.width; x++ {
					p := s.sel(a.PixelAt(x, y), b.PixelAt(x, y), image.Pt(x, y))
					copy(row[BytesPerPixel*x:], p[:])
				}
			}
			return nil
		})
	}
	_ = g.Wait() // bands never fail
	return out
}
