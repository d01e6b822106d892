package selection

import (
	"fmt"
	"image"
)

// Converter moves images between an opaque image.Image and a RawImage.
// Decode must return an error, not panic, for images it cannot render.
// Encode is infallible for a well-formed RawImage.
type Converter interface {
	Decode(img image.Image) (RawImage, error)
	Encode(raw RawImage) image.Image
}

type invalidConverter struct{}

func (invalidConverter) Decode(image.Image) (RawImage, error) {
	return RawImage{}, fmt.Errorf("%w: invalid converter", ErrUnimplemented)
}

func (invalidConverter) Encode(RawImage) image.Image {
	return image.NewNRGBA(image.Rectangle{})
}

// InvalidConverter returns a Converter whose Decode always fails with ErrUnimplemented.
func InvalidConverter() Converter { return invalidConverter{} }

// ImageSelector combines two images into one.
type ImageSelector func(a, b image.Image) (image.Image, error)

// Pipeline composes a Converter and a RawSelector into an ImageSelector.
//
// A Pipeline is configured by chaining With* calls on Invalid(); each call
// returns a new value and leaves the receiver untouched:
//
//	p := selection.Invalid().
//		WithSelector(selection.FromPixelSelector(sel).RawSelector()).
//		WithConverter(convert.NRGBA{})
type Pipeline struct {
	raw  RawSelector
	conv Converter
}

// Invalid returns the unconfigured pipeline. Select fails with ErrUnimplemented
// until both a selector and a converter are set.
func Invalid() Pipeline {
	return Pipeline{raw: InvalidRawSelector(), conv: InvalidConverter()}
}

// WithSelector returns a copy of p using raw.
func (p Pipeline) WithSelector(raw RawSelector) Pipeline {
	return Pipeline{raw: raw, conv: p.conv}
}

// WithConverter returns a copy of p using conv.
func (p Pipeline) WithConverter(conv Converter) Pipeline {
	return Pipeline{raw: p.raw, conv: conv}
}

// ImageSelector returns p.Select as a function value.
func (p Pipeline) ImageSelector() ImageSelector { return p.Select }

// Select decodes a, then b, selects their pixels and encodes the result.
// The first failing stage ends the run; its error is returned wrapped with
// the stage name.
func (p Pipeline) Select(a, b image.Image) (image.Image, error) {
	conv := p.conv
	if conv == nil {
		conv = InvalidConverter()
	}
	raw := p.raw
	if raw == nil {
		raw = InvalidRawSelector()
	}

	ra, err := conv.Decode(a)
	if err != nil {
		return nil, fmt.Errorf("decode first image: %w", err)
	}
	rb, err := conv.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("decode second image: %w", err)
	}

	out, err := raw(ra, rb)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return conv.Encode(out), nil
}
