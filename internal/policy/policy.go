package policy

import (
	"image"
	"sort"

	"github.com/AnyUserName/imgsel-cli/internal/selection"
)

// Policy is a named pixel selector.
type Policy struct {
	Name        string
	Description string
	Select      selection.PixelSelector
}

// DefaultName is used when no policy is requested.
const DefaultName = "stripe-rows"

// Built-in policies.
var policies = map[string]Policy{
	"stripe-rows": {
		Name:        "stripe-rows",
		Description: "first image on even rows, second image on odd rows",
		Select:      StripeRows,
	},
	"stripe-cols": {
		Name:        "stripe-cols",
		Description: "first image on even columns, second image on odd columns",
		Select:      StripeCols,
	},
	"checker": {
		Name:        "checker",
		Description: "1px checkerboard, first image where x+y is even",
		Select:      Checker,
	},
	"first": {
		Name:        "first",
		Description: "always the first image",
		Select:      First,
	},
	"second": {
		Name:        "second",
		Description: "always the second image",
		Select:      Second,
	},
	"lighter": {
		Name:        "lighter",
		Description: "pixel with the higher luma, first image on ties",
		Select:      Lighter,
	},
	"darker": {
		Name:        "darker",
		Description: "pixel with the lower luma, first image on ties",
		Select:      Darker,
	},
	"opaque": {
		Name:        "opaque",
		Description: "pixel with the higher alpha, first image on ties",
		Select:      Opaque,
	},
}

// Get returns a policy by name.
func Get(name string) (Policy, bool) {
	p, ok := policies[name]
	return p, ok
}

// Names returns all policy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(policies))
	for n := range policies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// StripeRows keeps the first pixel on even rows and the second on odd rows.
func StripeRows(a, b selection.Pixel, at image.Point) selection.Pixel {
	if at.Y&1 == 0 {
		return a
	}
	return b
}

// StripeCols keeps the first pixel on even columns and the second on odd columns.
func StripeCols(a, b selection.Pixel, at image.Point) selection.Pixel {
	if at.X&1 == 0 {
		return a
	}
	return b
}

// Checker alternates the two images in a checkerboard, first image at the origin.
func Checker(a, b selection.Pixel, at image.Point) selection.Pixel {
	if (at.X+at.Y)&1 == 0 {
		return a
	}
	return b
}

// First always keeps the first pixel.
func First(a, _ selection.Pixel, _ image.Point) selection.Pixel { return a }

// Second always keeps the second pixel.
func Second(_, b selection.Pixel, _ image.Point) selection.Pixel { return b }

// Lighter keeps the pixel with the higher luma, first image on ties.
func Lighter(a, b selection.Pixel, _ image.Point) selection.Pixel {
	if luma(b) > luma(a) {
		return b
	}
	return a
}

// Darker keeps the pixel with the lower luma, first image on ties.
func Darker(a, b selection.Pixel, _ image.Point) selection.Pixel {
	if luma(b) < luma(a) {
		return b
	}
	return a
}

// Opaque keeps the pixel with the higher alpha, first image on ties.
func Opaque(a, b selection.Pixel, _ image.Point) selection.Pixel {
	if b[3] > a[3] {
		return b
	}
	return a
}

// luma is the Rec. 601 weighted sum scaled by 1000, alpha ignored.
func luma(p selection.Pixel) int {
	return 299*int(p[0]) + 587*int(p[1]) + 114*int(p[2])
}
