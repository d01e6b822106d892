//go:build ignore

// gen_fixtures creates two directories of paired test images for the
// compose --dir smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	for _, side := range []string{"a", "b", filepath.Join("a", "cards"), filepath.Join("b", "cards")} {
		os.MkdirAll(filepath.Join(dir, side), 0o755)
	}

	// Banner pair (400x225): gradient vs. its inverse.
	writeImage(filepath.Join(dir, "a", "banner.png"), gradient(400, 225, false))
	writeImage(filepath.Join(dir, "b", "banner.png"), gradient(400, 225, true))

	// Card pairs (200x150).
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("card-%d.png", i)
		writeImage(filepath.Join(dir, "a", "cards", name), solid(200, 150, uint8(i*60)))
		writeImage(filepath.Join(dir, "b", "cards", name), alphaGradient(200, 150))
	}

	// Size mismatch: reported as a failed pair.
	writeImage(filepath.Join(dir, "a", "odd.png"), solid(30, 20, 10))
	writeImage(filepath.Join(dir, "b", "odd.png"), solid(20, 30, 10))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 5 pairs in %s\n", dir)
}

func gradient(w, h int, invert bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g := uint8(x*255/w), uint8(y*255/h)
			if invert {
				r, g = 255-r, 255-g
			}
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: 128, A: 255})
		}
	}
	return img
}

func solid(w, h int, base uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: base, G: base + 40, B: base + 80, A: 255})
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}

func writeImage(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}
