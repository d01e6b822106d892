package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/imgsel-cli/internal/convert"
	"github.com/AnyUserName/imgsel-cli/internal/hasher"
	"github.com/AnyUserName/imgsel-cli/internal/policy"
	"github.com/AnyUserName/imgsel-cli/internal/selection"
	"github.com/disintegration/imaging"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, imaging.New(w, h, c)); err != nil {
		t.Fatal(err)
	}
}

func stripePolicy(t *testing.T) policy.Policy {
	t.Helper()
	p, ok := policy.Get("stripe-rows")
	if !ok {
		t.Fatal("stripe-rows not registered")
	}
	return p
}

func readNRGBA(t *testing.T, path string) *image.NRGBA {
	t.Helper()
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	return imaging.Clone(img)
}

func checkStripes(t *testing.T, img *image.NRGBA, even, odd color.NRGBA) {
	t.Helper()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		want := even
		if y%2 == 1 {
			want = odd
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			if got := img.NRGBAAt(x, y); got != want {
				t.Fatalf("(%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

var (
	blue   = color.NRGBA{B: 255, A: 255}
	yellow = color.NRGBA{R: 255, G: 255, A: 255}
)

func TestRun_StripeRows(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	out := filepath.Join(dir, "out", "mix.png")
	writePNG(t, a, 4, 6, blue)
	writePNG(t, b, 4, 6, yellow)

	p := New(Config{Policy: stripePolicy(t), SelectWorkers: 3})
	r, err := p.Run(context.Background(), Job{ImageA: a, ImageB: b, Output: out})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	img := readNRGBA(t, out)
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 6 {
		t.Fatalf("bounds: got %v", img.Bounds())
	}
	checkStripes(t, img, blue, yellow)

	c, ok := r.Composites["mix"]
	if !ok {
		t.Fatalf("composite mix missing: %v", r.Composites)
	}
	if c.Path != "mix.png" || c.Format != "png" || !c.Lossless {
		t.Errorf("composite: got %+v", c)
	}
	raw, err := convert.NRGBA{}.Decode(img)
	if err != nil {
		t.Fatal(err)
	}
	if c.RawDigest != hasher.RawDigest(raw) {
		t.Error("raw digest does not match written pixels")
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if c.Size != int64(len(data)) || c.Hash != hasher.ContentHash(data, 16) {
		t.Errorf("size/hash mismatch: %+v", c)
	}
	if r.Stats.TotalComposites != 1 || r.Stats.TotalPixels != 24 {
		t.Errorf("stats: got %+v", r.Stats)
	}
}

func TestRun_Fallbacks(t *testing.T) {
	out := filepath.Join(t.TempDir(), "fallback.png")

	r, err := New(Config{Policy: stripePolicy(t)}).Run(context.Background(), Job{Output: out})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	img := readNRGBA(t, out)
	if img.Bounds().Dx() != FallbackSize.X || img.Bounds().Dy() != FallbackSize.Y {
		t.Fatalf("bounds: got %v, want %v", img.Bounds(), FallbackSize)
	}
	checkStripes(t, img, FallbackA, FallbackB)

	c := r.Composites["fallback"]
	if !c.First.Fallback || !c.Second.Fallback {
		t.Errorf("inputs not marked fallback: %+v", c)
	}
}

func TestRun_FallbackWithRealInput(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "photo.png")
	writePNG(t, photo, 10, 10, blue)

	tests := []struct {
		name      string
		job       Job
		crop      image.Point
		size      image.Point
		even, odd color.NRGBA
	}{
		{"missing second", Job{ImageA: photo}, image.Point{}, image.Pt(10, 10), blue, FallbackB},
		{"missing first", Job{ImageB: photo}, image.Point{}, image.Pt(10, 10), FallbackA, blue},
		{"cropped", Job{ImageA: photo}, image.Pt(3, 5), image.Pt(3, 5), blue, FallbackB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := tt.job
			job.Output = filepath.Join(t.TempDir(), "o.png")
			r, err := New(Config{Policy: stripePolicy(t), Crop: tt.crop}).Run(context.Background(), job)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			img := readNRGBA(t, job.Output)
			if got := img.Bounds().Size(); got != tt.size {
				t.Fatalf("size: got %v, want %v", got, tt.size)
			}
			checkStripes(t, img, tt.even, tt.odd)

			c := r.Composites["o"]
			if c.First.Fallback == (job.ImageA != "") || c.Second.Fallback == (job.ImageB != "") {
				t.Errorf("fallback flags: got %+v", c)
			}
		})
	}
}

func TestRun_CropMakesSizesCompatible(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writePNG(t, a, 10, 8, blue)
	writePNG(t, b, 7, 9, yellow)

	out := filepath.Join(dir, "o.png")
	p := New(Config{Policy: stripePolicy(t), Crop: image.Pt(3, 5)})
	r, err := p.Run(context.Background(), Job{ImageA: a, ImageB: b, Output: out})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	checkStripes(t, readNRGBA(t, out), blue, yellow)
	if r.BuildInfo.Crop != "3x5" {
		t.Errorf("crop: got %q", r.BuildInfo.Crop)
	}
	if c := r.Composites["o"]; c.First.Width != 3 || c.Second.Height != 5 {
		t.Errorf("input sizes: got %+v", c)
	}
}

func TestRun_SizeMismatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writePNG(t, a, 3, 5, blue)
	writePNG(t, b, 5, 3, yellow)

	out := filepath.Join(dir, "o.png")
	_, err := New(Config{Policy: stripePolicy(t)}).Run(context.Background(), Job{ImageA: a, ImageB: b, Output: out})
	if !errors.Is(err, selection.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output written despite failure")
	}
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Config{Policy: stripePolicy(t)}).Run(context.Background(), Job{
		ImageA: filepath.Join(dir, "missing.png"),
		Output: filepath.Join(dir, "o.png"),
	})
	if err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestRun_UnknownExtension(t *testing.T) {
	out := filepath.Join(t.TempDir(), "o.xyz")
	if _, err := New(Config{Policy: stripePolicy(t)}).Run(context.Background(), Job{Output: out}); err == nil {
		t.Fatal("expected error for unknown output extension")
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := filepath.Join(t.TempDir(), "o.png")
	if _, err := New(Config{Policy: stripePolicy(t)}).Run(ctx, Job{Output: out}); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestRunDir(t *testing.T) {
	root := t.TempDir()
	dirA := filepath.Join(root, "a")
	dirB := filepath.Join(root, "b")
	outDir := filepath.Join(root, "out")

	writePNG(t, filepath.Join(dirA, "one.png"), 2, 4, blue)
	writePNG(t, filepath.Join(dirB, "one.png"), 2, 4, yellow)
	writePNG(t, filepath.Join(dirA, "cards", "two.png"), 3, 3, blue)
	writePNG(t, filepath.Join(dirB, "cards", "two.png"), 3, 3, yellow)
	writePNG(t, filepath.Join(dirA, "lonely.png"), 2, 2, blue)

	p := New(Config{Policy: stripePolicy(t), Workers: 2, Format: "tiff"})
	r, err := p.RunDir(context.Background(), dirA, dirB, outDir)
	if err != nil {
		t.Fatalf("run dir: %v", err)
	}

	if len(r.Composites) != 2 {
		t.Fatalf("composites: got %d, want 2", len(r.Composites))
	}
	if r.Stats.Failed != 1 {
		t.Errorf("failed: got %d, want 1", r.Stats.Failed)
	}
	c, ok := r.Composites["cards/two"]
	if !ok {
		t.Fatal("cards/two missing")
	}
	if c.Path != "cards/two.tiff" || c.Format != "tiff" {
		t.Errorf("composite: got %+v", c)
	}
	checkStripes(t, readNRGBA(t, filepath.Join(outDir, "cards", "two.tiff")), blue, yellow)
}

func TestRunDir_DuplicateKeys(t *testing.T) {
	root := t.TempDir()
	dirA := filepath.Join(root, "a")
	dirB := filepath.Join(root, "b")
	outDir := filepath.Join(root, "out")

	writePNG(t, filepath.Join(dirA, "x.png"), 2, 2, blue)
	writePNG(t, filepath.Join(dirB, "x.png"), 2, 2, yellow)
	writePNG(t, filepath.Join(dirA, "x.jpg"), 2, 2, blue)
	writePNG(t, filepath.Join(dirB, "x.jpg"), 2, 2, yellow)
	writePNG(t, filepath.Join(dirA, "y.png"), 2, 2, blue)
	writePNG(t, filepath.Join(dirB, "y.png"), 2, 2, yellow)

	r, err := New(Config{Policy: stripePolicy(t), Workers: 3}).RunDir(context.Background(), dirA, dirB, outDir)
	if err != nil {
		t.Fatalf("run dir: %v", err)
	}
	if _, ok := r.Composites["x"]; ok {
		t.Error("ambiguous key x was composited")
	}
	if _, ok := r.Composites["y"]; !ok {
		t.Error("y missing")
	}
	if r.Stats.Failed != 2 {
		t.Errorf("failed: got %d, want 2", r.Stats.Failed)
	}
	if _, err := os.Stat(filepath.Join(outDir, "x.png")); !os.IsNotExist(err) {
		t.Error("output written for ambiguous key")
	}
}

func TestRunDir_AllFail(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a", "x.png"), 2, 2, blue)
	if err := os.MkdirAll(filepath.Join(root, "b"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := New(Config{Policy: stripePolicy(t)}).RunDir(context.Background(),
		filepath.Join(root, "a"), filepath.Join(root, "b"), filepath.Join(root, "out"))
	if err == nil {
		t.Fatal("expected error when every pair fails")
	}
}

func TestRunDir_Empty(t *testing.T) {
	root := t.TempDir()
	_, err := New(Config{Policy: stripePolicy(t)}).RunDir(context.Background(), root, root, root)
	if !errors.Is(err, ErrNoPairs) {
		t.Fatalf("got %v, want ErrNoPairs", err)
	}
}

func TestRunDir_UnknownFormat(t *testing.T) {
	root := t.TempDir()
	_, err := New(Config{Policy: stripePolicy(t), Format: "webp"}).RunDir(context.Background(), root, root, root)
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}
