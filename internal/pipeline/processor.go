package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/AnyUserName/imgsel-cli/internal/convert"
	"github.com/AnyUserName/imgsel-cli/internal/hasher"
	"github.com/AnyUserName/imgsel-cli/internal/report"
	"github.com/disintegration/imaging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FallbackSize is the size of generated inputs when both paths are empty and
// no crop size is given.
var FallbackSize = image.Pt(3, 5)

// Fallback colors for a missing first and second input.
var (
	FallbackA = color.NRGBA{R: 255, A: 255}
	FallbackB = color.NRGBA{G: 255, A: 255}
)

// Job is one pair of inputs and the file the composite is written to.
// An empty input path selects the fallback solid image.
type Job struct {
	Key    string
	ImageA string
	ImageB string
	Output string
}

// compose loads both inputs, selects their pixels and writes the encoded
// result. Paths in the returned Composite are relative to baseDir.
func (p *Pipeline) compose(ctx context.Context, job Job, baseDir string) (report.Composite, error) {
	ctx, span := p.tracer.Start(ctx, "compose", trace.WithAttributes(
		attribute.String("imgsel.key", job.Key),
		attribute.String("imgsel.policy", p.cfg.Policy.Name),
	))
	defer span.End()

	c, err := p.composeSteps(ctx, job, baseDir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return c, err
}

func (p *Pipeline) composeSteps(ctx context.Context, job Job, baseDir string) (report.Composite, error) {
	var c report.Composite
	if err := ctx.Err(); err != nil {
		return c, err
	}

	enc, err := p.registry.ForPath(job.Output)
	if err != nil {
		return c, err
	}

	a, inA, b, inB, err := p.loadPair(ctx, job)
	if err != nil {
		return c, err
	}

	_, span := p.tracer.Start(ctx, "select")
	out, err := p.selector.Select(a, b)
	span.End()
	if err != nil {
		return c, err
	}

	raw, err := convert.NRGBA{}.Decode(out)
	if err != nil {
		return c, fmt.Errorf("digest output: %w", err)
	}

	_, span = p.tracer.Start(ctx, "encode", trace.WithAttributes(attribute.String("imgsel.format", enc.Format())))
	data, err := enc.Encode(out, p.cfg.Quality)
	span.End()
	if err != nil {
		return c, fmt.Errorf("encode %s: %w", enc.Format(), err)
	}

	_, span = p.tracer.Start(ctx, "write")
	err = writeFile(job.Output, data)
	span.End()
	if err != nil {
		return c, err
	}

	rel, err := filepath.Rel(baseDir, job.Output)
	if err != nil {
		rel = job.Output
	}

	c = report.Composite{
		First:     inA,
		Second:    inB,
		Width:     raw.Width(),
		Height:    raw.Height(),
		Format:    enc.Format(),
		Size:      int64(len(data)),
		Hash:      hasher.ContentHash(data, 16),
		RawDigest: hasher.RawDigest(raw),
		Lossless:  enc.Lossless(),
		Path:      filepath.ToSlash(rel),
	}
	return c, nil
}

// loadPair loads both inputs. A missing input becomes a solid image the size
// of the other (cropped) input, or of the crop or FallbackSize when both are
// missing, so a fallback always matches its partner.
func (p *Pipeline) loadPair(ctx context.Context, job Job) (a image.Image, inA report.Input, b image.Image, inB report.Input, err error) {
	size := FallbackSize
	if p.cfg.Crop != (image.Point{}) {
		size = p.cfg.Crop
	}

	if job.ImageA == "" && job.ImageB != "" {
		if b, inB, err = p.load(ctx, job.ImageB, FallbackB, size); err != nil {
			return nil, inA, nil, inB, fmt.Errorf("load second image: %w", err)
		}
		a, inA, _ = p.load(ctx, "", FallbackA, image.Pt(inB.Width, inB.Height))
		return a, inA, b, inB, nil
	}

	if a, inA, err = p.load(ctx, job.ImageA, FallbackA, size); err != nil {
		return nil, inA, nil, inB, fmt.Errorf("load first image: %w", err)
	}
	if job.ImageA != "" {
		size = image.Pt(inA.Width, inA.Height)
	}
	if b, inB, err = p.load(ctx, job.ImageB, FallbackB, size); err != nil {
		return nil, inA, nil, inB, fmt.Errorf("load second image: %w", err)
	}
	return a, inA, b, inB, nil
}

// load opens path, or generates a solid image of fallbackSize when path is
// empty, and applies the configured crop.
func (p *Pipeline) load(ctx context.Context, path string, fallback color.NRGBA, fallbackSize image.Point) (image.Image, report.Input, error) {
	_, span := p.tracer.Start(ctx, "load", trace.WithAttributes(attribute.String("imgsel.path", path)))
	defer span.End()

	var (
		img image.Image
		in  report.Input
	)
	if path == "" {
		img = imaging.New(fallbackSize.X, fallbackSize.Y, fallback)
		in = report.Input{Format: "solid", Fallback: true}
	} else {
		var err error
		img, err = imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			return nil, in, err
		}
		in = report.Input{Path: path, Format: formatOf(path)}
	}

	if p.cfg.Crop != (image.Point{}) {
		origin := img.Bounds().Min
		img = imaging.Crop(img, image.Rectangle{Min: origin, Max: origin.Add(p.cfg.Crop)})
	}

	b := img.Bounds()
	in.Width, in.Height = b.Dx(), b.Dy()
	return img, in, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
