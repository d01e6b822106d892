package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/AnyUserName/imgsel-cli/internal/convert"
	"github.com/AnyUserName/imgsel-cli/internal/encoder"
	"github.com/AnyUserName/imgsel-cli/internal/policy"
	"github.com/AnyUserName/imgsel-cli/internal/report"
	"github.com/AnyUserName/imgsel-cli/internal/selection"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoPairs is returned by RunDir when the first directory has no images.
var ErrNoPairs = errors.New("no image pairs found")

// Config holds all parameters for a compose run.
type Config struct {
	Policy        policy.Policy
	Crop          image.Point // crop both inputs to the top-left Crop.X x Crop.Y region; zero keeps them whole
	Workers       int         // concurrent pairs in directory mode (0 = NumCPU)
	SelectWorkers int         // row bands per composite (<= 1 = sequential)
	Format        string      // output format in directory mode (default png)
	Quality       int         // quality for lossy formats
	Logger        *log.Logger // nil discards
}

// Pipeline loads image files, composites them with a pixel policy and
// writes the results.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
	selector selection.Pipeline
	tracer   trace.Tracer
	logger   *log.Logger
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.SelectWorkers < 1 {
		cfg.SelectWorkers = 1
	}
	if cfg.Format == "" {
		cfg.Format = "png"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	raw := selection.FromPixelSelector(cfg.Policy.Select).WithWorkers(cfg.SelectWorkers)
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(),
		selector: selection.Invalid().
			WithSelector(raw.RawSelector()).
			WithConverter(convert.NRGBA{}),
		tracer: otel.Tracer("github.com/AnyUserName/imgsel-cli/internal/pipeline"),
		logger: logger,
	}
}

// Run composites a single pair and returns a report with one entry, keyed by
// the output file name without extension. Paths are relative to the output
// directory.
func (p *Pipeline) Run(ctx context.Context, job Job) (*report.Report, error) {
	if job.Key == "" {
		base := filepath.Base(job.Output)
		job.Key = strings.TrimSuffix(base, filepath.Ext(base))
	}
	p.logger.Printf("compose %s: a=%q b=%q policy=%s", job.Key, job.ImageA, job.ImageB, p.cfg.Policy.Name)

	c, err := p.compose(ctx, job, filepath.Dir(job.Output))
	if err != nil {
		return nil, err
	}
	p.logger.Printf("done %s: %dx%d %s %d bytes", job.Key, c.Width, c.Height, c.Format, c.Size)

	r := p.newReport()
	r.Composites[job.Key] = c
	r.ComputeStats()
	return r, nil
}

// RunDir pairs every image under dirA with the file at the same relative
// path under dirB and writes composites to outDir. Pairs that fail are logged
// and counted; RunDir only fails when every pair fails.
func (p *Pipeline) RunDir(ctx context.Context, dirA, dirB, outDir string) (*report.Report, error) {
	enc := p.registry.Get(p.cfg.Format)
	if enc == nil {
		return nil, fmt.Errorf("unknown output format %q (have %s)",
			p.cfg.Format, strings.Join(p.registry.Available(), ", "))
	}

	sources, err := ScanImages(dirA)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPairs, dirA)
	}
	p.logger.Printf("found %d images in %s", len(sources), dirA)

	type result struct {
		key string
		c   report.Composite
		err error
	}
	results := make([]result, len(sources))

	// Sources differing only by extension share an output path.
	byKey := make(map[string][]string, len(sources))
	for _, s := range sources {
		byKey[s.Key] = append(byKey[s.Key], s.RelPath)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)
	for i, src := range sources {
		if dups := byKey[src.Key]; len(dups) > 1 {
			results[i] = result{key: src.Key, err: fmt.Errorf("%s: output %q is shared by %s",
				src.RelPath, src.Key, strings.Join(dups, ", "))}
			continue
		}
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			job := Job{
				Key:    s.Key,
				ImageA: s.AbsPath,
				ImageB: filepath.Join(dirB, filepath.FromSlash(s.RelPath)),
				Output: filepath.Join(outDir, filepath.FromSlash(s.Key)+"."+enc.Extensions()[0]),
			}
			if _, err := os.Stat(job.ImageB); err != nil {
				results[idx] = result{key: s.Key, err: fmt.Errorf("%s: no counterpart in %s", s.RelPath, dirB)}
				return
			}
			c, err := p.compose(ctx, job, outDir)
			if err != nil {
				err = fmt.Errorf("%s: %w", s.RelPath, err)
			}
			results[idx] = result{key: s.Key, c: c, err: err}
		}(i, src)
	}
	wg.Wait()

	r := p.newReport()
	var failed int
	for _, res := range results {
		if res.err != nil {
			p.logger.Printf("error: %v", res.err)
			failed++
			continue
		}
		r.Composites[res.key] = res.c
	}
	if failed == len(sources) {
		return nil, fmt.Errorf("all %d pairs failed", failed)
	}
	if failed > 0 {
		p.logger.Printf("warning: %d of %d pairs had errors", failed, len(sources))
	}

	r.Stats.Failed = failed
	r.ComputeStats()
	return r, nil
}

func (p *Pipeline) newReport() *report.Report {
	r := report.New(p.cfg.Policy.Name)
	r.BuildInfo = &report.BuildInfo{
		Workers:       p.cfg.Workers,
		SelectWorkers: p.cfg.SelectWorkers,
	}
	if p.cfg.Crop != (image.Point{}) {
		r.BuildInfo.Crop = fmt.Sprintf("%dx%d", p.cfg.Crop.X, p.cfg.Crop.Y)
	}
	return r
}
