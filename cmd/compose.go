package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/AnyUserName/imgsel-cli/internal/config"
	"github.com/AnyUserName/imgsel-cli/internal/pipeline"
	"github.com/AnyUserName/imgsel-cli/internal/policy"
	"github.com/AnyUserName/imgsel-cli/internal/report"
	"github.com/AnyUserName/imgsel-cli/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	composeA             string
	composeB             string
	composeOut           string
	composePolicy        string
	composeCrop          string
	composeWorkers       int
	composeSelectWorkers int
	composeFormat        string
	composeQuality       int
	composeDir           bool
	composeReport        bool
	composeTrace         string
)

var composeCmd = &cobra.Command{
	Use:   "compose [--dir <dir_a> <dir_b>]",
	Short: "Composite two images (or two directories of images) with a pixel policy",
	Long: `Loads two images, optionally crops both to the same top-left region, and
writes a new image whose every pixel is chosen from one of the inputs by the
selected policy. Inputs must have identical dimensions after cropping.

An empty input path is replaced by a solid image (red for the first input,
green for the second) the size of the other input. When both are empty the
solids take the crop size, 3x5 when no crop is given.

Paths default to $ENV_IMG_NAME_A, $ENV_IMG_NAME_B and $ENV_O_IMG_NAME;
--workers and --select-workers to $IMGSEL_WORKERS and $IMGSEL_SELECT_WORKERS.

With --dir, every image under <dir_a> is paired with the file at the same
relative path under <dir_b>, composites are written under --out and a
` + report.FileName + ` report is written next to them.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCompose,
}

func init() {
	cfg := config.Load()

	f := composeCmd.Flags()
	f.StringVar(&composeA, "a", cfg.Compose.ImageA, "first input image")
	f.StringVar(&composeB, "b", cfg.Compose.ImageB, "second input image")
	f.StringVarP(&composeOut, "out", "o", cfg.Compose.Output, "output file (directory with --dir)")
	f.StringVarP(&composePolicy, "policy", "p", cfg.Compose.Policy, "pixel policy (list them with: imgsel policies)")
	f.StringVar(&composeCrop, "crop", "", "crop both inputs to WxH before selecting")
	f.IntVarP(&composeWorkers, "workers", "w", cfg.Compose.Workers, "parallel pairs with --dir (0 = NumCPU)")
	f.IntVar(&composeSelectWorkers, "select-workers", cfg.Compose.SelectWorkers, "row bands processed in parallel per image")
	f.StringVarP(&composeFormat, "format", "f", "png", "output format with --dir (png, tiff, bmp, jpeg)")
	f.IntVarP(&composeQuality, "quality", "q", 0, "quality 1-100 for jpeg (0 = default)")
	f.BoolVar(&composeDir, "dir", false, "composite two directories")
	f.BoolVar(&composeReport, "report", false, "write a JSON report next to the output file")
	f.StringVar(&composeTrace, "trace", cfg.Trace.Exporter, "trace exporter (none, stdout, otlp)")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	start := time.Now()

	pol, ok := policy.Get(composePolicy)
	if !ok {
		return fmt.Errorf("unknown policy %q (have %s)", composePolicy, strings.Join(policy.Names(), ", "))
	}
	crop, err := parseSize(composeCrop)
	if err != nil {
		return fmt.Errorf("--crop: %w", err)
	}
	if composeOut == "" {
		return errors.New("output unknown: set --out or $" + config.EnvOutput)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	traceCfg := config.Load().Trace
	shutdown, err := telemetry.SetupTracing(ctx, telemetry.TraceConfig{
		Exporter:     composeTrace,
		OTLPEndpoint: traceCfg.OTLPEndpoint,
		OTLPInsecure: traceCfg.OTLPInsecure,
		Writer:       os.Stderr,
	}, newLogger())
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logVerbose("tracing shutdown: %v", err)
		}
	}()

	p := pipeline.New(pipeline.Config{
		Policy:        pol,
		Crop:          crop,
		Workers:       composeWorkers,
		SelectWorkers: composeSelectWorkers,
		Format:        composeFormat,
		Quality:       composeQuality,
		Logger:        newLogger(),
	})

	var (
		r          *report.Report
		reportPath string
	)
	if composeDir {
		if len(args) != 2 {
			return errors.New("--dir needs <dir_a> <dir_b>")
		}
		dirA, dirB, outDir, err := absPaths(args[0], args[1], composeOut)
		if err != nil {
			return err
		}
		logVerbose("first:   %s", dirA)
		logVerbose("second:  %s", dirB)
		logVerbose("output:  %s", outDir)

		r, err = p.RunDir(ctx, dirA, dirB, outDir)
		if err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
		reportPath = filepath.Join(outDir, report.FileName)
	} else {
		if len(args) != 0 {
			return errors.New("positional arguments need --dir; use --a and --b for single images")
		}
		out, err := filepath.Abs(composeOut)
		if err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
		logVerbose("first:   %q", composeA)
		logVerbose("second:  %q", composeB)
		logVerbose("output:  %s", out)

		r, err = p.Run(ctx, pipeline.Job{ImageA: composeA, ImageB: composeB, Output: out})
		if err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
		if composeReport {
			reportPath = strings.TrimSuffix(out, filepath.Ext(out)) + ".json"
		}
	}

	if reportPath != "" {
		if err := report.WriteJSON(r, reportPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logVerbose("report:  %s", reportPath)
	}

	printComposeReport(r, time.Since(start))
	return nil
}

func absPaths(paths ...string) (string, string, string, error) {
	var abs [3]string
	for i, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return "", "", "", fmt.Errorf("resolve %s: %w", p, err)
		}
		abs[i] = a
	}
	return abs[0], abs[1], abs[2], nil
}

// parseSize parses "WxH". An empty string means no size.
func parseSize(s string) (image.Point, error) {
	if s == "" {
		return image.Point{}, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return image.Point{}, fmt.Errorf("want WxH, got %q", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return image.Point{}, fmt.Errorf("width: %w", err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return image.Point{}, fmt.Errorf("height: %w", err)
	}
	if w < 0 || h < 0 {
		return image.Point{}, fmt.Errorf("negative size %q", s)
	}
	if (w == 0) != (h == 0) {
		return image.Point{}, fmt.Errorf("size %q has a zero side", s)
	}
	return image.Pt(w, h), nil
}

func printComposeReport(r *report.Report, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║              imgsel compose complete             ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	s := r.Stats
	fmt.Printf("  Policy:      %s\n", r.Policy)
	fmt.Printf("  Composites:  %d\n", s.TotalComposites)
	if s.Failed > 0 {
		fmt.Printf("  Failed:      %d\n", s.Failed)
	}
	fmt.Printf("  Pixels:      %d\n", s.TotalPixels)
	fmt.Printf("  Output size: %s\n", formatBytes(s.TotalOutputBytes))
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	keys := make([]string, 0, len(r.Composites))
	for k := range r.Composites {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	n := len(keys)
	if n > 10 {
		n = 10
	}
	for _, k := range keys[:n] {
		c := r.Composites[k]
		fmt.Printf("    %-40s %4dx%-4d %-4s %8s  %s\n",
			truncKey(k, 40), c.Width, c.Height, c.Format, formatBytes(c.Size), c.RawDigest)
	}
	if len(keys) > n {
		fmt.Printf("    … and %d more\n", len(keys)-n)
	}
	fmt.Println()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit+3:]
}
