package cmd

import (
	"fmt"
	"sort"

	"github.com/AnyUserName/imgsel-cli/internal/report"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <report_or_dir>",
	Short: "Display a summary of a compose report",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	path, err := resolveReportPath(args[0])
	if err != nil {
		return err
	}
	r, err := report.ReadJSON(path)
	if err != nil {
		return err
	}
	printInspect(r)
	return nil
}

func printInspect(r *report.Report) {
	fmt.Println()
	fmt.Printf("  Report version:   %d\n", r.Version)
	fmt.Printf("  Generated:        %s\n", r.GeneratedAt)
	fmt.Printf("  Policy:           %s\n", r.Policy)
	if r.BuildInfo != nil {
		fmt.Printf("  Workers:          %d pairs, %d row bands\n", r.BuildInfo.Workers, r.BuildInfo.SelectWorkers)
		if r.BuildInfo.Crop != "" {
			fmt.Printf("  Crop:             %s\n", r.BuildInfo.Crop)
		}
	}
	fmt.Println()

	s := r.Stats
	fmt.Printf("  Composites:       %d\n", s.TotalComposites)
	fmt.Printf("  Failed pairs:     %d\n", s.Failed)
	fmt.Printf("  Pixels:           %d\n", s.TotalPixels)
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	fmt.Println()

	// Per-format breakdown.
	formatStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, c := range r.Composites {
		fs := formatStats[c.Format]
		fs.count++
		fs.bytes += c.Size
		formatStats[c.Format] = fs
	}
	fmt.Println("  Format breakdown:")
	for _, f := range []string{"png", "tiff", "bmp", "jpeg"} {
		if fs, ok := formatStats[f]; ok {
			fmt.Printf("    %-6s  %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
		}
	}
	fmt.Println()

	// Per-size breakdown.
	sizeStats := map[string]int{}
	for _, c := range r.Composites {
		sizeStats[fmt.Sprintf("%dx%d", c.Width, c.Height)]++
	}
	sizes := make([]string, 0, len(sizeStats))
	for s := range sizeStats {
		sizes = append(sizes, s)
	}
	sort.Strings(sizes)
	fmt.Println("  Size breakdown:")
	for _, s := range sizes {
		fmt.Printf("    %11s  %4d composites\n", s, sizeStats[s])
	}

	// Warnings.
	var warnings []string
	for key, c := range r.Composites {
		if c.First.Fallback || c.Second.Fallback {
			warnings = append(warnings, fmt.Sprintf("composite %q uses a generated fallback input", key))
		}
		if !c.Lossless {
			warnings = append(warnings, fmt.Sprintf("composite %q is %s; raw digest cannot be verified", key, c.Format))
		}
	}
	sort.Strings(warnings)
	if len(warnings) > 0 {
		fmt.Println()
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	fmt.Println()
}
