package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/imgsel-cli/internal/convert"
	"github.com/AnyUserName/imgsel-cli/internal/hasher"
	"github.com/AnyUserName/imgsel-cli/internal/report"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <report_or_dir>",
	Short: "Check that composites listed in a report exist and match their hashes",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, args []string) error {
	path, err := resolveReportPath(args[0])
	if err != nil {
		return err
	}
	r, err := report.ReadJSON(path)
	if err != nil {
		return err
	}

	baseDir := filepath.Join(filepath.Dir(path), r.BasePath)
	errs := verifyReport(r, baseDir)

	if len(errs) == 0 {
		fmt.Println("  ✓ Report is valid")
		fmt.Printf("  ✓ %d composites — all files present and unchanged\n", r.Stats.TotalComposites)
		return nil
	}

	fmt.Printf("  ✗ Report has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("verification failed with %d errors", len(errs))
}

// resolveReportPath accepts a report file or a directory holding report.FileName.
func resolveReportPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, report.FileName), nil
	}
	return path, nil
}

func verifyReport(r *report.Report, baseDir string) []string {
	var errs []string

	if r.Version != report.SupportedVersion {
		errs = append(errs, fmt.Sprintf("unsupported report version: %d", r.Version))
	}

	seenPaths := map[string]bool{}
	var pixels, bytes int64
	for key, c := range r.Composites {
		pixels += int64(c.Width) * int64(c.Height)
		bytes += c.Size

		if c.Width < 0 || c.Height < 0 {
			errs = append(errs, fmt.Sprintf("composite %q: invalid dimensions %dx%d", key, c.Width, c.Height))
		}
		if c.First.Width != c.Width || c.First.Height != c.Height ||
			c.Second.Width != c.Width || c.Second.Height != c.Height {
			errs = append(errs, fmt.Sprintf("composite %q: input sizes %dx%d and %dx%d do not match output %dx%d",
				key, c.First.Width, c.First.Height, c.Second.Width, c.Second.Height, c.Width, c.Height))
		}
		if c.Hash == "" {
			errs = append(errs, fmt.Sprintf("composite %q: missing hash", key))
		}
		if c.Path == "" {
			errs = append(errs, fmt.Sprintf("composite %q: missing path", key))
			continue
		}
		if seenPaths[c.Path] {
			errs = append(errs, fmt.Sprintf("composite %q: duplicate path %q", key, c.Path))
		}
		seenPaths[c.Path] = true

		errs = append(errs, verifyFile(key, c, filepath.Join(baseDir, filepath.FromSlash(c.Path)))...)
	}

	if r.Stats.TotalComposites != len(r.Composites) {
		errs = append(errs, fmt.Sprintf("stats.total_composites mismatch: %d != %d",
			r.Stats.TotalComposites, len(r.Composites)))
	}
	if r.Stats.TotalPixels != pixels {
		errs = append(errs, fmt.Sprintf("stats.total_pixels mismatch: %d != %d", r.Stats.TotalPixels, pixels))
	}
	if r.Stats.TotalOutputBytes != bytes {
		errs = append(errs, fmt.Sprintf("stats.total_output_bytes mismatch: %d != %d", r.Stats.TotalOutputBytes, bytes))
	}
	return errs
}

// verifyFile checks size and content hash and, for lossless formats, that the
// decoded pixels still have the recorded raw digest.
func verifyFile(key string, c report.Composite, path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return []string{fmt.Sprintf("composite %q: file not found: %s", key, c.Path)}
	}
	defer f.Close()

	var errs []string
	if info, err := f.Stat(); err == nil && c.Size > 0 && info.Size() != c.Size {
		errs = append(errs, fmt.Sprintf("composite %q: size mismatch: report=%d, disk=%d", key, c.Size, info.Size()))
	}
	if h, err := hasher.ContentHashReader(f, len(c.Hash)); err != nil {
		errs = append(errs, fmt.Sprintf("composite %q: read: %v", key, err))
	} else if c.Hash != "" && h != c.Hash {
		errs = append(errs, fmt.Sprintf("composite %q: hash mismatch: report=%s, disk=%s", key, c.Hash, h))
	}

	if !c.Lossless || c.RawDigest == "" {
		return errs
	}
	img, err := imaging.Open(path)
	if err != nil {
		return append(errs, fmt.Sprintf("composite %q: decode: %v", key, err))
	}
	raw, err := convert.NRGBA{}.Decode(img)
	if err != nil {
		return append(errs, fmt.Sprintf("composite %q: decode: %v", key, err))
	}
	if d := hasher.RawDigest(raw); d != c.RawDigest {
		errs = append(errs, fmt.Sprintf("composite %q: raw digest mismatch: report=%s, disk=%s", key, c.RawDigest, d))
	}
	return errs
}
