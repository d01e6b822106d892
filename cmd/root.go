package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "imgsel",
	Short: "Composite two images pixel by pixel",
	Long: `imgsel — builds one image out of two equally sized images by asking a
pixel policy, for every coordinate, which of the two pixels to keep.

Inputs are decoded to flat RGBA8 buffers, compared pixel by pixel and the
result is encoded back to PNG, TIFF, BMP or JPEG.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imgsel %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[imgsel] "+format+"\n", args...)
	}
}

// newLogger returns the logger handed to library code: stderr when
// --verbose is set, discarded otherwise.
func newLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "[imgsel] ", log.Lmsgprefix)
	}
	return log.New(io.Discard, "", 0)
}
