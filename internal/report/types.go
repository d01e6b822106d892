package report

// Report is the JSON sidecar written next to composite outputs.
type Report struct {
	Version     int                  `json:"version"`
	GeneratedAt string               `json:"generated_at"`
	Policy      string               `json:"policy"`
	BasePath    string               `json:"base_path"`
	BuildInfo   *BuildInfo           `json:"build_info,omitempty"`
	Composites  map[string]Composite `json:"composites"`
	Stats       Stats                `json:"stats"`
}

// BuildInfo captures run parameters for diagnostics.
type BuildInfo struct {
	Workers       int    `json:"workers"`        // concurrent composites (directory mode)
	SelectWorkers int    `json:"select_workers"` // row bands per composite
	Crop          string `json:"crop,omitempty"` // "WxH", empty when not cropped
}

// Composite describes one output image and the inputs it was selected from.
type Composite struct {
	First     Input  `json:"first"`
	Second    Input  `json:"second"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`     // "png", "jpeg", "tiff", "bmp"
	Size      int64  `json:"size"`       // bytes on disk
	Hash      string `json:"hash"`       // xxhash64 of the encoded file, 16 hex chars
	RawDigest string `json:"raw_digest"` // xxhash64 of dimensions + RGBA8 pixels
	Lossless  bool   `json:"lossless"`
	Path      string `json:"path"` // relative to base_path
}

// Input identifies one source image. Path is empty for a generated fallback.
type Input struct {
	Path     string `json:"path,omitempty"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Stats aggregates run metrics.
type Stats struct {
	TotalComposites  int   `json:"total_composites"`
	TotalPixels      int64 `json:"total_pixels"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	Failed           int   `json:"failed,omitempty"` // pairs that could not be composited
}

// SupportedVersion is the current schema version.
const SupportedVersion = 1

// FileName is the sidecar name used in directory mode.
const FileName = "imgsel.report.json"
