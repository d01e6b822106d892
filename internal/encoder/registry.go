package encoder

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Registry maps formats and file extensions to encoders.
type Registry struct {
	encoders map[string]Encoder
	byExt    map[string]Encoder
	order    []string
}

// NewRegistry creates a registry holding every built-in encoder.
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[string]Encoder),
		byExt:    make(map[string]Encoder),
	}

	// Priority order: png is the default.
	for _, enc := range []Encoder{
		&PNGEncoder{},
		&TIFFEncoder{},
		&BMPEncoder{},
		&JPEGEncoder{},
	} {
		r.encoders[enc.Format()] = enc
		r.order = append(r.order, enc.Format())
		for _, ext := range enc.Extensions() {
			r.byExt[ext] = enc
		}
	}
	return r
}

// Get returns an encoder for the given format, or nil if unknown.
func (r *Registry) Get(format string) Encoder {
	return r.encoders[strings.ToLower(format)]
}

// ForPath picks the encoder from the file extension of path.
// A path without extension gets the default PNG encoder.
func (r *Registry) ForPath(path string) (Encoder, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return r.encoders["png"], nil
	}
	enc, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("no encoder for %q (have %s)", path, strings.Join(r.Available(), ", "))
	}
	return enc, nil
}

// Available returns all format names in priority order.
func (r *Registry) Available() []string {
	return append([]string(nil), r.order...)
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	return fmt.Sprintf("encoders: %s", strings.Join(r.Available(), ", "))
}
