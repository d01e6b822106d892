package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// New creates an empty report with defaults.
func New(policyName string) *Report {
	return &Report{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Policy:      policyName,
		BasePath:    "./",
		Composites:  make(map[string]Composite),
	}
}

// ComputeStats recalculates aggregate statistics from composites.
// Failed is left untouched.
func (r *Report) ComputeStats() {
	s := Stats{Failed: r.Stats.Failed}
	s.TotalComposites = len(r.Composites)
	for _, c := range r.Composites {
		s.TotalPixels += int64(c.Width) * int64(c.Height)
		s.TotalOutputBytes += c.Size
	}
	r.Stats = s
}

// WriteJSON serializes the report to a JSON file.
func WriteJSON(r *Report, path string) error {
	r.ComputeStats()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &r, nil
}
