package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/AnyUserName/coverhue/internal/palette"
)

// New creates an empty report with defaults.
func New(radius float64) *Report {
	return &Report{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Radius:      radius,
		BasePath:    "./",
		Albums:      make(map[string]Album),
	}
}

// Swatches converts a histogram into swatches, most common first.
func Swatches(h palette.Histogram) []Swatch {
	bins := h.Descending()
	out := make([]Swatch, len(bins))
	for i, b := range bins {
		out[i] = Swatch{
			Hex:        b.Color().Hex(),
			Hue:        b.Hue,
			Saturation: b.Saturation,
			Value:      b.Value,
			Count:      b.Count,
		}
	}
	return out
}

// ComputeStats recalculates aggregate statistics from albums.
func (r *Report) ComputeStats() {
	var s Stats
	s.TotalAlbums = len(r.Albums)
	for _, a := range r.Albums {
		if a.Error != "" {
			s.Failed++
			continue
		}
		if len(a.Palette) > 0 {
			s.WithArt++
		}
		s.TotalSwatches += len(a.Palette)
		if a.Texture != nil {
			s.TotalTextureBytes += a.Texture.Size
		}
	}
	r.Stats = s
}

// WriteJSON serializes the report to a JSON file. Map keys are sorted by
// encoding/json, so output is stable.
func WriteJSON(r *Report, path string) error {
	r.ComputeStats()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a report and checks its version.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if r.Version != SupportedVersion {
		return nil, fmt.Errorf("%s: unsupported report version %d (want %d)", path, r.Version, SupportedVersion)
	}
	return &r, nil
}
