// Package settings holds the user-tunable values consumed by extraction
// and rescaling. They are passed down explicitly; there is no global.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/AnyUserName/coverhue/internal/palette"
	"github.com/AnyUserName/coverhue/internal/resample"
	"github.com/AnyUserName/coverhue/internal/rescaler"
)

// FileName is the name of the settings file inside the config directory.
const FileName = "settings.json"

// Blur configures the Gaussian kernel used by the rescale pyramid.
type Blur struct {
	KernelSize int     `json:"kernelSize"`
	Sigma      float64 `json:"sigma"`
}

// Texture configures how scaled artwork is written out by the CLI.
type Texture struct {
	Format  string `json:"format"`  // png, jpeg or avif
	Quality int    `json:"quality"` // 1-100, ignored by png
}

// Settings is the persisted configuration.
type Settings struct {
	ColorSelection palette.Selection `json:"colorSelection"`
	Radius         float64           `json:"radius"`
	Blur           Blur              `json:"blur"`
	Texture        Texture           `json:"texture"`
}

// Default returns the stock configuration.
func Default() Settings {
	return Settings{
		ColorSelection: palette.DefaultSelection(),
		Radius:         200,
		Blur: Blur{
			KernelSize: resample.DefaultKernelSize,
			Sigma:      resample.DefaultSigma,
		},
		Texture: Texture{Format: "png", Quality: 85},
	}
}

// DefaultPath returns <user config dir>/coverhue/settings.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "coverhue", FileName), nil
}

// Load reads path over the defaults, so keys missing from the file keep
// their default values. A missing file is not an error. The merged result
// is written back so the file always lists every key.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return s, fmt.Errorf("read settings: %w", err)
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			return Default(), fmt.Errorf("parse settings %s: %w", path, err)
		}
	}

	s = s.Normalized()
	if err := Save(path, s); err != nil {
		return s, err
	}
	return s, nil
}

// Save writes s as indented JSON, creating parent directories.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Normalized replaces out-of-range values with defaults.
func (s Settings) Normalized() Settings {
	d := Default()
	if s.Radius <= 0 {
		s.Radius = d.Radius
	}
	if s.Blur.KernelSize <= 0 {
		s.Blur.KernelSize = d.Blur.KernelSize
	}
	if s.Blur.Sigma <= 0 {
		s.Blur.Sigma = d.Blur.Sigma
	}
	sel := &s.ColorSelection
	sel.MinPercentage = clamp01(sel.MinPercentage)
	sel.MinSaturation = clamp01(sel.MinSaturation)
	sel.MinValue = clamp01(sel.MinValue)
	sel.MinValueSeparation = clamp01(sel.MinValueSeparation)
	sel.MinHueSeparation = min(max(sel.MinHueSeparation, 0), 180)
	sel.MinRgbSeparation = max(sel.MinRgbSeparation, 0)

	switch s.Texture.Format {
	case "png", "jpeg", "avif":
	case "jpg":
		s.Texture.Format = "jpeg"
	default:
		s.Texture.Format = d.Texture.Format
	}
	if s.Texture.Quality < 1 || s.Texture.Quality > 100 {
		s.Texture.Quality = d.Texture.Quality
	}
	return s
}

// RescaleOptions returns the options for a rescale job.
func (s Settings) RescaleOptions() rescaler.Options {
	return rescaler.Options{
		Radius:     s.Radius,
		KernelSize: s.Blur.KernelSize,
		Sigma:      s.Blur.Sigma,
	}
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
