package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnyUserName/coverhue/internal/report"
	"github.com/AnyUserName/coverhue/internal/settings"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReport(t *testing.T) (*report.Report, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Artist"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Artist", "Album.16.16.abcd1234.png"), make([]byte, 100), 0o644))

	r := report.New(8)
	r.Albums["Artist/Album"] = report.Album{
		Source: report.SourceInfo{Kind: "external", Path: "Artist/Album/cover.png", Width: 64, Height: 64, Hash: "0badf00d"},
		Palette: []report.Swatch{
			{Hex: "#CC4429", Hue: 10, Saturation: 0.8, Value: 0.8, Count: 60},
			{Hex: "#2E7599", Hue: 200, Saturation: 0.7, Value: 0.6, Count: 40},
		},
		Texture: &report.Texture{Format: "png", Width: 16, Height: 16, Size: 100, Hash: "abcd1234abcd1234",
			Path: "Artist/Album.16.16.abcd1234.png"},
	}
	r.Albums["Broken"] = report.Album{Error: "no art"}
	r.ComputeStats()
	return r, dir
}

func TestValidateReport_Valid(t *testing.T) {
	r, dir := validReport(t)
	assert.Empty(t, validateReport(r, dir))
}

func TestValidateReport_Problems(t *testing.T) {
	r, dir := validReport(t)
	a := r.Albums["Artist/Album"]
	a.Palette[1].Count = 90
	a.Palette[1].Hex = "blue"
	a.Active = 5
	a.Texture.Size = 99
	r.Albums["Artist/Album"] = a
	r.Albums["Other"] = report.Album{
		Source:  report.SourceInfo{Kind: "embedded", Width: 10, Height: 10},
		Texture: &report.Texture{Width: 4, Height: 4, Hash: "x", Path: "missing.png"},
	}

	errs := strings.Join(validateReport(r, dir), "\n")
	assert.Contains(t, errs, "not sorted by count")
	assert.Contains(t, errs, `bad hex "blue"`)
	assert.Contains(t, errs, "active swatch 5 out of range")
	assert.Contains(t, errs, "size mismatch: report=99, disk=100")
	assert.Contains(t, errs, "file not found: missing.png")
	assert.Contains(t, errs, "stats mismatch")
}

func overrideFlags(t *testing.T, set map[string]string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addSettingsFlags(fs)
	t.Cleanup(func() {
		flagRadius, flagMinSaturation, flagMinValue, flagFormat, flagQuality = 0, 0, 0, "", 0
	})
	for name, value := range set {
		require.NoError(t, fs.Set(name, value))
	}
	return fs
}

func TestApplyOverrides(t *testing.T) {
	s := applyOverrides(settings.Default(), overrideFlags(t, nil))
	assert.Equal(t, settings.Default(), s)

	s = applyOverrides(settings.Default(), overrideFlags(t, map[string]string{
		"radius":         "50",
		"min-saturation": "0.3",
		"format":         "jpg",
		"quality":        "70",
	}))
	assert.Equal(t, 50.0, s.Radius)
	assert.Equal(t, 0.3, s.ColorSelection.MinSaturation)
	assert.Equal(t, "jpeg", s.Texture.Format)
	assert.Equal(t, 70, s.Texture.Quality)
	assert.Equal(t, settings.Default().ColorSelection.MinValue, s.ColorSelection.MinValue)
}

func TestApplyOverrides_ExplicitZero(t *testing.T) {
	require.NotZero(t, settings.Default().ColorSelection.MinSaturation)
	require.NotZero(t, settings.Default().ColorSelection.MinValue)

	s := applyOverrides(settings.Default(), overrideFlags(t, map[string]string{
		"min-saturation": "0",
		"min-value":      "0",
	}))
	assert.Zero(t, s.ColorSelection.MinSaturation)
	assert.Zero(t, s.ColorSelection.MinValue)
	assert.Equal(t, settings.Default().Radius, s.Radius)
}

func TestTrackKey(t *testing.T) {
	assert.Equal(t, "01 Intro", trackKey("/music/A/01 Intro.flac", "/music/A"))
	assert.Equal(t, "A", trackKey("", "/music/A"))
}
