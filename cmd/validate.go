package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/AnyUserName/coverhue/internal/report"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <report_path>",
	Short: "Validate a coverhue report and check referenced textures exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func runValidate(_ *cobra.Command, args []string) error {
	reportFile := args[0]

	r, err := report.ReadJSON(reportFile)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	baseDir := filepath.Join(filepath.Dir(reportFile), r.BasePath)
	errs := validateReport(r, baseDir)

	if len(errs) == 0 {
		fmt.Println("  ✓ Report is valid")
		fmt.Printf("  ✓ %d albums, %d swatches, all textures present\n", r.Stats.TotalAlbums, r.Stats.TotalSwatches)
		return nil
	}

	fmt.Printf("  ✗ Report has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateReport(r *report.Report, baseDir string) []string {
	var errs []string

	if r.Radius <= 0 {
		errs = append(errs, fmt.Sprintf("invalid radius %g", r.Radius))
	}

	keys := make([]string, 0, len(r.Albums))
	for k := range r.Albums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seenPaths := map[string]string{}
	for _, key := range keys {
		a := r.Albums[key]
		if a.Error != "" {
			continue
		}

		if a.Source.Width <= 0 || a.Source.Height <= 0 {
			errs = append(errs, fmt.Sprintf("album %q: invalid source dimensions %dx%d",
				key, a.Source.Width, a.Source.Height))
		}
		if a.Source.Kind != "embedded" && a.Source.Kind != "external" {
			errs = append(errs, fmt.Sprintf("album %q: unknown source kind %q", key, a.Source.Kind))
		}

		// Palette must be most common first with distinct hues.
		hues := map[float64]bool{}
		for i, s := range a.Palette {
			if !hexColor.MatchString(s.Hex) {
				errs = append(errs, fmt.Sprintf("album %q swatch[%d]: bad hex %q", key, i, s.Hex))
			}
			if s.Hue < 0 || s.Hue >= 360 {
				errs = append(errs, fmt.Sprintf("album %q swatch[%d]: hue %g out of range", key, i, s.Hue))
			}
			if i > 0 && s.Count > a.Palette[i-1].Count {
				errs = append(errs, fmt.Sprintf("album %q swatch[%d]: not sorted by count", key, i))
			}
			if hues[s.Hue] {
				errs = append(errs, fmt.Sprintf("album %q swatch[%d]: duplicate hue %g", key, i, s.Hue))
			}
			hues[s.Hue] = true
		}
		if len(a.Palette) > 0 && (a.Active < 0 || a.Active >= len(a.Palette)) {
			errs = append(errs, fmt.Sprintf("album %q: active swatch %d out of range", key, a.Active))
		}

		t := a.Texture
		if t == nil {
			continue
		}
		if t.Width <= 0 || t.Height <= 0 {
			errs = append(errs, fmt.Sprintf("album %q texture: invalid dimensions %dx%d", key, t.Width, t.Height))
		}
		if t.Width > a.Source.Width || t.Height > a.Source.Height {
			errs = append(errs, fmt.Sprintf("album %q texture: %dx%d larger than source", key, t.Width, t.Height))
		}
		if t.Hash == "" {
			errs = append(errs, fmt.Sprintf("album %q texture: missing hash", key))
		}
		if t.Path == "" {
			errs = append(errs, fmt.Sprintf("album %q texture: missing path", key))
			continue
		}
		if other, dup := seenPaths[t.Path]; dup {
			errs = append(errs, fmt.Sprintf("album %q texture: path %q also used by %q", key, t.Path, other))
		}
		seenPaths[t.Path] = key

		info, err := os.Stat(filepath.Join(baseDir, filepath.FromSlash(t.Path)))
		if err != nil {
			errs = append(errs, fmt.Sprintf("album %q texture: file not found: %s", key, t.Path))
		} else if t.Size > 0 && info.Size() != t.Size {
			errs = append(errs, fmt.Sprintf("album %q texture: size mismatch: report=%d, disk=%d",
				key, t.Size, info.Size()))
		}
	}

	// Verify stats consistency.
	want := *r
	want.ComputeStats()
	if r.Stats != want.Stats {
		errs = append(errs, fmt.Sprintf("stats mismatch: report=%+v, computed=%+v", r.Stats, want.Stats))
	}

	return errs
}
