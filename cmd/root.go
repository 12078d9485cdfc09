package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/AnyUserName/coverhue/internal/settings"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version      = "0.1.0"
	verbose      bool
	settingsPath string

	// Overrides applied on top of the settings file when their flag is set.
	flagRadius        float64
	flagMinSaturation float64
	flagMinValue      float64
	flagFormat        string
	flagQuality       int
)

var rootCmd = &cobra.Command{
	Use:   "coverhue",
	Short: "Accent colours and blurred backdrops from album artwork",
	Long: `coverhue picks the artwork for a track (embedded tags or a cover file
beside it), extracts its dominant colours and renders a softly blurred,
downscaled texture suitable for a player backdrop.

Settings are read from the user config directory and can be overridden
per run with flags.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Commands observe ctx for shutdown.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		newLogger().Error("command failed", "err", err)
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&settingsPath, "settings", "", "settings file (default <config dir>/coverhue/settings.json)")
	addSettingsFlags(pf)

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"coverhue %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// newLogger returns a tint logger on stderr; --verbose enables debug.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}

// addSettingsFlags registers the flags that override settings file values.
func addSettingsFlags(fs *pflag.FlagSet) {
	fs.Float64VarP(&flagRadius, "radius", "r", 0, "texture radius in pixels (default from settings)")
	fs.Float64Var(&flagMinSaturation, "min-saturation", 0, "minimum saturation 0-1 for accent colours (default from settings)")
	fs.Float64Var(&flagMinValue, "min-value", 0, "minimum value 0-1 for accent colours (default from settings)")
	fs.StringVar(&flagFormat, "format", "", "texture format: png, jpeg or avif (default from settings)")
	fs.IntVarP(&flagQuality, "quality", "q", 0, "texture quality 1-100 (default from settings)")
}

// loadSettings reads the settings file and applies the overrides set on
// fs. It returns the path that was used.
func loadSettings(fs *pflag.FlagSet) (settings.Settings, string, error) {
	path := settingsPath
	if path == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return settings.Settings{}, "", err
		}
		path = p
	}

	s, err := settings.Load(path)
	if err != nil {
		return settings.Settings{}, "", fmt.Errorf("load settings: %w", err)
	}
	return applyOverrides(s, fs), path, nil
}

// applyOverrides copies the flags the user set into s. Only flags marked
// changed apply, so an explicit 0 overrides the settings file.
func applyOverrides(s settings.Settings, fs *pflag.FlagSet) settings.Settings {
	if fs.Changed("radius") {
		s.Radius = flagRadius
	}
	if fs.Changed("min-saturation") {
		s.ColorSelection.MinSaturation = flagMinSaturation
	}
	if fs.Changed("min-value") {
		s.ColorSelection.MinValue = flagMinValue
	}
	if fs.Changed("format") {
		s.Texture.Format = flagFormat
	}
	if fs.Changed("quality") {
		s.Texture.Quality = flagQuality
	}
	return s.Normalized()
}
