package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/coverhue/internal/artwork"
	"github.com/AnyUserName/coverhue/internal/report"
	"github.com/AnyUserName/coverhue/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// ReportName is the report file written into the output directory.
const ReportName = "coverhue.report.json"

var (
	cachePath string
	noCache   bool
)

// addCacheFlags registers the palette cache flags on cmd.
func addCacheFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cachePath, "cache", "", "palette cache database (default <config dir>/coverhue/palettes.db)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "always extract palettes")
}

// paletteCache is the SQLite palette cache opened for a command. A nil
// *paletteCache means caching is disabled.
type paletteCache struct {
	db    *store.Store
	cache *store.Cache
	path  string
}

// openCache opens the palette cache next to the settings file unless
// --no-cache is set.
func openCache(settingsFile string, log *slog.Logger) (*paletteCache, error) {
	if noCache {
		return nil, nil
	}
	path := cachePath
	if path == "" {
		path = filepath.Join(filepath.Dir(settingsFile), "palettes.db")
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open palette cache: %w", err)
	}
	log.Debug("palette cache", "path", path)
	return &paletteCache{db: s, cache: store.NewCache(s, log), path: path}, nil
}

// Palettes returns the loader-facing cache, or nil when disabled.
func (c *paletteCache) Palettes() artwork.PaletteCache {
	if c == nil {
		return nil
	}
	return c.cache
}

func (c *paletteCache) Close() {
	if c != nil {
		c.db.Close()
	}
}

// reportPath resolves a report file from a directory or file argument.
func reportPath(path string, isDir bool) string {
	if isDir {
		return filepath.Join(path, ReportName)
	}
	return path
}

func printPalette(a report.Album) {
	for i, s := range a.Palette {
		marker := " "
		if i == a.Active {
			marker = "▸"
		}
		fmt.Printf("   %s %s  hue %3.0f  sat %.2f  val %.2f  ×%d\n",
			marker, s.Hex, s.Hue, s.Saturation, s.Value, s.Count)
	}
}

func formatBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
