package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/AnyUserName/coverhue/internal/report"
	"github.com/spf13/cobra"
)

var inspectAlbum string

var inspectCmd = &cobra.Command{
	Use:   "inspect <out_dir_or_report>",
	Short: "Display a report written by extract or batch",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectAlbum, "album", "a", "", "only show this album")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	info, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("stat %s: %w", args[0], err)
	}
	r, err := report.ReadJSON(reportPath(args[0], info.IsDir()))
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	if inspectAlbum != "" {
		a, ok := r.Albums[inspectAlbum]
		if !ok {
			return fmt.Errorf("album %q not in report", inspectAlbum)
		}
		printAlbum(inspectAlbum, a)
		return nil
	}
	printInspect(r)
	return nil
}

func printInspect(r *report.Report) {
	fmt.Println()
	fmt.Printf("  Report version: %d\n", r.Version)
	fmt.Printf("  Generated:      %s\n", r.GeneratedAt)
	fmt.Printf("  Radius:         %g\n", r.Radius)
	if r.BuildInfo != nil {
		fmt.Printf("  Workers:        %d\n", r.BuildInfo.Workers)
		if r.BuildInfo.CachePath != "" {
			fmt.Printf("  Palette cache:  %s\n", r.BuildInfo.CachePath)
		}
	}
	fmt.Println()

	s := r.Stats
	fmt.Printf("  Albums:         %d (%d with art, %d failed)\n", s.TotalAlbums, s.WithArt, s.Failed)
	fmt.Printf("  Swatches:       %d\n", s.TotalSwatches)
	fmt.Printf("  Texture bytes:  %s\n", formatBytes(s.TotalTextureBytes))
	fmt.Println()

	// Source kinds.
	kinds := map[string]int{}
	for _, a := range r.Albums {
		if a.Error == "" {
			kinds[a.Source.Kind]++
		}
	}
	fmt.Printf("  Embedded art:   %d\n", kinds["embedded"])
	fmt.Printf("  External art:   %d\n", kinds["external"])
	fmt.Println()

	keys := make([]string, 0, len(r.Albums))
	for k := range r.Albums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var warnings []string
	for _, k := range keys {
		a := r.Albums[k]
		switch {
		case a.Error != "":
			warnings = append(warnings, fmt.Sprintf("album %q failed: %s", k, a.Error))
		case len(a.Palette) == 0:
			warnings = append(warnings, fmt.Sprintf("album %q has no accent colours", k))
		case a.Texture == nil:
			warnings = append(warnings, fmt.Sprintf("album %q has no texture", k))
		}
	}
	if len(warnings) > 0 {
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
		fmt.Println()
	}
}

func printAlbum(key string, a report.Album) {
	fmt.Println()
	if a.Error != "" {
		fmt.Printf("  %s: %s\n\n", key, a.Error)
		return
	}
	fmt.Printf("  %s\n", key)
	fmt.Printf("  Source:  %s %dx%d %s (hash %s)\n",
		a.Source.Kind, a.Source.Width, a.Source.Height, a.Source.Path, a.Source.Hash)
	if a.Texture != nil {
		fmt.Printf("  Texture: %s %dx%d %s\n", a.Texture.Format, a.Texture.Width, a.Texture.Height, formatBytes(a.Texture.Size))
	}
	printPalette(a)
	fmt.Println()
}
