//go:build ignore

// gen_fixtures creates a small music library for the E2E smoke test of
// `coverhue batch`.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]

	// Two-colour cover, 600x600 JPEG: warm red dominant, steel blue second.
	album := filepath.Join(dir, "Artist", "Warm Album")
	writeJPEG(filepath.Join(album, "cover.jpg"), split(600, 600,
		color.NRGBA{R: 204, G: 68, B: 41, A: 255},
		color.NRGBA{R: 46, G: 117, B: 153, A: 255}))
	writeFile(filepath.Join(album, "01 Opening.flac"), nil)

	// Folder art with a smaller preferred file and a larger non-preferred one.
	album = filepath.Join(dir, "Artist", "Two Covers")
	writePNG(filepath.Join(album, "folder.png"), rainbow(200, 100))
	writePNG(filepath.Join(album, "scan-back.png"), rainbow(800, 400))

	// Greyscale art: no hue passes the saturation threshold.
	writePNG(filepath.Join(dir, "Mono", "front.png"), grey(300, 300))

	// Art in a subfolder only, found by the deep search.
	writePNG(filepath.Join(dir, "Deluxe", "scans", "booklet-01.png"), rainbow(320, 320))
	writeFile(filepath.Join(dir, "Deluxe", "01 Track.mp3"), nil)

	// Translucent cover; stays PNG even when jpeg is requested.
	writePNG(filepath.Join(dir, "Glass", "cover.png"), alphaGradient(256, 256))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 5 albums in %s\n", dir)
}

func split(w, h int, left, right color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := right
			if x < w*6/10 {
				c = left
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// rainbow paints vertical stripes of six hues, widest first.
func rainbow(w, h int) *image.NRGBA {
	stripes := []color.NRGBA{
		{R: 220, G: 40, B: 40, A: 255},
		{R: 230, G: 160, B: 30, A: 255},
		{R: 60, G: 180, B: 60, A: 255},
		{R: 40, G: 170, B: 200, A: 255},
		{R: 60, G: 60, B: 210, A: 255},
		{R: 180, G: 50, B: 190, A: 255},
	}
	// Stripe widths shrink so counts differ: 30%, 22%, 17%, 13%, 10%, 8%.
	bounds := []int{30, 52, 69, 82, 92, 100}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pct := x * 100 / w
			i := 0
			for pct >= bounds[i] {
				i++
			}
			img.SetNRGBA(x, y, stripes[i])
		}
	}
	return img
}

func grey(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(64 + (x+y)*128/(w+h))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(64 + x*191/w),
			})
		}
	}
	return img
}

func writeFile(path string, data []byte) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
		os.Exit(1)
	}
}

func writePNG(path string, img image.Image) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", path, err)
		os.Exit(1)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		fmt.Fprintf(os.Stderr, "encode %s: %v\n", path, err)
		os.Exit(1)
	}
}

func writeJPEG(path string, img image.Image) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", path, err)
		os.Exit(1)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		fmt.Fprintf(os.Stderr, "encode %s: %v\n", path, err)
		os.Exit(1)
	}
}
