// Package palette picks a handful of visually distinct accent colours out
// of cover art and lets the user cycle through them.
//
// Extraction builds a hue histogram from a sparse pixel sample, drops rare
// hues, then greedily removes bins that look too similar to a more common
// one. The Navigator walks the survivors from most to least common.
package palette

import (
	"slices"

	"github.com/AnyUserName/coverhue/internal/pixel"
)

const epsilon = 1e-9

// Selection holds the thresholds used to filter and deduplicate bins.
type Selection struct {
	MinPercentage      float64 `json:"minPercentage"`
	MinSaturation      float64 `json:"minSaturation"`
	MinValue           float64 `json:"minValue"`
	MinHueSeparation   float64 `json:"minHueSeparation"`
	MinRgbSeparation   float64 `json:"minRgbSeparation"`
	MinValueSeparation float64 `json:"minValueSeparation"`
}

// DefaultSelection returns the stock thresholds.
func DefaultSelection() Selection {
	return Selection{
		MinPercentage:      0.02,
		MinSaturation:      0.1,
		MinValue:           0.25,
		MinHueSeparation:   25,
		MinRgbSeparation:   0.70,
		MinValueSeparation: 0.1,
	}
}

type accumulator struct {
	count uint
	s, v  float64
}

// Extract samples img on a grid sized for a circle of the given radius and
// returns the surviving candidate colours. An empty Histogram means no
// pixel passed even the relaxed filters.
func Extract(img *pixel.Image, radius float64, sel Selection) Histogram {
	if img.Empty() {
		return nil
	}

	hstep, vstep := 1, 1
	if radius > 0 {
		hstep = max(1, int(float64(img.Width)/(radius*2)))
		vstep = max(1, int(float64(img.Height)/(radius*2)))
	}

	minSaturation, minValue := sel.MinSaturation, sel.MinValue
	bins := sample(img, hstep, vstep, minSaturation, minValue)
	if len(bins) == 0 && (minSaturation > epsilon || minValue > epsilon) {
		minSaturation, minValue = 0, 0
		bins = sample(img, hstep, vstep, minSaturation, minValue)
	}
	if len(bins) == 0 {
		return nil
	}

	var maxCount uint
	for _, acc := range bins {
		maxCount = max(maxCount, acc.count)
	}
	minCount := uint(float64(maxCount) * sel.MinPercentage)

	candidates := make([]Bin, 0, len(bins))
	for hue, acc := range bins {
		if acc.count < minCount {
			continue
		}
		candidates = append(candidates, Bin{
			Count:      acc.count,
			Hue:        hue,
			Saturation: acc.s / float64(acc.count),
			Value:      acc.v / float64(acc.count),
		})
	}

	// Most common first; ties go to the higher hue.
	slices.SortFunc(candidates, func(a, b Bin) int { return compareBins(b, a) })

	valueOnly := minSaturation <= epsilon
	accepted := make([]Bin, 0, len(candidates))
	for _, c := range candidates {
		if distinct(accepted, c, sel, valueOnly) {
			accepted = append(accepted, c)
		}
	}

	// Monochrome art still gets a second colour to cycle to.
	if len(accepted) == 1 {
		variant := accepted[0]
		if variant.Value >= 0.5 {
			variant.Value = min(max(variant.Value/1.75, 0), 1)
		} else {
			variant.Value = min(max(variant.Value*1.75, 0), 1)
		}
		if variant.Count > 0 {
			variant.Count--
		}
		accepted = append(accepted, variant)
	}

	return NewHistogram(accepted)
}

func sample(img *pixel.Image, hstep, vstep int, minSaturation, minValue float64) map[float64]*accumulator {
	bins := make(map[float64]*accumulator)
	for x := 0; x < img.Width; x += hstep {
		for y := 0; y < img.Height; y += vstep {
			off := img.Offset(x, y)
			hsv := RGB8(img.Pix[off], img.Pix[off+1], img.Pix[off+2]).HSV()
			if hsv.S < minSaturation || hsv.V < minValue {
				continue
			}
			hue := roundHue(hsv.H)
			acc, ok := bins[hue]
			if !ok {
				acc = &accumulator{}
				bins[hue] = acc
			}
			acc.count++
			acc.s += hsv.S
			acc.v += hsv.V
		}
	}
	return bins
}

// distinct reports whether candidate is far enough from every accepted bin.
// A bin is a duplicate when it is close in both hue and RGB, or, once the
// saturation floor is zero, when its value alone is close.
func distinct(accepted []Bin, candidate Bin, sel Selection, valueOnly bool) bool {
	rgb := candidate.Color()
	for _, a := range accepted {
		near := HueDistance(candidate.Hue, a.Hue) < sel.MinHueSeparation &&
			rgb.Distance(a.Color()) < sel.MinRgbSeparation
		if near {
			return false
		}
		if valueOnly && abs(candidate.Value-a.Value) < sel.MinValueSeparation {
			return false
		}
	}
	return true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
