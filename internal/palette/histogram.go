package palette

import (
	"fmt"
	"slices"
)

// Bin accumulates every sampled pixel that rounds to the same hue.
type Bin struct {
	Count      uint    `json:"count"`
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Value      float64 `json:"value"`
}

// HSV returns the bin's mean colour.
func (b Bin) HSV() HSV {
	return HSV{H: b.Hue, S: b.Saturation, V: b.Value}
}

// Color returns the bin's mean colour in RGB.
func (b Bin) Color() RGB {
	return b.HSV().RGB()
}

func (b Bin) String() string {
	return fmt.Sprintf("hue %g, saturation %.3f, value %.3f with count of %d",
		b.Hue, b.Saturation, b.Value, b.Count)
}

// compareBins orders by count, then by hue.
func compareBins(a, b Bin) int {
	switch {
	case a.Count < b.Count:
		return -1
	case a.Count > b.Count:
		return 1
	case a.Hue < b.Hue:
		return -1
	case a.Hue > b.Hue:
		return 1
	default:
		return 0
	}
}

// Histogram is a set of bins sorted ascending by (count, hue). Rank 0 is
// the most common bin, i.e. the last element.
type Histogram []Bin

// NewHistogram copies and sorts bins.
func NewHistogram(bins []Bin) Histogram {
	h := slices.Clone(Histogram(bins))
	slices.SortFunc(h, compareBins)
	return h
}

// Rank returns the bin at position i of the descending order.
func (h Histogram) Rank(i int) Bin {
	return h[len(h)-1-i]
}

// Dominant returns the highest-count bin.
func (h Histogram) Dominant() (Bin, bool) {
	if len(h) == 0 {
		return Bin{}, false
	}
	return h.Rank(0), true
}

// Descending returns the bins from most to least common.
func (h Histogram) Descending() []Bin {
	out := slices.Clone([]Bin(h))
	slices.Reverse(out)
	return out
}
