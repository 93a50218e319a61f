// Package palette assigns visually distinct, deterministic colors to label
// identities for overlay drawing.
package palette

import (
	"image/color"
	"math"
	"sort"
)

// Common overlay colors used by the figure assembler.
var (
	Crosshair  = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// goldenAngle spaces consecutive hues far apart so neighboring label ids do
// not receive near-identical colors.
const goldenAngle = 137.50776405003785

// Assign maps each distinct label in labelIDs to a color. The mapping is a
// pure function of the input set: labels are ordered ascending before hues
// are assigned, so repeated calls with the same set produce identical
// mappings, and no two labels within one call share a color.
func Assign(labelIDs []int32) map[int32]color.RGBA {
	sorted := make([]int32, len(labelIDs))
	copy(sorted, labelIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	assigned := make(map[int32]color.RGBA, len(sorted))
	used := make(map[color.RGBA]struct{}, len(sorted))
	for i, label := range sorted {
		if _, ok := assigned[label]; ok {
			// Duplicate input label, already colored.
			continue
		}
		hue := math.Mod(float64(i)*goldenAngle, 360)
		val := 0.95
		c := HSVToRGB(hue, 0.85, val)
		// Quantization to 8-bit channels can collide for large label sets;
		// walk the value down deterministically until the color is unique.
		for _, taken := used[c]; taken; _, taken = used[c] {
			val -= 0.02
			if val < 0.05 {
				val = 0.95
				hue = math.Mod(hue+1, 360)
			}
			c = HSVToRGB(hue, 0.85, val)
		}
		used[c] = struct{}{}
		assigned[label] = c
	}
	return assigned
}

// HSVToRGB converts a color from HSV (H in degrees 0-360, S and V in 0-1) to
// an opaque 8-bit RGBA value.
func HSVToRGB(h, s, v float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}
