package datasource

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// paletteHueSpan stops short of wrapping back to red, like a rainbow colormap.
const paletteHueSpan = 300.0

// Palette assigns each distinct name a fully saturated colour, spreading hues
// evenly in first-seen order.
func Palette(names []string) map[string]string {
	var uniq []string
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			uniq = append(uniq, n)
		}
	}

	out := make(map[string]string, len(uniq))
	for i, n := range uniq {
		hue := 0.0
		if len(uniq) > 1 {
			hue = paletteHueSpan * float64(i) / float64(len(uniq)-1)
		}
		out[n] = colorful.Hsv(hue, 1, 1).Hex()
	}
	return out
}

// ArcShadow is the second colour of every arc gradient.
const ArcShadow = "#000000"
