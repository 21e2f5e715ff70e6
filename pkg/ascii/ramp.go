package ascii

import "math"

// Brightness is the mean of the three color channels. Alpha is ignored.
func Brightness(r, g, b uint8) float64 {
	return (float64(r) + float64(g) + float64(b)) / 3
}

// SymbolIndex maps a 0–255 brightness to a ramp index: black selects the
// last (densest) glyph, white the first. Out-of-range brightness is clamped.
func SymbolIndex(brightness float64, rampLen int) int {
	if rampLen <= 1 {
		return 0
	}
	brightness = math.Max(0, math.Min(255, brightness))
	return int(math.Round((1 - brightness/255) * float64(rampLen-1)))
}
