package transform

// Slider ranges of the viewer's adjustment controls.
const (
	ContrastSliderMin     = 0
	ContrastSliderMax     = 200
	ContrastSliderNeutral = 100

	BrightnessSliderMin     = -100
	BrightnessSliderMax     = 100
	BrightnessSliderNeutral = 0
)

// ContrastFactor maps a contrast slider position to a multiplicative factor;
// the neutral position yields exactly 1.
func ContrastFactor(slider int) float64 {
	return float64(clampInt(slider, ContrastSliderMin, ContrastSliderMax)) / ContrastSliderNeutral
}

// BrightnessOffset maps a brightness slider position to an additive offset in
// sample units. 16-bit buffers get the offset scaled by 257 so a slider step
// moves both depths by the same fraction of full scale.
func BrightnessOffset(slider, bitDepth int) int {
	v := clampInt(slider, BrightnessSliderMin, BrightnessSliderMax)
	if bitDepth == 16 {
		return v * 257
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
