package translate

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
)

// AspectRatio pairs a provider-facing label with its numeric width/height.
type AspectRatio struct {
	Label string
	Value float64
}

// SupportedAspectRatios is the fixed set of output ratios the redraw
// endpoint accepts. Order matters: ties snap to the earlier entry.
var SupportedAspectRatios = []AspectRatio{
	{"1:1", 1.0},
	{"3:4", 3.0 / 4.0},
	{"4:3", 4.0 / 3.0},
	{"9:16", 9.0 / 16.0},
	{"16:9", 16.0 / 9.0},
}

// defaultAspectRatio is used when image dimensions cannot be determined.
// Scanned document pages are overwhelmingly portrait.
const defaultAspectRatio = "3:4"

// SnapAspectRatio returns the supported ratio label nearest to the given
// width/height ratio, minimizing absolute difference. Exact ties go to the
// first-listed ratio.
func SnapAspectRatio(ratio float64) string {
	best := SupportedAspectRatios[0]
	bestDiff := math.Abs(ratio - best.Value)
	for _, candidate := range SupportedAspectRatios[1:] {
		diff := math.Abs(ratio - candidate.Value)
		if diff < bestDiff {
			best = candidate
			bestDiff = diff
		}
	}
	return best.Label
}

// DetectAspectRatio decodes image dimensions and snaps them to a supported
// output ratio. Undecodable images fall back to the portrait default.
func DetectAspectRatio(img []byte) string {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return defaultAspectRatio
	}
	return SnapAspectRatio(float64(cfg.Width) / float64(cfg.Height))
}
