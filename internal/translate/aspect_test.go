package translate

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestSnapAspectRatio(t *testing.T) {
	t.Run("exact ratios snap to themselves", func(t *testing.T) {
		for _, r := range SupportedAspectRatios {
			if got := SnapAspectRatio(r.Value); got != r.Label {
				t.Errorf("SnapAspectRatio(%v) = %q, want %q", r.Value, got, r.Label)
			}
		}
	})

	t.Run("nearest match", func(t *testing.T) {
		tests := []struct {
			ratio float64
			want  string
		}{
			{0.70, "3:4"},  // slightly narrower than 3:4
			{1.05, "1:1"},  // near square
			{1.40, "4:3"},  // between 4:3 and 16:9, closer to 4:3
			{1.90, "16:9"}, // wide
			{0.50, "9:16"}, // tall
		}
		for _, tt := range tests {
			if got := SnapAspectRatio(tt.ratio); got != tt.want {
				t.Errorf("SnapAspectRatio(%v) = %q, want %q", tt.ratio, got, tt.want)
			}
		}
	})

	t.Run("exact tie goes to earlier entry", func(t *testing.T) {
		// Midpoint between 1:1 (1.0) and 3:4 (0.75) is 0.875; 1:1 is
		// listed first.
		if got := SnapAspectRatio(0.875); got != "1:1" {
			t.Errorf("SnapAspectRatio(0.875) = %q, want 1:1", got)
		}
	})
}

func TestDetectAspectRatio(t *testing.T) {
	encode := func(w, h int) []byte {
		var buf bytes.Buffer
		if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
			t.Fatalf("png encode: %v", err)
		}
		return buf.Bytes()
	}

	t.Run("portrait page", func(t *testing.T) {
		if got := DetectAspectRatio(encode(600, 800)); got != "3:4" {
			t.Errorf("DetectAspectRatio(600x800) = %q, want 3:4", got)
		}
	})

	t.Run("wide page", func(t *testing.T) {
		if got := DetectAspectRatio(encode(1920, 1080)); got != "16:9" {
			t.Errorf("DetectAspectRatio(1920x1080) = %q, want 16:9", got)
		}
	})

	t.Run("undecodable image falls back to portrait", func(t *testing.T) {
		if got := DetectAspectRatio([]byte("not an image")); got != defaultAspectRatio {
			t.Errorf("DetectAspectRatio(garbage) = %q, want %q", got, defaultAspectRatio)
		}
	})
}
