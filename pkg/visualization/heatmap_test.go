package visualization

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
)

func TestRamp(t *testing.T) {
	tests := []struct {
		v    float64
		want color.RGBA
	}{
		{0, color.RGBA{0, 0, 255, 255}},
		{-1, color.RGBA{0, 0, 255, 255}},
		{1, color.RGBA{255, 0, 0, 255}},
		{2, color.RGBA{255, 0, 0, 255}},
		{0.5, color.RGBA{127, 255, 127, 255}},
	}
	for _, tt := range tests {
		if got := ramp(tt.v); got != tt.want {
			t.Errorf("ramp(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestHeatmap(t *testing.T) {
	field := mat.NewDense(3, 4, []float64{
		0, 1, 2, 9,
		0, 4, 4, 9,
		0, 0, 0, 9,
	})
	mask := models.NewMask(4, 3)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			mask.Set(r, c, true)
		}
	}

	img := Heatmap(field, mask)
	if img.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("Unexpected bounds %v", img.Bounds())
	}
	if got := img.RGBAAt(3, 0); got != Background {
		t.Errorf("Pixel outside the mask = %v, want background", got)
	}
	// The peak is measured inside the mask only
	if got := img.RGBAAt(1, 1); got != ramp(1) {
		t.Errorf("Masked peak = %v, want %v", got, ramp(1))
	}
	if got := img.RGBAAt(0, 0); got != ramp(0) {
		t.Errorf("Zero value = %v, want %v", got, ramp(0))
	}

	all := Heatmap(field, nil)
	if got := all.RGBAAt(3, 2); got != ramp(1) {
		t.Errorf("Unmasked peak = %v, want %v", got, ramp(1))
	}
}

func TestOverlay(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	white := color.RGBA{255, 255, 255, 255}

	Overlay(img, []models.Polyline{
		{{X: 0, Y: 0}, {X: 7, Y: 7}},
		{{X: 6, Y: 1}},
	}, white)

	for i := 0; i < 8; i++ {
		if img.RGBAAt(i, i) != white {
			t.Errorf("Diagonal pixel (%d,%d) not drawn", i, i)
		}
	}
	if img.RGBAAt(6, 1) != white {
		t.Errorf("Single-point curve not drawn")
	}
	if img.RGBAAt(0, 7) == white {
		t.Errorf("Unexpected pixel drawn off the curves")
	}
}

func TestScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 6))
	scaled, err := Scale(src, 2.5)
	if err != nil {
		t.Fatalf("Scale failed: %v", err)
	}
	if scaled.Bounds().Dx() != 25 || scaled.Bounds().Dy() != 15 {
		t.Errorf("Unexpected scaled size %v", scaled.Bounds())
	}

	for _, factor := range []float64{0, -1} {
		if _, err := Scale(src, factor); err == nil {
			t.Errorf("Expected an error for factor %v", factor)
		}
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	img := Heatmap(mat.NewDense(5, 7, nil), nil)

	for _, name := range []string{"heat.png", "sub/heat.jpg"} {
		path := filepath.Join(dir, name)
		if err := Save(img, path); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("Failed to open %s: %v", name, err)
		}
		decoded, format, err := image.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("Failed to decode %s: %v", name, err)
		}
		if decoded.Bounds().Dx() != 7 || decoded.Bounds().Dy() != 5 {
			t.Errorf("%s (%s) has size %v", name, format, decoded.Bounds())
		}
	}
}
