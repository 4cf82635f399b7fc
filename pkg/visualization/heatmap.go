// Package visualization renders extraction fields and curves as images for
// inspection: heat maps of medialness or curvature with the spine and ridge
// polylines drawn on top.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
)

// Background is the colour of pixels outside the mask
var Background = color.RGBA{R: 16, G: 16, B: 16, A: 255}

// ramp maps v in [0,1] onto a blue-cyan-yellow-red scale
func ramp(v float64) color.RGBA {
	v = math.Max(0, math.Min(1, v))
	var r, g, b float64
	switch {
	case v < 1.0/3:
		t := v * 3
		r, g, b = 0, t, 1
	case v < 2.0/3:
		t := (v - 1.0/3) * 3
		r, g, b = t, 1, 1-t
	default:
		t := (v - 2.0/3) * 3
		r, g, b = 1, 1-t, 0
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

// Heatmap renders a field as a colour image. Values are scaled by the
// field's maximum inside the mask; pixels outside the mask are Background.
// A nil mask renders every pixel.
func Heatmap(field mat.Matrix, mask *models.Mask) *image.RGBA {
	rows, cols := field.Dims()
	inside := func(r, c int) bool { return mask == nil || mask.At(r, c) }

	peak := 0.0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if v := field.At(r, c); inside(r, c) && v > peak && !math.IsInf(v, 1) {
				peak = v
			}
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if !inside(r, c) {
				img.SetRGBA(c, r, Background)
				continue
			}
			v := field.At(r, c)
			if peak > 0 {
				v /= peak
			}
			img.SetRGBA(c, r, ramp(v))
		}
	}
	return img
}

// Overlay draws each polyline onto img in col. Points are (x, y) pixel
// coordinates of img.
func Overlay(img draw.Image, curves []models.Polyline, col color.Color) {
	for _, curve := range curves {
		if len(curve) == 1 {
			img.Set(int(math.Round(curve[0].X)), int(math.Round(curve[0].Y)), col)
		}
		for i := 1; i < len(curve); i++ {
			drawSegment(img, curve[i-1], curve[i], col)
		}
	}
}

// drawSegment rasterizes a line with one sample per pixel of its longer axis
func drawSegment(img draw.Image, a, b models.Point, col color.Color) {
	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	if steps == 0 {
		img.Set(int(math.Round(a.X)), int(math.Round(a.Y)), col)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := a.X + t*(b.X-a.X)
		y := a.Y + t*(b.Y-a.Y)
		img.Set(int(math.Round(x)), int(math.Round(y)), col)
	}
}

// Scale resizes img by factor with Catmull-Rom resampling
func Scale(img image.Image, factor float64) (*image.RGBA, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("scale factor must be positive and finite, got %v", factor)
	}
	b := img.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*factor)))
	h := max(1, int(math.Round(float64(b.Dy())*factor)))

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)
	return scaled, nil
}

// Save writes img to filename, choosing JPEG for .jpg/.jpeg and PNG
// otherwise. Parent directories are created as needed.
func Save(img image.Image, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating image file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(file, img)
	}
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", filename, err)
	}
	return nil
}
