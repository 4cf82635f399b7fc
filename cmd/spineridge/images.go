package main

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
)

// loadImage decodes a PNG or JPEG file
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("error decoding image %s: %w", path, err)
	}
	return img, nil
}

// luminance returns the Rec. 601 luma of a colour in [0,1]
func luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 0xffff
}

// maskFromImage marks pixels brighter than half intensity as foreground
func maskFromImage(img image.Image) *models.Mask {
	bounds := img.Bounds()
	mask := models.NewMask(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			mask.Set(y-bounds.Min.Y, x-bounds.Min.X, luminance(img.At(x, y)) > 0.5)
		}
	}
	return mask
}

// depthFromImage converts an image to a depth field in [0,1], resizing it
// with Catmull-Rom to width x height when the sizes differ
func depthFromImage(img image.Image, width, height int) *mat.Dense {
	bounds := img.Bounds()
	if bounds.Dx() != width || bounds.Dy() != height {
		resized := image.NewGray16(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Src, nil)
		img, bounds = resized, resized.Bounds()
	}

	depth := mat.NewDense(height, width, nil)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			depth.Set(y, x, luminance(img.At(bounds.Min.X+x, bounds.Min.Y+y)))
		}
	}
	return depth
}
