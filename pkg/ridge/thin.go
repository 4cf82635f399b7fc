package ridge

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
)

// Skeletonize selects the optional final thinning stage
type Skeletonize string

const (
	// SkeletonNone keeps the hysteresis output as is
	SkeletonNone Skeletonize = "none"
	// SkeletonZhangSuen thins the hysteresis output to one pixel
	SkeletonZhangSuen Skeletonize = "zhang-suen"
)

// ThinOptions controls non-maximum suppression and hysteresis
type ThinOptions struct {
	LowThreshold  float64     `yaml:"lowThreshold"`
	HighThreshold float64     `yaml:"highThreshold"`
	Skeletonize   Skeletonize `yaml:"skeletonize"`
}

// DefaultThinOptions returns the standard thresholds with Zhang-Suen thinning
func DefaultThinOptions() ThinOptions {
	return ThinOptions{
		LowThreshold:  0.1,
		HighThreshold: 0.3,
		Skeletonize:   SkeletonZhangSuen,
	}
}

// acrossOffsets returns the two neighbour offsets (dr, dc) that lie across a
// ridge whose normal angle is theta radians
func acrossOffsets(theta float64) (dr1, dc1, dr2, dc2 int) {
	deg := math.Mod(theta*180/math.Pi, 180)
	if deg < 0 {
		deg += 180
	}

	switch {
	case deg < 22.5 || deg >= 157.5:
		return 0, -1, 0, 1
	case deg < 67.5:
		return -1, -1, 1, 1
	case deg < 112.5:
		return -1, 0, 1, 0
	default:
		return -1, 1, 1, -1
	}
}

// SuppressNonMaxima keeps a pixel's strength only where it is a local
// maximum across the ridge. The orientation is quantized into four bins and
// the pixel must be >= the first neighbour and strictly > the second, so an
// exact plateau yields a single line rather than two. Neighbours off the
// grid count as zero.
func SuppressNonMaxima(strength, orientation mat.Matrix) *mat.Dense {
	rows, cols := strength.Dims()
	at := func(r, c int) float64 {
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return 0
		}
		return strength.At(r, c)
	}

	out := mat.NewDense(rows, cols, nil)
	forEachRowBand(rows, func(startRow, endRow int) {
		for r := startRow; r < endRow; r++ {
			for c := 0; c < cols; c++ {
				v := strength.At(r, c)
				if v <= 0 {
					continue
				}
				dr1, dc1, dr2, dc2 := acrossOffsets(orientation.At(r, c))
				if v >= at(r+dr1, c+dc1) && v > at(r+dr2, c+dc2) {
					out.Set(r, c, v)
				}
			}
		}
	})
	return out
}

// Hysteresis marks pixels at or above high as strong, then floods through
// 8-connected weak pixels in [low, high). A low threshold at or above high
// disables promotion. Pixels with zero strength are never weak.
func Hysteresis(strength mat.Matrix, low, high float64) *models.Mask {
	rows, cols := strength.Dims()
	if low > high {
		low = high
	}

	skeleton := models.NewMask(cols, rows)
	var queue []models.Cell
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if v := strength.At(r, c); v > 0 && v >= high {
				skeleton.Set(r, c, true)
				queue = append(queue, models.Cell{Row: r, Col: c})
			}
		}
	}

	weak := func(r, c int) bool {
		v := strength.At(r, c)
		return v > 0 && v >= low && v < high
	}

	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				r, c := cell.Row+dr, cell.Col+dc
				if !skeleton.InBounds(r, c) || skeleton.At(r, c) || !weak(r, c) {
					continue
				}
				skeleton.Set(r, c, true)
				queue = append(queue, models.Cell{Row: r, Col: c})
			}
		}
	}

	return skeleton
}

// Thin runs non-maximum suppression, hysteresis and the selected
// skeletonization on a curvature map
func Thin(strength, orientation mat.Matrix, opts ThinOptions) *models.Mask {
	suppressed := SuppressNonMaxima(strength, orientation)
	skeleton := Hysteresis(suppressed, opts.LowThreshold, opts.HighThreshold)
	if opts.Skeletonize == SkeletonZhangSuen {
		skeleton = ZhangSuen(skeleton)
	}
	return skeleton
}
