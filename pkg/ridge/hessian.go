// Package ridge detects surface creases in a depth field and turns them into
// polylines: Hessian principal-curvature detection with silhouette
// suppression, orientation-aware non-maximum suppression with hysteresis,
// optional Zhang-Suen thinning, and skeleton vectorization.
package ridge

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"spineridge/internal/models"
	"spineridge/pkg/filter"
)

// DetectOptions controls curvature detection
type DetectOptions struct {
	// Sigma is the Gaussian smoothing scale applied before differentiation
	Sigma float64 `yaml:"sigma"`

	// SilhouetteThresh scales the gradient cut-off separating surface from
	// occlusion silhouette
	SilhouetteThresh float64 `yaml:"silhouetteThresh"`

	// SilhouetteGain multiplies SilhouetteThresh; the cut-off is
	// SilhouetteGain*SilhouetteThresh*mean gradient magnitude in the mask
	SilhouetteGain float64 `yaml:"silhouetteGain"`

	// ErosionRadius keeps detection this many pixels inside the mask
	ErosionRadius int `yaml:"erosionRadius"`
}

// DefaultDetectOptions returns the standard detection settings. The
// silhouette gain is empirical and worth tuning against real data.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		Sigma:            1.0,
		SilhouetteThresh: 0.5,
		SilhouetteGain:   5,
		ErosionRadius:    2,
	}
}

// hessian holds the second derivatives of a smoothed field
type hessian struct {
	xx, xy, yy *mat.Dense
}

// computeHessian differentiates the field twice with finite differences
func computeHessian(smoothed mat.Matrix) hessian {
	gy, gx := filter.Gradient(smoothed)
	hxy, hxx := filter.Gradient(gx)
	hyy, _ := filter.Gradient(gy)
	return hessian{xx: hxx, xy: hxy, yy: hyy}
}

// principal returns the larger-magnitude eigenvalue of the symmetric 2x2
// matrix [[xx, xy], [xy, yy]] and the principal-direction angle in [0, π)
func principal(xx, xy, yy float64) (dominant, angle float64) {
	root := math.Sqrt((xx-yy)*(xx-yy) + 4*xy*xy)
	l1 := (xx + yy + root) / 2
	l2 := (xx + yy - root) / 2

	dominant = l1
	if math.Abs(l2) > math.Abs(l1) {
		dominant = l2
	}

	angle = 0.5 * math.Atan2(2*xy, xx-yy)
	if angle < 0 {
		angle += math.Pi
	}
	if angle >= math.Pi {
		angle -= math.Pi
	}
	return dominant, angle
}

// Detect computes the principal-curvature strength map, normalized to
// [0,1], and the ridge-normal orientation map of a depth field.
//
// Depth is inverted first so near surfaces form valleys. Strength is zeroed
// outside the mask eroded by ErosionRadius and wherever the local gradient is
// steep enough to belong to the occlusion silhouette rather than the surface.
func Detect(depth mat.Matrix, mask *models.Mask, opts DetectOptions) (strength, orientation *mat.Dense) {
	rows, cols := depth.Dims()

	inverted := mat.NewDense(rows, cols, nil)
	inverted.Apply(func(r, c int, v float64) float64 { return 1 - v }, depth)
	smoothed := filter.Gaussian(inverted, opts.Sigma)

	h := computeHessian(smoothed)
	strength = mat.NewDense(rows, cols, nil)
	orientation = mat.NewDense(rows, cols, nil)
	forEachRowBand(rows, func(startRow, endRow int) {
		for r := startRow; r < endRow; r++ {
			for c := 0; c < cols; c++ {
				dominant, angle := principal(h.xx.At(r, c), h.xy.At(r, c), h.yy.At(r, c))
				strength.Set(r, c, math.Abs(dominant))
				orientation.Set(r, c, angle)
			}
		}
	})

	surface := surfaceMask(smoothed, mask, opts)
	interior := filter.Erode(mask, opts.ErosionRadius)
	strength.Apply(func(r, c int, v float64) float64 {
		if surface.At(r, c) && interior.At(r, c) {
			return v
		}
		return 0
	}, strength)

	filter.NormalizeMax(strength)
	return strength, orientation
}

// surfaceMask marks cells whose gradient magnitude stays below the
// silhouette cut-off. An empty mask yields an all-surface result.
func surfaceMask(smoothed mat.Matrix, mask *models.Mask, opts DetectOptions) *models.Mask {
	rows, cols := smoothed.Dims()
	magnitude := filter.Magnitude(filter.Gradient(smoothed))

	var inside []float64
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if mask.At(r, c) {
				inside = append(inside, magnitude.At(r, c))
			}
		}
	}

	surface := models.NewMask(cols, rows)
	if len(inside) == 0 {
		for i := range surface.Data {
			surface.Data[i] = true
		}
		return surface
	}

	cutoff := opts.SilhouetteGain * opts.SilhouetteThresh * stat.Mean(inside, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			surface.Set(r, c, magnitude.At(r, c) < cutoff)
		}
	}
	return surface
}
