// Package medialness fuses a mask's distance transform with a smoothed depth
// field into the medialness field and the eikonal speed map used to trace
// the spine.
package medialness

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
	"spineridge/pkg/filter"
)

// Options controls the field construction
type Options struct {
	// SigmaDepth is the Gaussian standard deviation applied to depth
	SigmaDepth float64 `yaml:"sigmaDepth"`

	// Gamma sharpens the speed map: speed = exp(Gamma * medialness)
	Gamma float64 `yaml:"gamma"`
}

// DefaultOptions returns the standard smoothing and sharpness
func DefaultOptions() Options {
	return Options{
		SigmaDepth: 2.0,
		Gamma:      10.0,
	}
}

// Field holds the fused medialness field and its derived speed map
type Field struct {
	// Medialness is 0.5*normalized EDT + 0.5*normalized smoothed depth
	Medialness *mat.Dense

	// Speed is exp(Gamma*Medialness) inside the mask and 0 elsewhere
	Speed *mat.Dense

	// Valid marks the cells the eikonal solver may visit
	Valid *models.Mask

	// Distance is the plain Euclidean distance transform of the mask
	Distance *mat.Dense
}

// Build computes the medialness field and speed map for a mask and a depth
// field of the same shape. Depth is conventionally in [0,1], higher values
// closer to the camera.
func Build(mask *models.Mask, depth mat.Matrix, opts Options) *Field {
	smoothed := filter.Gaussian(depth, opts.SigmaDepth)

	distance := filter.DistanceTransform(mask)
	edtNorm := mat.DenseCopyOf(distance)
	filter.NormalizeMax(edtNorm)
	filter.NormalizeMax(smoothed)

	rows, cols := edtNorm.Dims()
	medial := mat.NewDense(rows, cols, nil)
	medial.Add(edtNorm, smoothed)
	medial.Scale(0.5, medial)

	speed := mat.NewDense(rows, cols, nil)
	speed.Apply(func(_, _ int, v float64) float64 {
		return math.Exp(opts.Gamma * v)
	}, medial)
	filter.ApplyMask(speed, mask)

	return &Field{
		Medialness: medial,
		Speed:      speed,
		Valid:      mask.Clone(),
		Distance:   distance,
	}
}
