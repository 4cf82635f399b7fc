package pipeline

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"spineridge/internal/models"
	"spineridge/pkg/fieldutil"
)

// Metrics summarizes one extraction run. A caller that wants to detect a
// degenerate result inspects SpinePoints and RidgeCount.
type Metrics struct {
	// SpineLength is the arc length of the raw backtracked spine in pixels
	SpineLength float64 `yaml:"spineLength"`

	// SpinePoints is the number of points in the raw backtracked spine.
	// A value of 1 means no meaningful medial axis was found.
	SpinePoints int `yaml:"spinePoints"`

	// RidgeCount is the number of vectorized ridge curves
	RidgeCount int `yaml:"ridgeCount"`

	// RidgeLength is the summed arc length of all ridge curves
	RidgeLength float64 `yaml:"ridgeLength"`

	// MeanMedialness is the average medialness over mask pixels
	MeanMedialness float64 `yaml:"meanMedialness"`

	// MeanCurvature is the average normalized ridge strength over mask pixels
	MeanCurvature float64 `yaml:"meanCurvature"`
}

// maskedMean averages a field over the foreground of a mask. It returns 0
// for an empty mask.
func maskedMean(field mat.Matrix, mask *models.Mask) float64 {
	values := make([]float64, 0, mask.Count())
	for r := 0; r < mask.Height; r++ {
		for c := 0; c < mask.Width; c++ {
			if mask.At(r, c) {
				values = append(values, field.At(r, c))
			}
		}
	}
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

func calculateMetrics(mask *models.Mask, spine *SpineResult, ridges *RidgeResult) Metrics {
	m := Metrics{
		SpineLength:    fieldutil.ArcLength(spine.Spine.Path),
		SpinePoints:    len(spine.Spine.Path),
		RidgeCount:     len(ridges.Curves),
		MeanMedialness: maskedMean(spine.Field.Medialness, mask),
		MeanCurvature:  maskedMean(ridges.Strength, mask),
	}
	for _, curve := range ridges.Curves {
		m.RidgeLength += fieldutil.ArcLength(curve)
	}
	return m
}
