package filter

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
)

// NormalizeMax divides the field in place by its maximum so that the largest
// value becomes 1. A field whose maximum is not positive is left as-is.
func NormalizeMax(field *mat.Dense) {
	peak := mat.Max(field)
	if peak > 0 && !math.IsInf(peak, 1) {
		field.Scale(1/peak, field)
	}
}

// ApplyMask zeroes every cell of the field outside the mask
func ApplyMask(field *mat.Dense, mask *models.Mask) {
	field.Apply(func(r, c int, v float64) float64 {
		if mask.At(r, c) {
			return v
		}
		return 0
	}, field)
}

// ArgMax returns the first cell, in row-major scan order, holding the
// largest finite value among cells for which valid returns true. A nil
// valid accepts every cell. The boolean is false when no cell qualifies.
func ArgMax(field mat.Matrix, valid func(r, c int) bool) (models.Cell, bool) {
	rows, cols := field.Dims()
	values := make([]float64, 0, rows*cols)
	cells := make([]models.Cell, 0, rows*cols)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if valid != nil && !valid(r, c) {
				continue
			}
			v := field.At(r, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			values = append(values, v)
			cells = append(cells, models.Cell{Row: r, Col: c})
		}
	}

	if len(values) == 0 {
		return models.Cell{}, false
	}
	// MaxIdx returns the first index of the maximum
	return cells[floats.MaxIdx(values)], true
}
