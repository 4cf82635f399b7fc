package filter

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Gradient returns the derivatives of the field along rows (dy) and along
// columns (dx). Interior cells use central differences, border cells use
// one-sided differences, and a dimension of length 1 has zero derivative.
func Gradient(field mat.Matrix) (dy, dx *mat.Dense) {
	rows, cols := field.Dims()
	dy = mat.NewDense(rows, cols, nil)
	dx = mat.NewDense(rows, cols, nil)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dy.Set(r, c, diff(field, r, c, rows, true))
			dx.Set(r, c, diff(field, r, c, cols, false))
		}
	}
	return dy, dx
}

// diff computes the derivative at (r, c) along one axis of length n
func diff(f mat.Matrix, r, c, n int, alongRows bool) float64 {
	at := func(i int) float64 {
		if alongRows {
			return f.At(i, c)
		}
		return f.At(r, i)
	}
	i := c
	if alongRows {
		i = r
	}

	switch {
	case n < 2:
		return 0
	case i == 0:
		return at(1) - at(0)
	case i == n-1:
		return at(n-1) - at(n-2)
	default:
		return (at(i+1) - at(i-1)) / 2
	}
}

// Magnitude returns the per-cell Euclidean norm of (dy, dx)
func Magnitude(dy, dx mat.Matrix) *mat.Dense {
	rows, cols := dy.Dims()
	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(r, c int, _ float64) float64 {
		return math.Hypot(dy.At(r, c), dx.At(r, c))
	}, out)
	return out
}
