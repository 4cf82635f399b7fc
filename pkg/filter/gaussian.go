// Package filter provides the dense-grid kernels shared by the spine and
// ridge extractors: Gaussian smoothing, finite-difference gradients, the
// Euclidean distance transform, binary erosion and max-normalization.
//
// All functions take *mat.Dense fields with rows = image height and
// columns = image width, and return freshly allocated results.
package filter

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Truncate is the kernel half-width in standard deviations
const Truncate = 4.0

// gaussianKernel builds a normalized 1D Gaussian kernel of radius
// int(Truncate*sigma + 0.5)
func gaussianKernel(sigma float64) []float64 {
	radius := int(Truncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)

	sum := 0.0
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kernel[i+radius] = w
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflectIndex maps an out-of-range index back onto [0, n) by mirroring
// about the array edges (d c b a | a b c d | d c b a)
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i - 1
	}
	return i
}

// Gaussian smooths the field with an isotropic Gaussian of standard
// deviation sigma, using a separable kernel and reflected borders.
// A non-positive sigma returns an unmodified copy.
func Gaussian(field mat.Matrix, sigma float64) *mat.Dense {
	src := mat.DenseCopyOf(field)
	if sigma <= 0 {
		return src
	}

	rows, cols := src.Dims()
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	// Rows first (along x), then columns (along y)
	tmp := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * src.At(r, reflectIndex(c+k, cols))
			}
			tmp.Set(r, c, sum)
		}
	}

	out := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sum := 0.0
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * tmp.At(reflectIndex(r+k, rows), c)
			}
			out.Set(r, c, sum)
		}
	}

	return out
}
