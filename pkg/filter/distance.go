package filter

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
)

// edtInf stands in for an infinite squared distance
const edtInf = 1e20

// DistanceTransform computes the exact Euclidean distance from every
// foreground pixel to the nearest background pixel centre. Background pixels
// are 0. The image border is not treated as background; a mask with no
// background pixel at all measures distance to the frame just outside the
// grid instead.
//
// The transform is separable: a 1D squared-distance pass down each column
// followed by a lower-envelope-of-parabolas pass along each row
// (Felzenszwalb & Huttenlocher).
func DistanceTransform(mask *models.Mask) *mat.Dense {
	rows, cols := mask.Height, mask.Width
	out := mat.NewDense(rows, cols, nil)

	if mask.Count() == mask.Size() {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				d := math.Min(math.Min(float64(r+1), float64(c+1)),
					math.Min(float64(rows-r), float64(cols-c)))
				out.Set(r, c, d)
			}
		}
		return out
	}

	n := rows
	if cols > n {
		n = cols
	}
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	// Columns
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			if mask.At(r, c) {
				f[r] = edtInf
			} else {
				f[r] = 0
			}
		}
		squaredDistance1D(f[:rows], d[:rows], v, z)
		for r := 0; r < rows; r++ {
			out.Set(r, c, d[r])
		}
	}

	// Rows
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			f[c] = out.At(r, c)
		}
		squaredDistance1D(f[:cols], d[:cols], v, z)
		for c := 0; c < cols; c++ {
			out.Set(r, c, math.Sqrt(d[c]))
		}
	}

	return out
}

// squaredDistance1D computes d[q] = min_p (q-p)^2 + f[p] using the lower
// envelope of parabolas rooted at each sample
func squaredDistance1D(f, d []float64, v []int, z []float64) {
	n := len(f)
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	intersect := func(q, p int) float64 {
		return ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*q-2*p)
	}

	for q := 1; q < n; q++ {
		s := intersect(q, v[k])
		for s <= z[k] {
			k--
			s = intersect(q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		p := v[k]
		d[q] = float64((q-p)*(q-p)) + f[p]
	}
}
