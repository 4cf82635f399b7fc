// Package fieldutil holds the small geometric helpers shared by the spine
// and ridge extractors: bilinear field sampling and polyline resampling and
// simplification.
package fieldutil

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
)

// BilinearSample interpolates the field at the continuous position (x, y),
// where x runs along columns and y along rows. The position is clamped to
// the grid so the result is always defined.
func BilinearSample(field mat.Matrix, x, y float64) float64 {
	rows, cols := field.Dims()
	x = clamp(x, 0, float64(cols-1))
	y = clamp(y, 0, float64(rows-1))

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := min(x0+1, cols-1)
	y1 := min(y0+1, rows-1)
	fx := x - float64(x0)
	fy := y - float64(y0)

	top := field.At(y0, x0)*(1-fx) + field.At(y0, x1)*fx
	bottom := field.At(y1, x0)*(1-fx) + field.At(y1, x1)*fx
	return top*(1-fy) + bottom*fy
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// LiftPolyline extends each point with a Z value sampled from the depth
// field and multiplied by zScale
func LiftPolyline(points models.Polyline, depth mat.Matrix, zScale float64) []models.Point3 {
	out := make([]models.Point3, len(points))
	for i, p := range points {
		out[i] = models.Point3{
			X: p.X,
			Y: p.Y,
			Z: BilinearSample(depth, p.X, p.Y) * zScale,
		}
	}
	return out
}
