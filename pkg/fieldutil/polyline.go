package fieldutil

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"spineridge/internal/models"
)

// degenerateLength is the total arc length below which a polyline is
// treated as a single point
const degenerateLength = 1e-9

func vec(p models.Point) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// ArcLength returns the summed Euclidean length of the polyline segments
func ArcLength(points models.Polyline) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += r2.Norm(r2.Sub(vec(points[i]), vec(points[i-1])))
	}
	return total
}

// ResamplePolyline returns n points evenly spaced by arc length along the
// polyline, interpolating linearly between the original vertices. The first
// and last samples coincide with the polyline ends.
//
// A polyline of (near) zero length yields its first point repeated n times.
func ResamplePolyline(points models.Polyline, n int) models.Polyline {
	if n <= 0 || len(points) == 0 {
		return nil
	}

	cumulative := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		cumulative[i] = cumulative[i-1] + r2.Norm(r2.Sub(vec(points[i]), vec(points[i-1])))
	}
	total := cumulative[len(cumulative)-1]

	out := make(models.Polyline, n)
	if total < degenerateLength || n == 1 {
		for i := range out {
			out[i] = points[0]
		}
		return out
	}

	for i := 0; i < n; i++ {
		target := total * float64(i) / float64(n-1)

		// First vertex whose cumulative length reaches the target
		j := sort.SearchFloat64s(cumulative, target)
		switch {
		case j <= 0:
			out[i] = points[0]
		case j >= len(points):
			out[i] = points[len(points)-1]
		default:
			seg := cumulative[j] - cumulative[j-1]
			t := 0.0
			if seg > 0 {
				t = (target - cumulative[j-1]) / seg
			}
			p := r2.Add(vec(points[j-1]), r2.Scale(t, r2.Sub(vec(points[j]), vec(points[j-1]))))
			out[i] = models.Point{X: p.X, Y: p.Y}
		}
	}
	out[n-1] = points[len(points)-1]

	return out
}

// SimplifyPolyline reduces the polyline with the Ramer-Douglas-Peucker
// algorithm. The tolerance is relative: epsilon times the total arc length.
// A non-positive epsilon or fewer than three points returns the input.
func SimplifyPolyline(points models.Polyline, epsilon float64) models.Polyline {
	if epsilon <= 0 || len(points) < 3 {
		return points
	}
	tolerance := epsilon * ArcLength(points)
	return simplifyRDP(points, tolerance)
}

func simplifyRDP(points models.Polyline, tolerance float64) models.Polyline {
	if len(points) < 3 {
		return append(models.Polyline(nil), points...)
	}

	dmax := 0.0
	index := 0
	end := len(points) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(points[i], points[0], points[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	if dmax <= tolerance {
		return models.Polyline{points[0], points[end]}
	}

	left := simplifyRDP(points[:index+1], tolerance)
	right := simplifyRDP(points[index:], tolerance)
	return append(left[:len(left)-1], right...)
}

// perpendicularDistance measures how far pt lies from the line through
// lineStart and lineEnd, or from lineStart when the two coincide
func perpendicularDistance(pt, lineStart, lineEnd models.Point) float64 {
	d := r2.Sub(vec(lineEnd), vec(lineStart))
	mag := r2.Norm(d)
	rel := r2.Sub(vec(pt), vec(lineStart))

	if mag == 0 {
		return r2.Norm(rel)
	}
	return math.Abs(r2.Cross(d, rel)) / mag
}
