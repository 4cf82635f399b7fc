package geodesic

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
)

func finiteAt(field mat.Matrix, cell models.Cell) bool {
	rows, cols := field.Dims()
	if cell.Row < 0 || cell.Row >= rows || cell.Col < 0 || cell.Col >= cols {
		return false
	}
	v := field.At(cell.Row, cell.Col)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// relocateEndpoint moves an endpoint that sits too close to the silhouette,
// or off the reachable region, to a nearby interior cell.
//
// The window around the endpoint grows one ring at a time up to
// SearchRadius; the first radius holding any cell at least MinBoundaryDist
// from the boundary with a finite arrival time wins, choosing the candidate
// with the largest T2 + BoundaryWeight*distance. If no interior cell exists,
// an endpoint with a finite arrival time is kept as is; otherwise the
// nearest finite cell in the largest window replaces it.
func relocateEndpoint(p models.Cell, distance, arrival mat.Matrix, opts Options) models.Cell {
	if finiteAt(arrival, p) && distance.At(p.Row, p.Col) >= opts.MinBoundaryDist {
		return p
	}

	rows, cols := arrival.Dims()
	window := func(radius int, visit func(models.Cell)) {
		for r := max(0, p.Row-radius); r <= min(rows-1, p.Row+radius); r++ {
			for c := max(0, p.Col-radius); c <= min(cols-1, p.Col+radius); c++ {
				visit(models.Cell{Row: r, Col: c})
			}
		}
	}

	for radius := 1; radius <= opts.SearchRadius; radius++ {
		best, bestScore, found := p, math.Inf(-1), false
		window(radius, func(cell models.Cell) {
			if !finiteAt(arrival, cell) {
				return
			}
			d := distance.At(cell.Row, cell.Col)
			if d < opts.MinBoundaryDist {
				return
			}
			score := arrival.At(cell.Row, cell.Col) + opts.BoundaryWeight*d
			if score > bestScore {
				best, bestScore, found = cell, score, true
			}
		})
		if found {
			return best
		}
	}

	if finiteAt(arrival, p) {
		return p
	}

	best, bestDist := p, math.Inf(1)
	window(opts.SearchRadius, func(cell models.Cell) {
		if !finiteAt(arrival, cell) {
			return
		}
		d := math.Hypot(float64(cell.Row-p.Row), float64(cell.Col-p.Col))
		if d < bestDist {
			best, bestDist = cell, d
		}
	})
	return best
}
