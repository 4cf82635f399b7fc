package geodesic

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"spineridge/internal/models"
)

// flatGradient is the gradient norm below which descent has no direction
const flatGradient = 1e-12

// cellOf rounds a continuous (x=col, y=row) position to its grid cell
func cellOf(p r2.Vec) models.Cell {
	return models.Cell{Row: int(math.Round(p.Y)), Col: int(math.Round(p.X))}
}

// arrivalGradient returns dT/dx and dT/dy at a cell using central
// differences. A neighbour that is off the grid or not finite takes the
// cell's own value, so the gradient never points out of the valid region.
func arrivalGradient(arrival mat.Matrix, cell models.Cell) r2.Vec {
	here := arrival.At(cell.Row, cell.Col)
	at := func(r, c int) float64 {
		n := models.Cell{Row: r, Col: c}
		if !finiteAt(arrival, n) {
			return here
		}
		return arrival.At(r, c)
	}

	return r2.Vec{
		X: (at(cell.Row, cell.Col+1) - at(cell.Row, cell.Col-1)) / 2,
		Y: (at(cell.Row+1, cell.Col) - at(cell.Row-1, cell.Col)) / 2,
	}
}

// backtrack descends the arrival-time field from the tail until it reaches
// the tip. Each accepted position is appended to the path, starting with the
// tail itself.
func backtrack(tail, tip models.Cell, arrival mat.Matrix, valid *models.Mask, opts Options) (models.Polyline, int, StopReason) {
	pos := r2.Vec{X: float64(tail.Col), Y: float64(tail.Row)}
	target := r2.Vec{X: float64(tip.Col), Y: float64(tip.Row)}
	path := models.Polyline{{X: pos.X, Y: pos.Y}}

	// Relative threshold: arrival times scale with object size
	threshold := opts.StopFraction * arrival.At(tail.Row, tail.Col)

	landable := func(p r2.Vec) bool {
		cell := cellOf(p)
		return valid.At(cell.Row, cell.Col) && finiteAt(arrival, cell)
	}

	lengths := append([]float64{opts.StepSize}, opts.RetryFractions...)
	try := func(dir r2.Vec) (r2.Vec, bool) {
		for _, l := range lengths {
			next := r2.Add(pos, r2.Scale(l, dir))
			if landable(next) {
				return next, true
			}
		}
		return pos, false
	}

	maxSteps := valid.Size()
	for steps := 0; steps < maxSteps; steps++ {
		cell := cellOf(pos)
		if arrival.At(cell.Row, cell.Col) < threshold {
			return path, steps, StopThreshold
		}
		if r2.Norm(r2.Sub(target, pos)) < opts.TipTolerance {
			return path, steps, StopTip
		}

		next, ok := pos, false
		grad := arrivalGradient(arrival, cell)
		if norm := r2.Norm(grad); norm > flatGradient {
			next, ok = try(r2.Scale(-1/norm, grad))
		}
		if toTip := r2.Sub(target, pos); !ok && r2.Norm(toTip) > 0 {
			next, ok = try(r2.Unit(toTip))
		}
		if !ok {
			return path, steps, StopBlocked
		}

		pos = next
		path = append(path, models.Point{X: pos.X, Y: pos.Y})
	}

	return path, maxSteps, StopStepCap
}
