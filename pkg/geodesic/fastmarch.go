package geodesic

import (
	"container/heap"
	"math"

	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
)

// Cell states during a sweep
const (
	far = iota
	trial
	known
)

// frontier is the min-heap of trial cells ordered by travel time. heapIndex
// tracks each cell's heap position so a lowered arrival time can be fixed in
// place instead of pushing duplicates.
type frontier struct {
	times     []float64
	heapIndex []int
	cells     []int
}

func (h frontier) Len() int           { return len(h.cells) }
func (h frontier) Less(i, j int) bool { return h.times[h.cells[i]] < h.times[h.cells[j]] }

func (h frontier) Swap(i, j int) {
	h.cells[i], h.cells[j] = h.cells[j], h.cells[i]
	h.heapIndex[h.cells[i]] = i
	h.heapIndex[h.cells[j]] = j
}

func (h *frontier) Push(x any) {
	idx := x.(int)
	h.heapIndex[idx] = len(h.cells)
	h.cells = append(h.cells, idx)
}

func (h *frontier) Pop() any {
	n := len(h.cells) - 1
	idx := h.cells[n]
	h.cells = h.cells[:n]
	h.heapIndex[idx] = -1
	return idx
}

// TravelTime solves the eikonal equation |grad T| = 1/speed on the valid
// cells with T(seed) = 0, using first-order upwind fast marching over the
// 4-neighbourhood. Cells outside valid, cells with non-positive speed and
// cells the front never reaches are +Inf.
func TravelTime(speed mat.Matrix, valid *models.Mask, seed models.Cell) *mat.Dense {
	rows, cols := speed.Dims()
	n := rows * cols

	times := make([]float64, n)
	state := make([]uint8, n)
	for i := range times {
		times[i] = math.Inf(1)
	}

	out := mat.NewDense(rows, cols, times)

	passable := func(r, c int) bool {
		return valid.At(r, c) && speed.At(r, c) > 0
	}
	if !passable(seed.Row, seed.Col) {
		return out
	}

	band := &frontier{
		times:     times,
		heapIndex: make([]int, n),
	}

	start := seed.Row*cols + seed.Col
	times[start] = 0
	state[start] = trial
	heap.Push(band, start)

	offsets := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

	for band.Len() > 0 {
		current := heap.Pop(band).(int)
		state[current] = known
		r, c := current/cols, current%cols

		for _, off := range offsets {
			nr, nc := r+off[0], c+off[1]
			if !passable(nr, nc) {
				continue
			}
			idx := nr*cols + nc
			if state[idx] == known {
				continue
			}

			t := solveEikonal(times, state, nr, nc, rows, cols, speed.At(nr, nc))
			if t >= times[idx] {
				continue
			}
			times[idx] = t

			if state[idx] == trial {
				heap.Fix(band, band.heapIndex[idx])
			} else {
				state[idx] = trial
				heap.Push(band, idx)
			}
		}
	}

	return out
}

// solveEikonal computes the upwind update for cell (r, c) from its known
// neighbours
func solveEikonal(times []float64, state []uint8, r, c, rows, cols int, speed float64) float64 {
	knownAt := func(rr, cc int) float64 {
		if rr < 0 || rr >= rows || cc < 0 || cc >= cols {
			return math.Inf(1)
		}
		idx := rr*cols + cc
		if state[idx] != known {
			return math.Inf(1)
		}
		return times[idx]
	}

	a := math.Min(knownAt(r, c-1), knownAt(r, c+1))
	b := math.Min(knownAt(r-1, c), knownAt(r+1, c))
	h := 1 / speed

	switch {
	case math.IsInf(a, 1) && math.IsInf(b, 1):
		return math.Inf(1)
	case math.IsInf(a, 1):
		return b + h
	case math.IsInf(b, 1):
		return a + h
	}

	// Both axes contribute unless the wave is effectively one-sided
	if math.Abs(a-b) >= h {
		return math.Min(a, b) + h
	}
	return (a + b + math.Sqrt(2*h*h-(a-b)*(a-b))) / 2
}
