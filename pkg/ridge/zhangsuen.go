package ridge

import "spineridge/internal/models"

// ring lists the 8 neighbours clockwise starting north, as (dr, dc)
var ring = [8][2]int{
	{-1, 0}, {-1, 1}, {0, 1}, {1, 1},
	{1, 0}, {1, -1}, {0, -1}, {-1, -1},
}

// neighbourhood samples the ring around (r, c); off-grid pixels are empty
func neighbourhood(m *models.Mask, r, c int) [8]bool {
	var n [8]bool
	for i, d := range ring {
		n[i] = m.At(r+d[0], c+d[1])
	}
	return n
}

// transitions counts empty-to-set changes going once around the ring
func transitions(n [8]bool) int {
	count := 0
	for i := 0; i < 8; i++ {
		if !n[i] && n[(i+1)%8] {
			count++
		}
	}
	return count
}

func occupied(n [8]bool) int {
	count := 0
	for _, v := range n {
		if v {
			count++
		}
	}
	return count
}

// removable applies the Zhang-Suen deletion test for one sub-iteration.
// Indices 0, 2, 4, 6 are the north, east, south and west neighbours.
func removable(n [8]bool, second bool) bool {
	count := occupied(n)
	if count < 2 || count > 6 || transitions(n) != 1 {
		return false
	}
	north, east, south, west := n[0], n[2], n[4], n[6]
	if !second {
		return !(north && east && south) && !(east && south && west)
	}
	return !(north && east && west) && !(north && south && west)
}

// staircase reports whether the pixel is the elbow of a 4-connected corner:
// two perpendicular 4-neighbours are set while the opposite two and the
// diagonal between those are empty. The two set neighbours touch diagonally,
// so dropping the elbow keeps the curve 8-connected.
func staircase(n [8]bool) bool {
	for a := 0; a < 8; a += 2 {
		if n[a] && n[(a+2)%8] && !n[(a+4)%8] && !n[(a+6)%8] && !n[(a+5)%8] {
			return true
		}
	}
	return false
}

// pruneCorners deletes staircase elbows in raster order so the result is one
// pixel wide under 8-connectivity. Deletions apply immediately, which keeps
// two elbows of the same step from both going.
func pruneCorners(m *models.Mask) {
	for r := 0; r < m.Height; r++ {
		for c := 0; c < m.Width; c++ {
			if m.At(r, c) && staircase(neighbourhood(m, r, c)) {
				m.Set(r, c, false)
			}
		}
	}
}

// ZhangSuen thins a binary image to a one-pixel-wide skeleton. Each pass
// runs two sub-iterations whose deletions are applied together, and passes
// repeat until nothing changes. Staircase elbows left by the classic
// algorithm are removed at the end.
func ZhangSuen(mask *models.Mask) *models.Mask {
	out := mask.Clone()

	var doomed []int
	for changed := true; changed; {
		changed = false
		for _, second := range []bool{false, true} {
			doomed = doomed[:0]
			for r := 0; r < out.Height; r++ {
				for c := 0; c < out.Width; c++ {
					if out.At(r, c) && removable(neighbourhood(out, r, c), second) {
						doomed = append(doomed, r*out.Width+c)
					}
				}
			}
			for _, i := range doomed {
				out.Data[i] = false
			}
			if len(doomed) > 0 {
				changed = true
			}
		}
	}

	pruneCorners(out)
	return out
}
