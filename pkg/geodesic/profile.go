package geodesic

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"spineridge/internal/models"
)

// pixel is a 2D position indexed by the kd-tree
type pixel struct {
	X, Y float64
}

// Compare implements the kdtree.Comparable interface
func (p pixel) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(pixel)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the kd-tree
func (p pixel) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between two pixels
func (p pixel) Distance(c kdtree.Comparable) float64 {
	q := c.(pixel)
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// pixels is a collection of pixel that satisfies kdtree.Interface
type pixels []pixel

func (p pixels) Index(i int) kdtree.Comparable         { return p[i] }
func (p pixels) Len() int                              { return len(p) }
func (p pixels) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method
func (p pixels) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(pixelPlane{pixels: p, Dim: d}, kdtree.MedianOfRandoms(pixelPlane{pixels: p, Dim: d}, 100))
}

// pixelPlane implements sort.Interface and kdtree.SortSlicer for pixels
type pixelPlane struct {
	pixels
	kdtree.Dim
}

func (p pixelPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.pixels[i].X < p.pixels[j].X
	case 1:
		return p.pixels[i].Y < p.pixels[j].Y
	default:
		panic("illegal dimension")
	}
}

func (p pixelPlane) Slice(start, end int) kdtree.SortSlicer {
	return pixelPlane{pixels: p.pixels[start:end], Dim: p.Dim}
}

func (p pixelPlane) Swap(i, j int) {
	p.pixels[i], p.pixels[j] = p.pixels[j], p.pixels[i]
}

// Radii returns, for each point of the path, the distance to the nearest
// background pixel centre. The ring of pixels just outside the grid counts
// as background so objects touching the border get a finite radius.
// Mesh builders use it as the loft half-width along the spine.
func Radii(path models.Polyline, mask *models.Mask) []float64 {
	if len(path) == 0 {
		return nil
	}

	var background pixels
	for r := -1; r <= mask.Height; r++ {
		for c := -1; c <= mask.Width; c++ {
			if !mask.At(r, c) {
				background = append(background, pixel{X: float64(c), Y: float64(r)})
			}
		}
	}

	tree := kdtree.New(background, false)
	radii := make([]float64, len(path))
	for i, p := range path {
		_, d2 := tree.Nearest(pixel{X: p.X, Y: p.Y})
		radii[i] = math.Sqrt(d2)
	}
	return radii
}
