package ridge

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"spineridge/internal/models"
	"spineridge/pkg/fieldutil"
)

// edgeKey identifies an undirected edge independent of walk direction
type edgeKey struct {
	lo, hi int64
}

func keyOf(a, b int64) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// skeletonGraph is the 8-connected adjacency graph of skeleton pixels.
// Node IDs are row*width + col. A diagonal step is left out when either
// pixel it cuts across is set, so a 4-connected corner stays a path instead
// of closing into a triangle.
type skeletonGraph struct {
	*simple.UndirectedGraph
	width   int
	visited map[edgeKey]bool
}

func buildSkeletonGraph(skeleton, mask *models.Mask) *skeletonGraph {
	g := &skeletonGraph{
		UndirectedGraph: simple.NewUndirectedGraph(),
		width:           skeleton.Width,
		visited:         make(map[edgeKey]bool),
	}

	on := func(r, c int) bool { return skeleton.At(r, c) && mask.At(r, c) }
	for r := 0; r < skeleton.Height; r++ {
		for c := 0; c < skeleton.Width; c++ {
			if on(r, c) {
				g.AddNode(simple.Node(g.id(r, c)))
			}
		}
	}

	// Forward half of the 8-neighbourhood so each edge is added once
	forward := [4][2]int{{0, 1}, {1, -1}, {1, 0}, {1, 1}}
	for r := 0; r < skeleton.Height; r++ {
		for c := 0; c < skeleton.Width; c++ {
			if !on(r, c) {
				continue
			}
			for _, d := range forward {
				if d[0] != 0 && d[1] != 0 && (on(r+d[0], c) || on(r, c+d[1])) {
					continue
				}
				if on(r+d[0], c+d[1]) {
					g.SetEdge(simple.Edge{F: simple.Node(g.id(r, c)), T: simple.Node(g.id(r+d[0], c+d[1]))})
				}
			}
		}
	}
	return g
}

func (g *skeletonGraph) id(r, c int) int64 {
	return int64(r*g.width + c)
}

func (g *skeletonGraph) point(id int64) models.Point {
	return models.Point{X: float64(int(id) % g.width), Y: float64(int(id) / g.width)}
}

func (g *skeletonGraph) degree(id int64) int {
	return g.From(id).Len()
}

// neighbours returns the IDs adjacent to id in ascending order
func (g *skeletonGraph) neighbours(id int64) []int64 {
	nodes := graph.NodesOf(g.From(id))
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (g *skeletonGraph) sortedNodes() []int64 {
	nodes := graph.NodesOf(g.Nodes())
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// walk follows the edge start->next through degree-2 pixels and stops at the
// next junction or endpoint, or when the only way on is an edge already
// walked.
func (g *skeletonGraph) walk(start, next int64) models.Polyline {
	path := models.Polyline{g.point(start)}
	g.visited[keyOf(start, next)] = true

	cur := next
	for {
		path = append(path, g.point(cur))
		if g.degree(cur) != 2 {
			return path
		}

		moved := false
		for _, n := range g.neighbours(cur) {
			if !g.visited[keyOf(cur, n)] {
				g.visited[keyOf(cur, n)] = true
				cur = n
				moved = true
				break
			}
		}
		if !moved {
			return path
		}
	}
}

// Vectorize converts a binary skeleton into ordered polylines in (x, y)
// pixel coordinates.
//
// Walks start from every junction (degree > 2) and endpoint (degree 1) along
// each edge not yet walked. Components made only of degree-2 pixels are
// closed loops and are emitted once, starting and ending at their lowest
// pixel. Isolated pixels and skeleton pixels outside the mask are dropped.
// Each polyline is simplified with simplifyAmount when it is positive.
func Vectorize(skeleton, mask *models.Mask, simplifyAmount float64) []models.Polyline {
	g := buildSkeletonGraph(skeleton, mask)

	var curves []models.Polyline
	for _, id := range g.sortedNodes() {
		if d := g.degree(id); d == 0 || d == 2 {
			continue
		}
		for _, n := range g.neighbours(id) {
			if !g.visited[keyOf(id, n)] {
				curves = append(curves, g.walk(id, n))
			}
		}
	}

	for _, component := range topo.ConnectedComponents(g) {
		if len(component) < 3 || !g.isLoop(component) {
			continue
		}
		start := component[0].ID()
		for _, n := range component[1:] {
			start = min(start, n.ID())
		}
		curves = append(curves, g.walk(start, g.neighbours(start)[0]))
	}

	if simplifyAmount > 0 {
		for i, curve := range curves {
			curves[i] = fieldutil.SimplifyPolyline(curve, simplifyAmount)
		}
	}
	return curves
}

// isLoop reports whether every pixel of a component has exactly two
// neighbours and none of its edges has been walked
func (g *skeletonGraph) isLoop(component []graph.Node) bool {
	for _, n := range component {
		if g.degree(n.ID()) != 2 {
			return false
		}
	}
	first := component[0].ID()
	return !g.visited[keyOf(first, g.neighbours(first)[0])]
}
