package ridge

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
	"spineridge/pkg/filter"
)

// bumpDisk returns a disk mask with a smooth Gaussian bump of depth inside it
func bumpDisk(size int, radius float64) (*models.Mask, *mat.Dense) {
	mask := models.NewMask(size, size)
	depth := mat.NewDense(size, size, nil)
	centre := float64(size-1) / 2
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			d := math.Hypot(float64(r)-centre, float64(c)-centre)
			if d <= radius {
				mask.Set(r, c, true)
				depth.Set(r, c, 0.5+0.3*math.Exp(-d*d/(2*16)))
			}
		}
	}
	return mask, depth
}

func fullMask(width, height int) *models.Mask {
	mask := models.NewMask(width, height)
	for i := range mask.Data {
		mask.Data[i] = true
	}
	return mask
}

func constant(rows, cols int, v float64) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	m.Apply(func(int, int, float64) float64 { return v }, m)
	return m
}

// TestDetectSuppressesSilhouette checks the rim of the disk carries no
// strength even though the depth step there has the largest raw curvature
func TestDetectSuppressesSilhouette(t *testing.T) {
	mask, depth := bumpDisk(41, 15)
	opts := DefaultDetectOptions()

	strength, orientation := Detect(depth, mask, opts)

	if math.Abs(mat.Max(strength)-1) > 1e-9 {
		t.Errorf("Expected strength normalized to max 1, got %f", mat.Max(strength))
	}
	if mat.Min(strength) < 0 {
		t.Errorf("Strength must be non-negative")
	}

	inverted := mat.NewDense(41, 41, nil)
	inverted.Apply(func(r, c int, v float64) float64 { return 1 - v }, depth)
	raw := computeHessian(filter.Gaussian(inverted, opts.Sigma))

	interior := filter.Erode(mask, opts.ErosionRadius)
	rimPeak, centrePeak := 0.0, 0.0
	for r := 0; r < 41; r++ {
		for c := 0; c < 41; c++ {
			dominant, _ := principal(raw.xx.At(r, c), raw.xy.At(r, c), raw.yy.At(r, c))
			if mask.At(r, c) && !interior.At(r, c) {
				rimPeak = math.Max(rimPeak, math.Abs(dominant))
				if strength.At(r, c) != 0 {
					t.Fatalf("Strength %f at rim pixel (%d,%d)", strength.At(r, c), r, c)
				}
			}
			if r == 20 && c == 20 {
				centrePeak = math.Abs(dominant)
			}
			if o := orientation.At(r, c); o < 0 || o >= math.Pi {
				t.Fatalf("Orientation %f at (%d,%d) outside [0, π)", o, r, c)
			}
		}
	}
	if rimPeak <= centrePeak {
		t.Errorf("Expected raw rim curvature %f to exceed the bump curvature %f", rimPeak, centrePeak)
	}
}

// TestDetectSuppressesOcclusionStep places a nearer disk inside the surface.
// The step it makes lies well inside the eroded mask, so only the gradient
// cut-off can remove it.
func TestDetectSuppressesOcclusionStep(t *testing.T) {
	const size = 41
	mask := fullMask(size, size)
	depth := constant(size, size, 0.5)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if math.Hypot(float64(r-20), float64(c-20)) <= 6 {
				depth.Set(r, c, 0.9)
			}
		}
	}
	opts := DefaultDetectOptions()

	strength, _ := Detect(depth, mask, opts)

	inverted := mat.NewDense(size, size, nil)
	inverted.Apply(func(r, c int, v float64) float64 { return 1 - v }, depth)
	smoothed := filter.Gaussian(inverted, opts.Sigma)
	raw := computeHessian(smoothed)
	surface := surfaceMask(smoothed, mask, opts)
	interior := filter.Erode(mask, opts.ErosionRadius)

	// The strongest raw curvature sits on the flanks of the step
	peak, peakR, peakC := 0.0, -1, -1
	suppressed := 0
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if !interior.At(r, c) {
				continue
			}
			dominant, _ := principal(raw.xx.At(r, c), raw.xy.At(r, c), raw.yy.At(r, c))
			if math.Abs(dominant) > peak {
				peak, peakR, peakC = math.Abs(dominant), r, c
			}
			if !surface.At(r, c) {
				suppressed++
				if strength.At(r, c) != 0 {
					t.Fatalf("Strength %f at occlusion pixel (%d,%d)", strength.At(r, c), r, c)
				}
			}
		}
	}

	if suppressed == 0 {
		t.Fatalf("Expected the occlusion step to be cut from the surface")
	}
	if peakR < 0 || peak <= 0 {
		t.Fatalf("Expected non-zero raw curvature inside the mask")
	}
	if surface.At(peakR, peakC) {
		t.Errorf("Raw curvature peak (%d,%d) kept as surface", peakR, peakC)
	}
	if strength.At(peakR, peakC) != 0 {
		t.Errorf("Raw curvature peak (%d,%d) keeps strength %f", peakR, peakC, strength.At(peakR, peakC))
	}
	if !surface.At(20, 20) || !surface.At(5, 5) {
		t.Errorf("Flat regions on either side of the step must stay surface")
	}
}

func TestDetectEmptyMask(t *testing.T) {
	strength, _ := Detect(constant(8, 8, 0.5), models.NewMask(8, 8), DefaultDetectOptions())
	if mat.Max(strength) != 0 {
		t.Errorf("Expected zero strength for an empty mask")
	}
}

func TestPrincipal(t *testing.T) {
	tests := []struct {
		name                 string
		xx, xy, yy           float64
		wantDominant, wantAt float64
	}{
		{"x curvature", 2, 0, 0.5, 2, 0},
		{"y dominates", 0.5, 0, -3, -3, 0},
		{"y direction", 0, 0, 1, 1, math.Pi / 2},
		{"diagonal", 0, 1, 0, 1, math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dominant, angle := principal(tt.xx, tt.xy, tt.yy)
			if math.Abs(dominant-tt.wantDominant) > 1e-12 {
				t.Errorf("dominant = %f, want %f", dominant, tt.wantDominant)
			}
			if math.Abs(angle-tt.wantAt) > 1e-12 {
				t.Errorf("angle = %f, want %f", angle, tt.wantAt)
			}
		})
	}
}

// TestSuppressDiagonalLine keeps a one-pixel diagonal line intact
func TestSuppressDiagonalLine(t *testing.T) {
	strength := mat.NewDense(10, 10, nil)
	for i := 0; i < 10; i++ {
		strength.Set(i, i, 1)
	}
	// The normal of a down-right diagonal points at 135 degrees
	orientation := constant(10, 10, 3*math.Pi/4)

	out := SuppressNonMaxima(strength, orientation)
	if !mat.Equal(out, strength) {
		t.Errorf("Expected the diagonal line to survive unchanged, got\n%v", mat.Formatted(out))
	}

	skeleton := Thin(strength, orientation, DefaultThinOptions())
	for i := 0; i < 10; i++ {
		if !skeleton.At(i, i) {
			t.Errorf("Thinned line lost pixel (%d,%d)", i, i)
		}
	}
	if skeleton.Count() != 10 {
		t.Errorf("Expected a single-pixel-wide line of 10 pixels, got %d", skeleton.Count())
	}
}

// TestSuppressPlateau reduces a flat three-row band to exactly one row
func TestSuppressPlateau(t *testing.T) {
	strength := mat.NewDense(11, 12, nil)
	for r := 4; r <= 6; r++ {
		for c := 0; c < 12; c++ {
			strength.Set(r, c, 1)
		}
	}
	out := SuppressNonMaxima(strength, constant(11, 12, math.Pi/2))

	for r := 0; r < 11; r++ {
		kept := 0
		for c := 0; c < 12; c++ {
			if out.At(r, c) > 0 {
				kept++
			}
		}
		want := 0
		if r == 6 {
			want = 12
		}
		if kept != want {
			t.Errorf("Row %d keeps %d pixels, want %d", r, kept, want)
		}
	}
}

func TestAcrossOffsets(t *testing.T) {
	tests := []struct {
		deg  float64
		want [4]int
	}{
		{0, [4]int{0, -1, 0, 1}},
		{170, [4]int{0, -1, 0, 1}},
		{-10, [4]int{0, -1, 0, 1}},
		{45, [4]int{-1, -1, 1, 1}},
		{90, [4]int{-1, 0, 1, 0}},
		{135, [4]int{-1, 1, 1, -1}},
		{180 + 90, [4]int{-1, 0, 1, 0}},
	}
	for _, tt := range tests {
		dr1, dc1, dr2, dc2 := acrossOffsets(tt.deg * math.Pi / 180)
		if got := [4]int{dr1, dc1, dr2, dc2}; got != tt.want {
			t.Errorf("acrossOffsets(%v°) = %v, want %v", tt.deg, got, tt.want)
		}
	}
}

// weakLine is a row of weak pixels anchored by one strong pixel, plus a
// separate weak fragment that touches nothing strong
func weakLine() *mat.Dense {
	strength := mat.NewDense(9, 20, nil)
	strength.Set(4, 0, 0.9)
	for c := 1; c < 12; c++ {
		strength.Set(4, c, 0.4)
	}
	for c := 15; c < 20; c++ {
		strength.Set(4, c, 0.4)
	}
	return strength
}

func TestHysteresisConnectivity(t *testing.T) {
	strength := weakLine()

	for _, low := range []float64{0.05, 0.2, 0.39} {
		skeleton := Hysteresis(strength, low, 0.8)
		for c := 0; c < 12; c++ {
			if !skeleton.At(4, c) {
				t.Errorf("low=%v: pixel (4,%d) not promoted", low, c)
			}
		}
		for c := 15; c < 20; c++ {
			if skeleton.At(4, c) {
				t.Errorf("low=%v: disconnected pixel (4,%d) promoted", low, c)
			}
		}
	}

	if got := Hysteresis(strength, 0.5, 0.8).Count(); got != 1 {
		t.Errorf("Expected only the strong pixel above low, got %d", got)
	}
}

// TestHysteresisInvertedThresholds treats low >= high as low = high
func TestHysteresisInvertedThresholds(t *testing.T) {
	strength := weakLine()
	inverted := Hysteresis(strength, 0.95, 0.3)
	equal := Hysteresis(strength, 0.3, 0.3)

	for i := range inverted.Data {
		if inverted.Data[i] != equal.Data[i] {
			t.Fatalf("low >= high differs from low = high at index %d", i)
		}
	}
	if equal.Count() != 17 {
		t.Errorf("Expected every pixel above 0.3 to be strong, got %d", equal.Count())
	}
}

func TestHysteresisIgnoresZero(t *testing.T) {
	strength := mat.NewDense(3, 3, nil)
	strength.Set(1, 1, 1)
	if got := Hysteresis(strength, 0, 0.5).Count(); got != 1 {
		t.Errorf("Zero-strength pixels must never be promoted, got %d pixels", got)
	}
}

func TestZhangSuen(t *testing.T) {
	bar := models.NewMask(20, 11)
	for r := 3; r <= 7; r++ {
		for c := 2; c <= 17; c++ {
			bar.Set(r, c, true)
		}
	}

	thin := ZhangSuen(bar)
	for i, v := range thin.Data {
		if v && !bar.Data[i] {
			t.Fatalf("Thinning added pixel %d", i)
		}
	}
	for c := 7; c <= 12; c++ {
		n := 0
		for r := 0; r < 11; r++ {
			if thin.At(r, c) {
				n++
			}
		}
		if n != 1 {
			t.Errorf("Column %d keeps %d pixels, want 1", c, n)
		}
	}

	line := models.NewMask(10, 3)
	for c := 1; c < 9; c++ {
		line.Set(1, c, true)
	}
	if got := ZhangSuen(line).Count(); got != 8 {
		t.Errorf("A one-pixel line should be preserved, got %d pixels", got)
	}
}

func TestPruneCorners(t *testing.T) {
	// A 4-connected staircase from (1,1) down to (5,6)
	stair := models.NewMask(8, 7)
	for i := 1; i <= 5; i++ {
		stair.Set(i, i, true)
		stair.Set(i, i+1, true)
	}

	pruneCorners(stair)
	for r := 0; r < stair.Height; r++ {
		for c := 0; c < stair.Width; c++ {
			if stair.At(r, c) && staircase(neighbourhood(stair, r, c)) {
				t.Errorf("Elbow left at (%d,%d)", r, c)
			}
		}
	}
	if curves := Vectorize(stair, fullMask(8, 7), 0); len(curves) != 1 {
		t.Errorf("Expected the pruned staircase to stay one curve, got %d", len(curves))
	}

	// Straight runs and crossings have no elbows
	if staircase([8]bool{true, false, false, false, true, false, false, false}) {
		t.Errorf("A vertical run is not an elbow")
	}
	if staircase([8]bool{true, false, true, false, true, false, true, false}) {
		t.Errorf("A crossing is not an elbow")
	}
}

// plus draws a horizontal and a vertical arm crossing at (4,4)
func plus() *models.Mask {
	mask := models.NewMask(9, 9)
	for i := 0; i < 9; i++ {
		mask.Set(4, i, true)
		mask.Set(i, 4, true)
	}
	return mask
}

func TestVectorizePlus(t *testing.T) {
	for name, skeleton := range map[string]*models.Mask{
		"raw":        plus(),
		"zhang-suen": ZhangSuen(plus()),
	} {
		curves := Vectorize(skeleton, fullMask(9, 9), 0)
		if len(curves) != 4 {
			t.Fatalf("%s: expected 4 arms, got %d curves: %v", name, len(curves), curves)
		}
		centre := models.Point{X: 4, Y: 4}
		for i, curve := range curves {
			if len(curve) != 5 {
				t.Errorf("%s: arm %d has %d points, want 5", name, i, len(curve))
			}
			if curve[0] != centre && curve[len(curve)-1] != centre {
				t.Errorf("%s: arm %d does not reach the centre: %v", name, i, curve)
			}
		}
	}
}

// rectangle outlines rows 2..8 and columns 2..10 with square corners
func rectangle(width int) *models.Mask {
	mask := models.NewMask(width, 11)
	for c := 2; c <= 10; c++ {
		mask.Set(2, c, true)
		mask.Set(8, c, true)
	}
	for r := 2; r <= 8; r++ {
		mask.Set(r, 2, true)
		mask.Set(r, 10, true)
	}
	return mask
}

func TestVectorizeSquareRing(t *testing.T) {
	curves := Vectorize(rectangle(13), fullMask(13, 11), 0)
	if len(curves) != 1 {
		t.Fatalf("Expected one loop, got %d curves", len(curves))
	}
	if len(curves[0]) != 29 || curves[0][0] != (models.Point{X: 2, Y: 2}) {
		t.Errorf("Expected 28 pixels from (2,2) plus the closing point, got %d from %v", len(curves[0]), curves[0][0])
	}

	thin := ZhangSuen(rectangle(13))
	if thin.Count() != 24 {
		t.Errorf("Expected the four corner elbows pruned, got %d pixels", thin.Count())
	}
	curves = Vectorize(thin, fullMask(13, 11), 0)
	if len(curves) != 1 || len(curves[0]) != 25 {
		t.Fatalf("Expected one 25-point loop after thinning, got %v", curves)
	}
	if curves[0][0] != (models.Point{X: 3, Y: 2}) {
		t.Errorf("Loop should start at its lowest pixel, got %v", curves[0][0])
	}

	// A tail turns the ring into one branch plus one loop through the junction
	tailed := rectangle(14)
	tailed.Set(5, 11, true)
	tailed.Set(5, 12, true)
	curves = Vectorize(tailed, fullMask(14, 11), 0)
	if len(curves) != 2 {
		t.Fatalf("Expected a tail and a loop, got %d curves", len(curves))
	}
	for i, curve := range curves {
		if len(curve) <= 2 {
			t.Errorf("Curve %d is a stub: %v", i, curve)
		}
	}
}

// xShape draws two diagonals crossing at (4,4)
func xShape() *models.Mask {
	mask := models.NewMask(9, 9)
	for i := 1; i <= 7; i++ {
		mask.Set(i, i, true)
		mask.Set(i, 8-i, true)
	}
	return mask
}

func TestVectorizeX(t *testing.T) {
	skeleton := xShape()
	curves := Vectorize(skeleton, fullMask(9, 9), 0)

	if len(curves) != 4 {
		t.Fatalf("Expected 4 polylines, got %d", len(curves))
	}
	junction := models.Point{X: 4, Y: 4}
	for i, curve := range curves {
		if len(curve) != 4 {
			t.Errorf("Curve %d has %d points, want 4", i, len(curve))
		}
		if curve[0] != junction && curve[len(curve)-1] != junction {
			t.Errorf("Curve %d does not touch the junction: %v", i, curve)
		}
	}
}

// diamond is a closed 8-connected ring where every pixel has two neighbours
func diamond() *models.Mask {
	mask := models.NewMask(9, 9)
	for r := 0; r < 9; r++ {
		for c := 0; c < 9; c++ {
			if abs(r-4)+abs(c-4) == 3 {
				mask.Set(r, c, true)
			}
		}
	}
	return mask
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestVectorizeClosedLoop(t *testing.T) {
	skeleton := diamond()
	skeleton.Set(0, 8, true) // isolated

	curves := Vectorize(skeleton, fullMask(9, 9), 0)
	if len(curves) != 1 {
		t.Fatalf("Expected one closed loop, got %d curves", len(curves))
	}
	loop := curves[0]
	if len(loop) != 13 {
		t.Errorf("Expected 12 pixels plus the closing point, got %d", len(loop))
	}
	if loop[0] != loop[len(loop)-1] {
		t.Errorf("Loop must start and end at the same pixel: %v / %v", loop[0], loop[len(loop)-1])
	}
	if loop[0] != (models.Point{X: 4, Y: 1}) {
		t.Errorf("Loop should start at its lowest pixel, got %v", loop[0])
	}
}

func TestVectorizeRespectsMask(t *testing.T) {
	skeleton := models.NewMask(12, 3)
	for c := 0; c < 12; c++ {
		skeleton.Set(1, c, true)
	}
	mask := fullMask(12, 3)
	for r := 0; r < 3; r++ {
		mask.Set(r, 6, false)
	}

	curves := Vectorize(skeleton, mask, 0)
	if len(curves) != 2 {
		t.Fatalf("Expected the mask gap to split the line in two, got %d", len(curves))
	}

	simplified := Vectorize(skeleton, fullMask(12, 3), 0.01)
	if len(simplified) != 1 || len(simplified[0]) != 2 {
		t.Errorf("Expected a straight line to simplify to 2 points, got %v", simplified)
	}
}

func TestVectorizeEmpty(t *testing.T) {
	if curves := Vectorize(models.NewMask(5, 5), fullMask(5, 5), 0.01); len(curves) != 0 {
		t.Errorf("Expected no curves, got %d", len(curves))
	}
}
