package medialness

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
)

// diskScene builds a disk mask with a depth bump centred on it
func diskScene(size int, radius float64) (*models.Mask, *mat.Dense) {
	mask := models.NewMask(size, size)
	depth := mat.NewDense(size, size, nil)
	centre := float64(size-1) / 2

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			dr, dc := float64(r)-centre, float64(c)-centre
			d2 := (dr*dr + dc*dc) / (radius * radius)
			if d2 <= 1 {
				mask.Set(r, c, true)
				depth.Set(r, c, 0.5+0.3*(1-d2))
			}
		}
	}
	return mask, depth
}

func TestBuildRangesAndMasking(t *testing.T) {
	mask, depth := diskScene(32, 12)
	field := Build(mask, depth, DefaultOptions())

	rows, cols := field.Medialness.Dims()
	if rows != 32 || cols != 32 {
		t.Fatalf("Expected 32x32 medialness, got %dx%d", rows, cols)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m := field.Medialness.At(r, c)
			if m < 0 || m > 1+1e-12 {
				t.Fatalf("Medialness out of [0,1] at (%d,%d): %f", r, c, m)
			}

			s := field.Speed.At(r, c)
			if !mask.At(r, c) {
				if s != 0 || field.Valid.At(r, c) {
					t.Fatalf("Background cell (%d,%d) must be invalid with zero speed", r, c)
				}
				continue
			}
			if math.Abs(s-math.Exp(10*m)) > 1e-9*s {
				t.Fatalf("Speed at (%d,%d) = %f, want exp(10*%f)", r, c, s, m)
			}
		}
	}
}

// TestBuildPeaksAtCentre checks that the fused field is largest in the
// volumetric centre of a symmetric object
func TestBuildPeaksAtCentre(t *testing.T) {
	mask, depth := diskScene(31, 12)
	field := Build(mask, depth, DefaultOptions())

	centre := field.Medialness.At(15, 15)
	edge := field.Medialness.At(15, 4)
	if centre <= edge {
		t.Errorf("Expected centre medialness %f above edge %f", centre, edge)
	}
	if math.Abs(centre-mat.Max(field.Medialness)) > 1e-9 {
		t.Errorf("Expected centre to hold the maximum, got %f vs %f", centre, mat.Max(field.Medialness))
	}
}

// TestBuildFlatDepth verifies the zero-max guard on an all-zero depth field
func TestBuildFlatDepth(t *testing.T) {
	mask, _ := diskScene(16, 6)
	depth := mat.NewDense(16, 16, nil)

	field := Build(mask, depth, DefaultOptions())
	for _, v := range field.Medialness.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("Flat depth produced a non-finite medialness value")
		}
	}
	if got := mat.Max(field.Medialness); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected maximum 0.5 from the distance term alone, got %f", got)
	}
}
