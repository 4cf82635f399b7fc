// Package geodesic extracts a curved medial spine from a speed map using the
// double-sweep fast marching method followed by gradient-descent
// backtracking.
//
// The extraction runs in three phases:
//  1. Sweep 1: fast marching from the point of maximum speed locates the tip,
//     the cell geodesically farthest from it.
//  2. Sweep 2: fast marching from the tip locates the tail, the cell
//     geodesically farthest from the tip. Tip and tail approximate the
//     geodesic diameter of the region.
//  3. Backtracking: steepest descent on the second travel-time field walks
//     from the tail to the tip, producing the ordered spine path.
package geodesic

import (
	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
	"spineridge/pkg/filter"
	"spineridge/pkg/medialness"
)

// StopReason records why backtracking ended
type StopReason int

const (
	// StopDegenerate means no sweep could run and the path is trivial
	StopDegenerate StopReason = iota

	// StopThreshold means travel time fell below StopFraction of the tail's
	StopThreshold

	// StopTip means the walk came within TipTolerance of the tip
	StopTip

	// StopBlocked means no step, direct or fallback, stayed inside the region
	StopBlocked

	// StopStepCap means the step budget (the grid size) ran out
	StopStepCap
)

func (s StopReason) String() string {
	switch s {
	case StopDegenerate:
		return "degenerate"
	case StopThreshold:
		return "threshold"
	case StopTip:
		return "tip"
	case StopBlocked:
		return "blocked"
	case StopStepCap:
		return "step-cap"
	default:
		return "unknown"
	}
}

// Options tunes endpoint validation and backtracking
type Options struct {
	// MinBoundaryDist is the minimum distance, in pixels, an endpoint should
	// keep from the silhouette
	MinBoundaryDist float64 `yaml:"minBoundaryDist"`

	// SearchRadius bounds the window used to relocate endpoints
	SearchRadius int `yaml:"searchRadius"`

	// BoundaryWeight scores relocation candidates by T2 + weight*distance
	BoundaryWeight float64 `yaml:"boundaryWeight"`

	// StepSize is the nominal descent step in pixels
	StepSize float64 `yaml:"stepSize"`

	// RetryFractions are the shorter step lengths tried when a step leaves
	// the region
	RetryFractions []float64 `yaml:"retryFractions"`

	// StopFraction ends the walk once travel time drops below this fraction
	// of the tail's travel time
	StopFraction float64 `yaml:"stopFraction"`

	// TipTolerance ends the walk within this distance of the tip
	TipTolerance float64 `yaml:"tipTolerance"`
}

// DefaultOptions returns the standard extraction settings. StopFraction and
// the relocation weights are empirical and worth tuning against real data.
func DefaultOptions() Options {
	return Options{
		MinBoundaryDist: 3,
		SearchRadius:    20,
		BoundaryWeight:  0.1,
		StepSize:        0.5,
		RetryFractions:  []float64{0.25, 0.1, 0.05},
		StopFraction:    0.01,
		TipTolerance:    1,
	}
}

// Spine is the result of one extraction
type Spine struct {
	// Path runs from the tail towards the tip in (x, y) pixel coordinates.
	// It is not resampled.
	Path models.Polyline

	// Seed is the cell of maximum speed that started sweep 1
	Seed models.Cell

	// Tip and Tail are the validated geodesic extrema
	Tip, Tail models.Cell

	// Arrival is the travel-time field of sweep 2, seeded at the tip
	Arrival *mat.Dense

	// Steps counts accepted descent steps
	Steps int

	// Stop is why backtracking ended
	Stop StopReason
}

// ExtractSpine runs the double sweep and backtracking over a medialness
// field. It never fails for a non-empty mask: degenerate regions produce
// short or single-point paths. An empty mask yields an empty path.
func ExtractSpine(field *medialness.Field, opts Options) *Spine {
	valid := field.Valid
	inside := func(r, c int) bool { return valid.At(r, c) }

	seed, ok := filter.ArgMax(field.Speed, inside)
	if !ok {
		return &Spine{Stop: StopDegenerate}
	}

	spine := &Spine{Seed: seed, Tip: seed, Tail: seed}
	single := models.Polyline{{X: float64(seed.Col), Y: float64(seed.Row)}}

	t1 := TravelTime(field.Speed, valid, seed)
	tip, ok := filter.ArgMax(t1, inside)
	if !ok {
		spine.Path = single
		return spine
	}

	t2 := TravelTime(field.Speed, valid, tip)
	tail, ok := filter.ArgMax(t2, inside)
	if !ok {
		spine.Path = single
		spine.Tip = tip
		return spine
	}

	spine.Arrival = t2
	spine.Tip = relocateEndpoint(tip, field.Distance, t2, opts)
	spine.Tail = relocateEndpoint(tail, field.Distance, t2, opts)

	spine.Path, spine.Steps, spine.Stop = backtrack(spine.Tail, spine.Tip, t2, valid, opts)
	return spine
}
