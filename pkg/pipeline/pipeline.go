// Package pipeline chains the medial-axis and ridge stages into a single
// extraction run over one mask and depth field.
package pipeline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"spineridge/internal/models"
	"spineridge/pkg/fieldutil"
	"spineridge/pkg/geodesic"
	"spineridge/pkg/medialness"
	"spineridge/pkg/ridge"
)

// Params holds every tunable of an extraction run.
type Params struct {
	// Medialness controls depth smoothing and the speed-map exponent
	Medialness medialness.Options

	// Geodesic controls endpoint relocation and backtracking
	Geodesic geodesic.Options

	// Detect controls Hessian curvature detection
	Detect ridge.DetectOptions

	// Thin controls non-maximum suppression, hysteresis and skeletonization
	Thin ridge.ThinOptions

	// SimplifyAmount is the Douglas-Peucker tolerance for ridge curves as a
	// fraction of each curve's arc length. Zero disables simplification.
	SimplifyAmount float64

	// SpinePoints is the number of evenly spaced points the spine is
	// resampled to. Zero keeps the raw backtracked path.
	SpinePoints int

	// RidgePoints is the number of points each ridge curve is resampled to.
	// Zero keeps the vectorized curves.
	RidgePoints int

	// ZScale multiplies sampled depth when lifting the spine to 3D
	ZScale float64
}

// DefaultParams returns the standard extraction settings
func DefaultParams() Params {
	return Params{
		Medialness:     medialness.DefaultOptions(),
		Geodesic:       geodesic.DefaultOptions(),
		Detect:         ridge.DefaultDetectOptions(),
		Thin:           ridge.DefaultThinOptions(),
		SimplifyAmount: 0.01,
		SpinePoints:    32,
		RidgePoints:    0,
		ZScale:         1,
	}
}

// SpineResult is the output of the medial-axis half of the pipeline
type SpineResult struct {
	// Field is the medialness field the spine was traced through
	Field *medialness.Field

	// Spine is the raw extraction with its diagnostics
	Spine *geodesic.Spine

	// Path is the spine resampled to SpinePoints, or the raw path
	Path models.Polyline

	// Lifted is Path with depth sampled at each point and scaled by ZScale
	Lifted []models.Point3

	// Radii is the distance from each Path point to the silhouette
	Radii []float64
}

// RidgeResult is the output of the ridge half of the pipeline
type RidgeResult struct {
	Strength    *mat.Dense
	Orientation *mat.Dense
	Skeleton    *models.Mask
	Curves      []models.Polyline
}

// Result bundles both halves with summary metrics
type Result struct {
	Spine   *SpineResult
	Ridges  *RidgeResult
	Metrics Metrics
}

// Extractor runs the extraction stages with a fixed set of parameters.
// It holds no state between calls.
type Extractor struct {
	params Params
}

// NewExtractor creates an extractor. A nil params selects DefaultParams.
func NewExtractor(params *Params) *Extractor {
	if params == nil {
		p := DefaultParams()
		params = &p
	}
	return &Extractor{params: *params}
}

// Params returns the parameters the extractor runs with
func (e *Extractor) Params() Params {
	return e.params
}

// validate checks the preconditions every stage relies on
func validate(mask *models.Mask, depth mat.Matrix) error {
	if mask == nil || depth == nil {
		return ErrNilInput
	}
	if len(mask.Data) != mask.Width*mask.Height {
		return fmt.Errorf("mask holds %d pixels for %dx%d: %w", len(mask.Data), mask.Width, mask.Height, ErrShapeMismatch)
	}
	rows, cols := depth.Dims()
	if rows != mask.Height || cols != mask.Width {
		return fmt.Errorf("mask is %dx%d, depth is %dx%d: %w", mask.Width, mask.Height, cols, rows, ErrShapeMismatch)
	}
	if mask.Count() == 0 {
		return ErrEmptyMask
	}
	return nil
}

// ExtractSpine builds the medialness field and traces the geodesic spine
// between the two extrema of the mask.
func (e *Extractor) ExtractSpine(mask *models.Mask, depth mat.Matrix) (*SpineResult, error) {
	if err := validate(mask, depth); err != nil {
		return nil, fmt.Errorf("invalid spine input: %w", err)
	}
	log := Logger()

	log.Info("step 1: building medialness field", "width", mask.Width, "height", mask.Height)
	field := medialness.Build(mask, depth, e.params.Medialness)

	log.Info("step 2: tracing geodesic spine")
	spine := geodesic.ExtractSpine(field, e.params.Geodesic)
	log.Debug("spine traced",
		"seed", spine.Seed, "tip", spine.Tip, "tail", spine.Tail,
		"steps", spine.Steps, "stop", spine.Stop.String(), "points", len(spine.Path))
	if len(spine.Path) <= 1 {
		log.Warn("degenerate spine", "points", len(spine.Path), "stop", spine.Stop.String())
	}

	path := spine.Path
	if e.params.SpinePoints > 0 && len(path) > 0 {
		path = fieldutil.ResamplePolyline(path, e.params.SpinePoints)
	}

	return &SpineResult{
		Field:  field,
		Spine:  spine,
		Path:   path,
		Lifted: fieldutil.LiftPolyline(path, depth, e.params.ZScale),
		Radii:  geodesic.Radii(path, mask),
	}, nil
}

// ExtractRidges detects surface creases in the depth field and vectorizes
// them into polylines.
func (e *Extractor) ExtractRidges(mask *models.Mask, depth mat.Matrix) (*RidgeResult, error) {
	if err := validate(mask, depth); err != nil {
		return nil, fmt.Errorf("invalid ridge input: %w", err)
	}
	low, high := e.params.Thin.LowThreshold, e.params.Thin.HighThreshold
	if math.IsNaN(low) || math.IsInf(low, 0) || math.IsNaN(high) || math.IsInf(high, 0) {
		return nil, fmt.Errorf("low=%v high=%v: %w", low, high, ErrInvalidThresholds)
	}
	log := Logger()

	log.Info("step 3: detecting curvature ridges", "sigma", e.params.Detect.Sigma)
	strength, orientation := ridge.Detect(depth, mask, e.params.Detect)

	log.Info("step 4: thinning ridge map", "low", low, "high", high, "skeletonize", string(e.params.Thin.Skeletonize))
	skeleton := ridge.Thin(strength, orientation, e.params.Thin)
	if skeleton.Count() == 0 {
		log.Warn("empty ridge skeleton")
	}

	log.Info("step 5: vectorizing skeleton", "pixels", skeleton.Count())
	curves := ridge.Vectorize(skeleton, mask, e.params.SimplifyAmount)
	if e.params.RidgePoints > 0 {
		for i, curve := range curves {
			curves[i] = fieldutil.ResamplePolyline(curve, e.params.RidgePoints)
		}
	}
	log.Debug("ridges vectorized", "curves", len(curves))

	return &RidgeResult{
		Strength:    strength,
		Orientation: orientation,
		Skeleton:    skeleton,
		Curves:      curves,
	}, nil
}

// Process runs both halves of the pipeline and computes summary metrics
func (e *Extractor) Process(mask *models.Mask, depth mat.Matrix) (*Result, error) {
	spine, err := e.ExtractSpine(mask, depth)
	if err != nil {
		return nil, fmt.Errorf("spine extraction failed: %w", err)
	}
	ridges, err := e.ExtractRidges(mask, depth)
	if err != nil {
		return nil, fmt.Errorf("ridge extraction failed: %w", err)
	}

	Logger().Info("step 6: calculating metrics")
	return &Result{
		Spine:   spine,
		Ridges:  ridges,
		Metrics: calculateMetrics(mask, spine, ridges),
	}, nil
}
