package pipeline

import "errors"

// Sentinel errors returned by input validation.
var (
	// ErrNilInput is returned when the mask or depth field is missing.
	ErrNilInput = errors.New("pipeline: nil mask or depth")

	// ErrEmptyMask is returned when the mask has no foreground pixel.
	ErrEmptyMask = errors.New("pipeline: mask has no foreground pixels")

	// ErrShapeMismatch is returned when mask and depth differ in size.
	ErrShapeMismatch = errors.New("pipeline: mask and depth shapes differ")

	// ErrInvalidThresholds is returned for non-finite hysteresis thresholds.
	ErrInvalidThresholds = errors.New("pipeline: hysteresis thresholds must be finite")
)
