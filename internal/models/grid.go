package models

import (
	"math"
)

// Mask represents a binary object mask stored in row-major order
type Mask struct {
	// Data holds one entry per pixel, true where the object occupies it
	Data []bool

	// Width is the number of columns
	Width int

	// Height is the number of rows
	Height int
}

// NewMask creates an all-background mask with the given dimensions
func NewMask(width, height int) *Mask {
	return &Mask{
		Data:   make([]bool, width*height),
		Width:  width,
		Height: height,
	}
}

// At reports whether the pixel at (row, col) is foreground.
// Out-of-range coordinates are background.
func (m *Mask) At(row, col int) bool {
	if !m.InBounds(row, col) {
		return false
	}
	return m.Data[row*m.Width+col]
}

// Set marks the pixel at (row, col)
func (m *Mask) Set(row, col int, v bool) {
	m.Data[row*m.Width+col] = v
}

// InBounds reports whether (row, col) lies on the grid
func (m *Mask) InBounds(row, col int) bool {
	return row >= 0 && row < m.Height && col >= 0 && col < m.Width
}

// Size returns the total number of pixels
func (m *Mask) Size() int {
	return m.Width * m.Height
}

// Count returns the number of foreground pixels
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the mask
func (m *Mask) Clone() *Mask {
	c := NewMask(m.Width, m.Height)
	copy(c.Data, m.Data)
	return c
}

// Cell is an integer grid position
type Cell struct {
	Row, Col int
}

// Point is a 2D position in pixel coordinates, X = column and Y = row
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance between two points
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Point3 is a pixel-coordinate point extended with a height value
type Point3 struct {
	X, Y, Z float64
}

// Polyline is an ordered sequence of points
type Polyline []Point
