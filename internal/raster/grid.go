// Package raster converts node fields on a structured grid to and from
// Esri ASCII grid files.
//
// Fields are row-major from the bottom-left node: row 0 is the southern
// row. ASCII grids list rows north to south, so both directions flip.
package raster

import (
	"fmt"
	"math"
)

// Grid is the minimum a grid must expose to be georeferenced on export.
type Grid interface {
	NumberOfNodeRows() int
	NumberOfNodeColumns() int
	// Dx is the uniform (square) cell size.
	Dx() float64
	// Origin is the lower-left corner.
	Origin() (x, y float64)
}

// Descriptor is an immutable snapshot of a grid's layout.
type Descriptor struct {
	Rows     int
	Columns  int
	CellSize float64
	OriginX  float64
	OriginY  float64
}

// DescriptorOf copies the layout of any Grid.
func DescriptorOf(g Grid) Descriptor {
	x, y := g.Origin()
	return Descriptor{
		Rows:     g.NumberOfNodeRows(),
		Columns:  g.NumberOfNodeColumns(),
		CellSize: g.Dx(),
		OriginX:  x,
		OriginY:  y,
	}
}

func (d Descriptor) NumberOfNodeRows() int    { return d.Rows }
func (d Descriptor) NumberOfNodeColumns() int { return d.Columns }
func (d Descriptor) Dx() float64              { return d.CellSize }
func (d Descriptor) Origin() (x, y float64)   { return d.OriginX, d.OriginY }

// Len is the number of nodes, rows × columns. Only meaningful for a
// descriptor that passes Validate.
func (d Descriptor) Len() int { return d.Rows * d.Columns }

// Validate checks that the descriptor describes a non-empty grid with a
// finite, positive cell size and a finite origin, and that Len does not
// overflow int.
func (d Descriptor) Validate() error {
	if d.Rows <= 0 || d.Columns <= 0 {
		return fmt.Errorf("%w: shape %dx%d must be positive", ErrInvalidGrid, d.Rows, d.Columns)
	}
	if d.Rows > math.MaxInt/d.Columns {
		return fmt.Errorf("%w: shape %dx%d overflows the node count", ErrInvalidGrid, d.Rows, d.Columns)
	}
	if !(d.CellSize > 0) || math.IsInf(d.CellSize, 0) {
		return fmt.Errorf("%w: cellsize %v must be positive and finite", ErrInvalidGrid, d.CellSize)
	}
	if isNonFinite(d.OriginX) || isNonFinite(d.OriginY) {
		return fmt.Errorf("%w: origin (%v, %v) must be finite", ErrInvalidGrid, d.OriginX, d.OriginY)
	}
	return nil
}

// CheckField reports ErrShapeMismatch when field does not cover the grid.
func (d Descriptor) CheckField(field []float64) error {
	if len(field) != d.Len() {
		return fmt.Errorf("%w: field has %d values, grid %dx%d needs %d",
			ErrShapeMismatch, len(field), d.Rows, d.Columns, d.Len())
	}
	return nil
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
