// Package testutil provides shared test utilities and fixtures.
//
// This package centralises the grids, fields and discharge records used by
// the snapshot and CLI tests.
package testutil

import (
	"fmt"
	"strings"

	"github.com/hydrotools/flowpost/internal/raster"
)

// SmallGrid is the 2×3, 10 m grid used throughout the raster examples.
func SmallGrid() raster.Descriptor {
	return raster.Descriptor{Rows: 2, Columns: 3, CellSize: 10}
}

// Ramp returns n values start, start+step, ...
func Ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Fields is an in-memory node field table.
type Fields map[string][]float64

// AtNode returns the named field.
func (f Fields) AtNode(name string) ([]float64, error) {
	v, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("no node field %q", name)
	}
	return v, nil
}

// DischargeRecord renders rows of `time q0 q1 ...` in the router's format.
func DischargeRecord(rows ...[]float64) string {
	var b strings.Builder
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%g", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
