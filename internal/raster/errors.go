package raster

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch means the field length is not rows × columns.
	ErrShapeMismatch = errors.New("raster: field length does not match grid shape")

	// ErrInvalidGrid means the descriptor cannot describe a raster.
	ErrInvalidGrid = errors.New("raster: invalid grid descriptor")

	// ErrIO matches every *IOError via errors.Is.
	ErrIO = errors.New("raster: i/o failure")

	// ErrMalformed means an ASCII grid file could not be parsed.
	ErrMalformed = errors.New("raster: malformed ascii grid")
)

// IOError records a filesystem failure while writing or reading a raster.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("raster: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrIO) match any IOError.
func (e *IOError) Is(target error) bool { return target == ErrIO }
