package raster

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hydrotools/flowpost/internal/fsutil"
)

// maxLine bounds a single data row; wide grids produce long lines.
const maxLine = 64 << 20

// maxPrealloc caps the value buffer sized from the header, which is
// untrusted until the values have actually been read.
const maxPrealloc = 1 << 20

// Raster is a decoded ASCII grid with its field back in bottom-up order.
type Raster struct {
	Descriptor
	NoData float64
	Field  []float64
}

// Read loads and decodes the ASCII grid at path.
func Read(fsys fsutil.FileSystem, path string) (*Raster, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	r, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Decode parses an ASCII grid. Header keys are matched case-insensitively
// and in any order; data values may wrap across lines as long as the total
// count is nrows × ncols.
func Decode(r io.Reader) (*Raster, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var (
		out    = &Raster{NoData: NoData}
		seen   = map[string]bool{}
		values []float64
		inData bool
		lineNo int
	)

	for sc.Scan() {
		lineNo++
		tokens := strings.Fields(sc.Text())
		if len(tokens) == 0 {
			continue
		}

		if !inData {
			if _, err := strconv.ParseFloat(tokens[0], 64); err == nil {
				if err := checkHeader(seen); err != nil {
					return nil, err
				}
				if err := out.Descriptor.Validate(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
				}
				values = make([]float64, 0, min(out.Len(), maxPrealloc))
				inData = true
			} else {
				if err := parseHeaderLine(out, seen, tokens, lineNo); err != nil {
					return nil, err
				}
				continue
			}
		}

		for _, tok := range tokens {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad value %q", ErrMalformed, lineNo, tok)
			}
			values = append(values, v)
		}
		if len(values) > out.Len() {
			return nil, fmt.Errorf("%w: more than %d values", ErrMalformed, out.Len())
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !inData {
		if err := checkHeader(seen); err != nil {
			return nil, err
		}
		if err := out.Descriptor.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	if len(values) != out.Len() {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrMalformed, len(values), out.Len())
	}

	out.Field = toBottomUp(values, out.Descriptor)
	return out, nil
}

func parseHeaderLine(out *Raster, seen map[string]bool, tokens []string, lineNo int) error {
	key := strings.ToLower(tokens[0])
	if len(tokens) != 2 {
		return fmt.Errorf("%w: line %d: header %q needs exactly one value", ErrMalformed, lineNo, key)
	}
	if seen[key] {
		return fmt.Errorf("%w: line %d: duplicate header %q", ErrMalformed, lineNo, key)
	}
	val := tokens[1]

	var err error
	switch key {
	case "nrows":
		out.Rows, err = strconv.Atoi(val)
	case "ncols":
		out.Columns, err = strconv.Atoi(val)
	case "cellsize":
		out.CellSize, err = strconv.ParseFloat(val, 64)
	case "xllcorner":
		out.OriginX, err = strconv.ParseFloat(val, 64)
	case "yllcorner":
		out.OriginY, err = strconv.ParseFloat(val, 64)
	case "nodata_value":
		out.NoData, err = strconv.ParseFloat(val, 64)
	case "xllcenter", "yllcenter":
		return fmt.Errorf("%w: line %d: cell-centre registration (%s) is not supported", ErrMalformed, lineNo, key)
	default:
		return fmt.Errorf("%w: line %d: unknown header %q", ErrMalformed, lineNo, key)
	}
	if err != nil {
		return fmt.Errorf("%w: line %d: %s: %v", ErrMalformed, lineNo, key, err)
	}
	seen[key] = true
	return nil
}

func checkHeader(seen map[string]bool) error {
	for _, k := range []string{"nrows", "ncols", "cellsize", "xllcorner", "yllcorner"} {
		if !seen[k] {
			return fmt.Errorf("%w: missing header %q", ErrMalformed, k)
		}
	}
	return nil
}

// toBottomUp undoes the export flip: file row i is field row rows-1-i.
func toBottomUp(values []float64, d Descriptor) []float64 {
	field := make([]float64, len(values))
	for i := 0; i < d.Rows; i++ {
		copy(field[(d.Rows-1-i)*d.Columns:(d.Rows-i)*d.Columns], values[i*d.Columns:(i+1)*d.Columns])
	}
	return field
}
