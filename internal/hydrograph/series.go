// Package hydrograph loads discharge time series written by the flow
// router and renders them as line charts.
package hydrograph

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hydrotools/flowpost/internal/fsutil"
)

// ErrMalformed means the discharge file could not be parsed.
var ErrMalformed = errors.New("hydrograph: malformed discharge file")

// Series is a discharge record: one time axis shared by every link.
type Series struct {
	Time []float64
	// Flows[c][i] is the discharge of link column c at Time[i].
	Flows [][]float64
}

// Columns is the number of discharge columns.
func (s *Series) Columns() int { return len(s.Flows) }

// Len is the number of records.
func (s *Series) Len() int { return len(s.Time) }

// Load reads a whitespace-delimited discharge file. Each non-blank line is
// `time q0 q1 ... qn`; a file holding a single record is valid.
func Load(fsys fsutil.FileSystem, path string) (*Series, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read discharge file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes discharge records from data.
func Parse(data []byte) (*Series, error) {
	s := &Series{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		tokens := strings.Fields(sc.Text())
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) < 2 {
			return nil, fmt.Errorf("%w: line %d: need a time and at least one discharge", ErrMalformed, lineNo)
		}
		if s.Flows == nil {
			s.Flows = make([][]float64, len(tokens)-1)
		} else if len(tokens)-1 != len(s.Flows) {
			return nil, fmt.Errorf("%w: line %d: %d columns, expected %d", ErrMalformed, lineNo, len(tokens), len(s.Flows)+1)
		}

		t, err := strconv.ParseFloat(tokens[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: time %q", ErrMalformed, lineNo, tokens[0])
		}
		s.Time = append(s.Time, t)
		for c, tok := range tokens[1:] {
			q, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: discharge %q", ErrMalformed, lineNo, tok)
			}
			s.Flows[c] = append(s.Flows[c], q)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(s.Time) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrMalformed)
	}
	return s, nil
}
