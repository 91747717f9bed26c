package raster

import (
	"bufio"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/hydrotools/flowpost/internal/fsutil"
)

// NoData is the sentinel written to every header. Exported fields carry
// no masked nodes, so it never appears in the data rows.
const NoData = -9999

// Export writes field as an ASCII grid at path, replacing any existing file.
//
// The content goes to a hidden sibling file first and is renamed over path
// only once fully written and closed, so a failed export never leaves a
// truncated raster behind. Shape and descriptor errors are reported before
// the filesystem is touched.
func Export(fsys fsutil.FileSystem, field []float64, g Grid, path string) error {
	d := DescriptorOf(g)
	if err := d.Validate(); err != nil {
		return err
	}
	if err := d.CheckField(field); err != nil {
		return err
	}

	dir, base := filepath.Split(path)
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")

	f, err := fsys.Create(tmp)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = fsys.Remove(tmp)
		}
	}()

	if err := encode(f, toTopDown(field, d), d); err != nil {
		_ = f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err := fsys.Rename(tmp, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	committed = true
	return nil
}

// ExportFile is Export on the host filesystem.
func ExportFile(field []float64, g Grid, path string) error {
	return Export(fsutil.OSFileSystem{}, field, g, path)
}

// Encode writes the ASCII grid for field to w without touching any file.
func Encode(w io.Writer, field []float64, g Grid) error {
	d := DescriptorOf(g)
	if err := d.Validate(); err != nil {
		return err
	}
	if err := d.CheckField(field); err != nil {
		return err
	}
	return encode(w, toTopDown(field, d), d)
}

// toTopDown reshapes the bottom-up field and reverses its rows. The field
// backs the source matrix read-only.
func toTopDown(field []float64, d Descriptor) *mat.Dense {
	src := mat.NewDense(d.Rows, d.Columns, field)
	out := mat.NewDense(d.Rows, d.Columns, nil)
	for i := 0; i < d.Rows; i++ {
		out.SetRow(i, src.RawRowView(d.Rows-1-i))
	}
	return out
}

func encode(w io.Writer, m *mat.Dense, d Descriptor) error {
	bw := bufio.NewWriter(w)

	header := []string{
		"nrows " + strconv.Itoa(d.Rows),
		"cellsize " + formatHeaderFloat(d.CellSize),
		"xllcorner " + formatHeaderFloat(d.OriginX),
		"ncols " + strconv.Itoa(d.Columns),
		"yllcorner " + formatHeaderFloat(d.OriginY),
		"nodata_value " + strconv.Itoa(NoData),
	}
	if _, err := bw.WriteString(strings.Join(header, "\n") + "\n"); err != nil {
		return err
	}

	rows, _ := m.Dims()
	line := make([]byte, 0, 16*d.Columns)
	for i := 0; i < rows; i++ {
		line = line[:0]
		for j, v := range m.RawRowView(i) {
			if j > 0 {
				line = append(line, ' ')
			}
			line = strconv.AppendFloat(line, v, 'f', 3, 64)
		}
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// formatHeaderFloat prints the shortest representation that round-trips,
// keeping a ".0" on integral values so 10 reads as the real 10.0. Magnitudes
// of 1e16 and above, or below 1e-4, switch to exponent form (1e+16, 1e-05).
func formatHeaderFloat(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if a := math.Abs(v); a >= 1e16 || (a != 0 && a < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
