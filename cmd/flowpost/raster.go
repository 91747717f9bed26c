package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/hydrotools/flowpost/internal/fsutil"
	"github.com/hydrotools/flowpost/internal/raster"
)

func runRaster(args []string, stdout io.Writer) error {
	fs := newFlagSet("raster", stdout)
	fieldPath := fs.String("field", "", "Node field text file, bottom row first (required)")
	rows := fs.Int("rows", 0, "Number of node rows (required)")
	cols := fs.Int("cols", 0, "Number of node columns (required)")
	dx := fs.Float64("dx", 1, "Cell size")
	x0 := fs.Float64("x0", 0, "X of the lower-left corner")
	y0 := fs.Float64("y0", 0, "Y of the lower-left corner")
	out := fs.String("o", "", "Output .asc path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fieldPath == "" || *out == "" {
		return fmt.Errorf("raster: -field and -o are required")
	}

	data, err := os.ReadFile(*fieldPath)
	if err != nil {
		return fmt.Errorf("read field: %w", err)
	}
	field, err := parseField(data)
	if err != nil {
		return fmt.Errorf("%s: %w", *fieldPath, err)
	}

	g := raster.Descriptor{Rows: *rows, Columns: *cols, CellSize: *dx, OriginX: *x0, OriginY: *y0}
	if err := raster.ExportFile(field, g, *out); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d x %d)\n", *out, *rows, *cols)
	return nil
}

func parseField(data []byte) ([]float64, error) {
	tokens := strings.Fields(string(data))
	field := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		field[i] = v
	}
	return field, nil
}

func runInfo(args []string, stdout io.Writer) error {
	fs := newFlagSet("info", stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("info: expected one .asc path")
	}

	r, err := raster.Read(fsutil.OSFileSystem{}, fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "nrows     %d\n", r.Rows)
	fmt.Fprintf(stdout, "ncols     %d\n", r.Columns)
	fmt.Fprintf(stdout, "cellsize  %g\n", r.CellSize)
	fmt.Fprintf(stdout, "xllcorner %g\n", r.OriginX)
	fmt.Fprintf(stdout, "yllcorner %g\n", r.OriginY)
	fmt.Fprintf(stdout, "nodata    %g\n", r.NoData)

	valid := make([]float64, 0, len(r.Field))
	for _, v := range r.Field {
		if v != r.NoData {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		fmt.Fprintln(stdout, "no data")
		fmt.Fprintf(stdout, "nodata    %d cells\n", len(r.Field))
		return nil
	}
	fmt.Fprintf(stdout, "min       %.3f\n", floats.Min(valid))
	fmt.Fprintf(stdout, "max       %.3f\n", floats.Max(valid))
	fmt.Fprintf(stdout, "mean      %.3f\n", floats.Sum(valid)/float64(len(valid)))
	fmt.Fprintf(stdout, "nodata    %d cells\n", len(r.Field)-len(valid))
	return nil
}
