// Package snapshot writes the periodic outputs of a running overland-flow
// simulation: water depth, bed elevation and bed change rasters plus the
// discharge hydrograph.
//
// The simulation loop owns the countdown. It calls Step once per time step
// with the state returned by the previous call:
//
//	st := w.Start()
//	for t < tEnd {
//		... advance the model by dt ...
//		t += dt
//		st, _, err = w.Step(ctx, st, t, dt)
//	}
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/hydrotools/flowpost/internal/catalog"
	"github.com/hydrotools/flowpost/internal/fsutil"
	"github.com/hydrotools/flowpost/internal/hydrograph"
	"github.com/hydrotools/flowpost/internal/monitoring"
	"github.com/hydrotools/flowpost/internal/raster"
	"github.com/hydrotools/flowpost/internal/schedule"
	"github.com/hydrotools/flowpost/internal/timeutil"
)

// ErrConfig is returned by New for unusable configurations.
var ErrConfig = errors.New("snapshot: invalid configuration")

// FieldSource supplies node fields by name, e.g. a grid's at_node table.
type FieldSource interface {
	AtNode(name string) ([]float64, error)
}

// Recorder stores written artifacts. *catalog.Catalog implements it.
type Recorder interface {
	Record(ctx context.Context, e catalog.Entry) (int64, error)
}

// Config describes what a Writer produces and where.
type Config struct {
	OutputDir      string
	DepthField     string
	ElevationField string
	// DischargeFile is the router's discharge record. Relative paths are
	// resolved against OutputDir. Empty disables the hydrograph.
	DischargeFile string
	PlotFormat    string
	PlotOptions   hydrograph.Options
	Schedule      schedule.Schedule

	// Baseline is the initial elevation. When nil it is read from the
	// field source at construction.
	Baseline []float64
	// RunID tags catalog entries; a random UUID when empty.
	RunID string
	// Recorder is optional.
	Recorder Recorder
	// Clock times each snapshot for the log; the wall clock when nil.
	Clock timeutil.Clock
}

// Artifact is one file written by a snapshot.
type Artifact struct {
	Kind  string
	Field string
	Path  string
}

// Writer produces snapshots for one simulation run.
type Writer struct {
	fsys     fsutil.FileSystem
	grid     raster.Descriptor
	fields   FieldSource
	cfg      Config
	baseline []float64
}

// New validates cfg against the grid and captures the elevation baseline.
// The output directory is created if missing.
func New(fsys fsutil.FileSystem, g raster.Grid, fields FieldSource, cfg Config) (*Writer, error) {
	d := raster.DescriptorOf(g)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("%w: output directory is required", ErrConfig)
	}
	if cfg.DepthField == "" || cfg.ElevationField == "" {
		return nil, fmt.Errorf("%w: depth and elevation field names are required", ErrConfig)
	}
	if cfg.DischargeFile != "" {
		switch cfg.PlotFormat {
		case "png", "svg", "pdf", "html":
		default:
			return nil, fmt.Errorf("%w: plot format %q", ErrConfig, cfg.PlotFormat)
		}
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}

	baseline := cfg.Baseline
	if baseline == nil {
		var err error
		if baseline, err = fields.AtNode(cfg.ElevationField); err != nil {
			return nil, fmt.Errorf("read baseline %s: %w", cfg.ElevationField, err)
		}
	}
	if err := d.CheckField(baseline); err != nil {
		return nil, fmt.Errorf("baseline %s: %w", cfg.ElevationField, err)
	}

	if err := fsys.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &Writer{
		fsys:     fsys,
		grid:     d,
		fields:   fields,
		cfg:      cfg,
		baseline: append([]float64(nil), baseline...),
	}, nil
}

// RunID identifies this run in the catalog.
func (w *Writer) RunID() string { return w.cfg.RunID }

// Start returns the schedule state for the beginning of the run.
func (w *Writer) Start() schedule.State { return w.cfg.Schedule.Start() }

// Step advances the schedule by dt and writes a snapshot at time t when
// one is due. The advanced state is returned even on error so the caller
// can choose to skip the failed snapshot and continue.
func (w *Writer) Step(ctx context.Context, st schedule.State, t, dt float64) (schedule.State, []Artifact, error) {
	next, due := w.cfg.Schedule.Advance(st, dt)
	if !due {
		return next, nil, nil
	}
	arts, err := w.Snapshot(ctx, t, dt)
	return next, arts, err
}

// Snapshot writes every output for simulated time t. The first failure
// stops the snapshot; artifacts already written are returned with it.
func (w *Writer) Snapshot(ctx context.Context, t, dt float64) ([]Artifact, error) {
	monitoring.Logf("Elapsed time: %.1f s. Current dt = %.2f s - Saving plot", t, dt)
	started := w.cfg.Clock.Now()
	tag := TimeTag(t)

	var arts []Artifact
	emit := func(a Artifact) error {
		arts = append(arts, a)
		return w.record(ctx, t, a)
	}

	depth, err := w.fields.AtNode(w.cfg.DepthField)
	if err != nil {
		return arts, fmt.Errorf("read %s: %w", w.cfg.DepthField, err)
	}
	elev, err := w.fields.AtNode(w.cfg.ElevationField)
	if err != nil {
		return arts, fmt.Errorf("read %s: %w", w.cfg.ElevationField, err)
	}
	if err := w.grid.CheckField(elev); err != nil {
		return arts, fmt.Errorf("%s: %w", w.cfg.ElevationField, err)
	}
	change := make([]float64, len(elev))
	floats.SubTo(change, elev, w.baseline)

	rasters := []struct {
		prefix string
		field  string
		data   []float64
	}{
		{"depth", w.cfg.DepthField, depth},
		{"topographicElevation", w.cfg.ElevationField, elev},
		{"topographicVariation", w.cfg.ElevationField, change},
	}
	for _, r := range rasters {
		if err := ctx.Err(); err != nil {
			return arts, err
		}
		path := filepath.Join(w.cfg.OutputDir, r.prefix+"_"+tag+".asc")
		if err := raster.Export(w.fsys, r.data, w.grid, path); err != nil {
			return arts, fmt.Errorf("export %s: %w", r.prefix, err)
		}
		if err := emit(Artifact{Kind: catalog.KindRaster, Field: r.field, Path: path}); err != nil {
			return arts, err
		}
	}

	if w.cfg.DischargeFile != "" {
		if err := ctx.Err(); err != nil {
			return arts, err
		}
		path, err := w.plotDischarge(tag)
		if err != nil {
			return arts, err
		}
		if err := emit(Artifact{Kind: catalog.KindHydrograph, Path: path}); err != nil {
			return arts, err
		}
	}

	monitoring.Logf("snapshot %s: %d files in %v", tag, len(arts), w.cfg.Clock.Since(started))
	return arts, nil
}

func (w *Writer) plotDischarge(tag string) (string, error) {
	src := w.cfg.DischargeFile
	if !filepath.IsAbs(src) {
		src = filepath.Join(w.cfg.OutputDir, src)
	}
	if !w.fsys.Exists(src) {
		return "", fmt.Errorf("discharge file %s not found: %w", src, fs.ErrNotExist)
	}
	series, err := hydrograph.Load(w.fsys, src)
	if err != nil {
		return "", err
	}
	path := filepath.Join(w.cfg.OutputDir, "discharge_"+tag+"."+w.cfg.PlotFormat)
	if err := hydrograph.Render(w.fsys, series, w.cfg.PlotOptions, path); err != nil {
		return "", err
	}
	return path, nil
}

func (w *Writer) record(ctx context.Context, t float64, a Artifact) error {
	if w.cfg.Recorder == nil {
		return nil
	}
	e := catalog.Entry{
		RunID:   w.cfg.RunID,
		SimTime: t,
		Kind:    a.Kind,
		Field:   a.Field,
		Path:    a.Path,
	}
	if a.Kind == catalog.KindRaster {
		e.Rows, e.Columns = w.grid.Rows, w.grid.Columns
	}
	if _, err := w.cfg.Recorder.Record(ctx, e); err != nil {
		return fmt.Errorf("catalog %s: %w", a.Path, err)
	}
	return nil
}

// TimeTag formats simulated time for file names: rounded half to even to
// whole seconds and printed with one decimal, e.g. 3600.0.
func TimeTag(t float64) string {
	return strconv.FormatFloat(scalar.RoundEven(t, 0), 'f', 1, 64)
}
