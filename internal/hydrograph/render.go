package hydrograph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/hydrotools/flowpost/internal/fsutil"
)

// ErrUnsupportedFormat is returned by Render for unknown file extensions.
var ErrUnsupportedFormat = errors.New("hydrograph: unsupported output format")

const (
	imageWidth  = 8 * vg.Inch
	imageHeight = 5 * vg.Inch
)

// Render writes the chart to path, choosing the renderer by extension:
// .png, .svg and .pdf through gonum/plot, .html through go-echarts.
func Render(fsys fsutil.FileSystem, s *Series, o Options, path string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg", "pdf":
		return RenderImage(fsys, s, o, path, ext)
	case "html":
		return RenderHTML(fsys, s, o, path)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// NewPlot builds the gonum plot for s without drawing it.
func NewPlot(s *Series, o Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = o.XLabel
	p.Y.Label.Text = o.YLabel

	colors := seriesColors(s.Columns())
	for c, flows := range s.Flows {
		pts := make(plotter.XYs, len(flows))
		for i, q := range flows {
			pts[i] = plotter.XY{X: s.Time[i], Y: q}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("create line for %s: %w", o.label(c), err)
		}
		line.Width = vg.Points(o.LineWidth)
		line.Color = colors[c]
		p.Add(line)
		p.Legend.Add(o.label(c), line)
	}

	// Fixed limits are applied after Add, which widens axes to the data.
	p.X.Min, p.X.Max = o.XMin, o.XMax
	p.Y.Min, p.Y.Max = o.YMin, o.YMax

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// RenderImage draws s with gonum/plot in the given format ("png", "svg",
// "pdf") and writes it to path.
func RenderImage(fsys fsutil.FileSystem, s *Series, o Options, path, format string) error {
	p, err := NewPlot(s, o)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(imageWidth, imageHeight, format)
	if err != nil {
		return fmt.Errorf("prepare %s plot: %w", format, err)
	}
	return writeTo(fsys, path, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
}

// NewChart builds the go-echarts line chart for s.
func NewChart(s *Series, o Options) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.Title, Width: "1000px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: o.XLabel, NameLocation: "middle", NameGap: 25, Min: o.XMin, Max: o.XMax}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: o.YLabel, NameLocation: "middle", NameGap: 40, Min: o.YMin, Max: o.YMax}),
	)

	colors := seriesColors(s.Columns())
	for c, flows := range s.Flows {
		data := make([]opts.LineData, len(flows))
		for i, q := range flows {
			data[i] = opts.LineData{Value: []interface{}{s.Time[i], q}}
		}
		line.AddSeries(o.label(c), data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: float32(o.LineWidth), Color: hexColor(colors[c])}),
		)
	}
	return line
}

// RenderHTML writes an interactive go-echarts page to path.
func RenderHTML(fsys fsutil.FileSystem, s *Series, o Options, path string) error {
	line := NewChart(s, o)
	return writeTo(fsys, path, line.Render)
}

func writeTo(fsys fsutil.FileSystem, path string, draw func(io.Writer) error) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := draw(bw); err != nil {
		_ = f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
