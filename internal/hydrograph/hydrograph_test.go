package hydrograph

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrotools/flowpost/internal/fsutil"
)

const sample = "0 0.0 0.0 0.0 0.0 0.0\n" +
	"60 1.5 0.2 0.0 3.25 4.0\n" +
	"\n" +
	"120 2.5 0.4 0.1 6.5 8.0\n"

func TestParse(t *testing.T) {
	t.Parallel()
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	want := &Series{
		Time: []float64{0, 60, 120},
		Flows: [][]float64{
			{0, 1.5, 2.5},
			{0, 0.2, 0.4},
			{0, 0, 0.1},
			{0, 3.25, 6.5},
			{0, 4, 8},
		},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 5, s.Columns())
	assert.Equal(t, 3, s.Len())
}

func TestParse_SingleRecord(t *testing.T) {
	t.Parallel()
	s, err := Parse([]byte("30 1 2\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{30}, s.Time)
	assert.Equal(t, [][]float64{{1}, {2}}, s.Flows)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"empty":         "",
		"blank only":    "\n\n  \n",
		"time only":     "0\n",
		"ragged":        "0 1 2\n60 1\n",
		"bad time":      "t0 1\n",
		"bad discharge": "0 one\n",
	}
	for name, src := range tests {
		src := src
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(src))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/output0_link_surface_water__discharge.txt", []byte(sample), 0o644))

	s, err := Load(mfs, "/output0_link_surface_water__discharge.txt")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	_, err = Load(mfs, "/missing.txt")
	assert.Error(t, err)
}

func newSeries(t *testing.T) *Series {
	t.Helper()
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	return s
}

func TestRender_PNG(t *testing.T) {
	t.Parallel()
	mfs := fsutil.NewMemoryFileSystem()

	require.NoError(t, Render(mfs, newSeries(t), DefaultOptions(), "/discharge.png"))

	data, err := mfs.ReadFile("/discharge.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")), "expected PNG signature")
}

func TestRender_SVG(t *testing.T) {
	t.Parallel()
	mfs := fsutil.NewMemoryFileSystem()

	require.NoError(t, Render(mfs, newSeries(t), DefaultOptions(), "/discharge.SVG"))

	data, err := mfs.ReadFile("/discharge.SVG")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestRender_HTML(t *testing.T) {
	t.Parallel()
	mfs := fsutil.NewMemoryFileSystem()

	require.NoError(t, Render(mfs, newSeries(t), DefaultOptions(), "/discharge.html"))

	data, err := mfs.ReadFile("/discharge.html")
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "Discharge Over Time")
	assert.Contains(t, html, "18655")
	assert.Contains(t, html, "#ffa500")
}

func TestRender_UnsupportedFormat(t *testing.T) {
	t.Parallel()
	err := Render(fsutil.NewMemoryFileSystem(), newSeries(t), DefaultOptions(), "/discharge.bmp")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRender_MissingDirectory(t *testing.T) {
	t.Parallel()
	err := Render(fsutil.NewMemoryFileSystem(), newSeries(t), DefaultOptions(), "/plots/discharge.png")
	assert.Error(t, err)
}

func TestNewPlot_FixedAxes(t *testing.T) {
	t.Parallel()
	o := DefaultOptions()
	o.YMax = 10

	p, err := NewPlot(newSeries(t), o)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.X.Min)
	assert.Equal(t, 86400.0, p.X.Max)
	assert.Equal(t, 10.0, p.Y.Max)
	assert.Equal(t, "Discharge [m^3/s]", p.Y.Label.Text)
}

func TestOptionsLabelFallback(t *testing.T) {
	t.Parallel()
	o := Options{Labels: []string{"outlet", ""}}
	assert.Equal(t, "outlet", o.label(0))
	assert.Equal(t, "q1", o.label(1))
	assert.Equal(t, "q7", o.label(7))
}

func TestSeriesColors(t *testing.T) {
	t.Parallel()
	assert.Nil(t, seriesColors(0))

	five := seriesColors(5)
	assert.Equal(t, color.RGBA{B: 0xff, A: 0xff}, five[0])
	assert.Equal(t, "#ff0000", hexColor(five[4]))

	eight := seriesColors(8)
	require.Len(t, eight, 8)
	for i := 5; i < 8; i++ {
		assert.Equal(t, uint8(0xff), eight[i].A)
		assert.NotEqual(t, eight[i], eight[i-1])
	}
}
