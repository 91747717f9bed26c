package hydrograph

import (
	"fmt"
	"image/color"
)

// Options controls chart labelling and axis limits.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	XMin   float64
	XMax   float64
	YMin   float64
	YMax   float64
	// Labels names the discharge columns in order. Missing labels fall
	// back to "q<column>".
	Labels []string
	// LineWidth is in points.
	LineWidth float64
}

// DefaultOptions matches the reference watershed case: a one-day window
// and the five monitored links.
func DefaultOptions() Options {
	return Options{
		Title:     "Discharge Over Time",
		XLabel:    "Time [s]",
		YLabel:    "Discharge [m^3/s]",
		XMin:      0,
		XMax:      86400,
		YMin:      0,
		YMax:      80,
		Labels:    []string{"299", "1097", "1896", "18655", "19054"},
		LineWidth: 2,
	}
}

func (o Options) label(c int) string {
	if c < len(o.Labels) && o.Labels[c] != "" {
		return o.Labels[c]
	}
	return fmt.Sprintf("q%d", c)
}

// basePalette is blue, orange, green, purple, red.
var basePalette = []color.RGBA{
	{R: 0x00, G: 0x00, B: 0xff, A: 0xff},
	{R: 0xff, G: 0xa5, B: 0x00, A: 0xff},
	{R: 0x00, G: 0x80, B: 0x00, A: 0xff},
	{R: 0x80, G: 0x00, B: 0x80, A: 0xff},
	{R: 0xff, G: 0x00, B: 0x00, A: 0xff},
}

// seriesColors returns n colours: the base palette first, then evenly
// spaced hues for any extra columns.
func seriesColors(n int) []color.RGBA {
	if n <= 0 {
		return nil
	}
	colors := make([]color.RGBA, n)
	extra := n - len(basePalette)
	for i := range colors {
		if i < len(basePalette) {
			colors[i] = basePalette[i]
			continue
		}
		hue := float64(i-len(basePalette)) / float64(extra)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return colors
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
