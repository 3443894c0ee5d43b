// Package chart renders the static PNG figures of the report jobs with
// gonum/plot. Every function writes one file and overwrites any existing one.
package chart

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Figure holds the frame of one chart.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
	DPI    int
}

// Colors of the first two series (stayed, left).
var (
	Blue   = color.NRGBA{R: 31, G: 119, B: 180, A: 255}
	Orange = color.NRGBA{R: 255, G: 127, B: 14, A: 255}
)

// seriesColors are assigned to series in order.
var seriesColors = []color.NRGBA{Blue, Orange,
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
}

func seriesColor(i int, alpha uint8) color.NRGBA {
	c := seriesColors[i%len(seriesColors)]
	c.A = alpha
	return c
}

func newPlot(fig Figure) *plot.Plot {
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel
	return p
}

// save renders p at fig's size and resolution and writes it as PNG.
func save(p *plot.Plot, fig Figure, path string) error {
	return saveCanvas(fig, path, p.Draw)
}

// saveCanvas lets drawFn fill a canvas of fig's size and writes it as PNG.
func saveCanvas(fig Figure, path string, drawFn func(draw.Canvas)) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create image directory")
	}
	c := vgimg.NewWith(vgimg.UseWH(fig.Width, fig.Height), vgimg.UseDPI(fig.DPI))
	drawFn(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
