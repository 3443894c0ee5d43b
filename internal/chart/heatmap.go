package chart

import (
	"fmt"
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg/draw"
)

// ramp is a palette given by its colors.
type ramp []color.Color

func (r ramp) Colors() []color.Color { return r }

var (
	bluesLo = color.NRGBA{R: 247, G: 251, B: 255, A: 255}
	bluesHi = color.NRGBA{R: 8, G: 48, B: 107, A: 255}
)

// blueAt is the Blues color at t in [0, 1].
func blueAt(t float64) color.NRGBA {
	return color.NRGBA{
		R: lerp(bluesLo.R, bluesHi.R, t),
		G: lerp(bluesLo.G, bluesHi.G, t),
		B: lerp(bluesLo.B, bluesHi.B, t),
		A: 255,
	}
}

// Blues runs from near white to dark blue in n steps.
func Blues(n int) palette.Palette {
	if n < 2 {
		n = 2
	}
	out := make(ramp, n)
	for i := range out {
		out[i] = blueAt(float64(i) / float64(n-1))
	}
	return out
}

// bluesMap is the continuous Blues ramp over [min, max], for the color bar.
type bluesMap struct {
	min, max, alpha float64
}

func (m *bluesMap) At(v float64) (color.Color, error) {
	switch {
	case v < m.min:
		return nil, palette.ErrUnderflow
	case v > m.max:
		return nil, palette.ErrOverflow
	}
	t := 0.0
	if m.max > m.min {
		t = (v - m.min) / (m.max - m.min)
	}
	c := blueAt(t)
	c.A = uint8(255*m.alpha + 0.5)
	return c, nil
}

func (m *bluesMap) Max() float64 { return m.max }
func (m *bluesMap) SetMax(v float64) { m.max = v }
func (m *bluesMap) Min() float64 { return m.min }
func (m *bluesMap) SetMin(v float64) { m.min = v }
func (m *bluesMap) Alpha() float64 { return m.alpha }
func (m *bluesMap) SetAlpha(a float64) { m.alpha = a }
func (m *bluesMap) Palette(n int) palette.Palette { return Blues(n) }

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// matrixGrid lays a 2x2 confusion matrix out for a heat map. Grid row 0 is
// drawn at the bottom, so actual class 0 sits in grid row 1 to appear on top.
type matrixGrid [2][2]int

func (g matrixGrid) Dims() (c, r int)   { return 2, 2 }
func (g matrixGrid) Z(c, r int) float64 { return float64(g[1-r][c]) }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }

// colorBarWidth is the share of the figure width given to the color bar.
const colorBarWidth = 0.2

// ConfusionMatrix draws cm (rows actual, columns predicted) as an annotated
// heat map with a color bar on the right. labels name class 0 then class 1.
func ConfusionMatrix(path string, fig Figure, cm [2][2]int, labels [2]string) error {
	g := matrixGrid(cm)
	pal := Blues(64)

	hm := plotter.NewHeatMap(g, pal)
	lo, hi := cm[0][0], cm[0][0]
	for _, row := range cm {
		for _, v := range row {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	hm.Min, hm.Max = float64(lo), float64(hi)
	if hi == lo {
		hm.Max = hm.Min + 1
	}

	p := newPlot(fig)
	if fig.XLabel == "" {
		p.X.Label.Text = "Predicted label"
	}
	if fig.YLabel == "" {
		p.Y.Label.Text = "True label"
	}
	p.Add(hm)

	var cells plotter.XYLabels
	thresh := float64(hi) / 2
	dark := make([]bool, 0, 4)
	for actual := 0; actual < 2; actual++ {
		for pred := 0; pred < 2; pred++ {
			v := cm[actual][pred]
			cells.XYs = append(cells.XYs, plotter.XY{X: float64(pred), Y: float64(1 - actual)})
			cells.Labels = append(cells.Labels, fmt.Sprintf("%d", v))
			dark = append(dark, float64(v) > thresh)
		}
	}
	annotations, err := plotter.NewLabels(cells)
	if err != nil {
		return errors.Wrap(err, "confusion matrix labels")
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = text.XCenter
		annotations.TextStyle[i].YAlign = text.YCenter
		if dark[i] {
			annotations.TextStyle[i].Color = color.White
		} else {
			annotations.TextStyle[i].Color = color.Black
		}
	}
	p.Add(annotations)

	p.X.Tick.Marker = plot.ConstantTicks([]plot.Tick{
		{Value: 0, Label: labels[0]},
		{Value: 1, Label: labels[1]},
	})
	p.Y.Tick.Marker = plot.ConstantTicks([]plot.Tick{
		{Value: 0, Label: labels[1]},
		{Value: 1, Label: labels[0]},
	})

	bar := plot.New()
	bar.Add(&plotter.ColorBar{
		ColorMap: &bluesMap{min: hm.Min, max: hm.Max, alpha: 1},
		Vertical: true,
		Colors:   64,
	})
	bar.HideX()
	bar.Y.Padding = 0

	barW := fig.Width * colorBarWidth
	return saveCanvas(fig, path, func(c draw.Canvas) {
		p.Draw(draw.Crop(c, 0, -barW, 0, 0))
		bar.Draw(draw.Crop(c, fig.Width-barW, 0, 0, 0))
	})
}
