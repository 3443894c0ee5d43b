package chart

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Series is one named set of points.
type Series struct {
	Name string
	X, Y []float64
}

// Sample is one named set of values for a histogram.
type Sample struct {
	Name   string
	Values []float64
}

// Scatter draws each series in its own color with a legend. Series without
// points are left out; points with a NaN coordinate are dropped.
func Scatter(path string, fig Figure, series ...Series) error {
	p := newPlot(fig)
	p.Legend.Top = true
	for i, s := range series {
		xys := points(s.X, s.Y)
		if len(xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return errors.Wrapf(err, "scatter %s", s.Name)
		}
		sc.GlyphStyle.Color = seriesColor(i, 128)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(1.2)
		p.Add(sc)
		p.Legend.Add(s.Name, sc)
	}
	return save(p, fig, path)
}

func points(x, y []float64) plotter.XYs {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xys := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xys = append(xys, plotter.XY{X: x[i], Y: y[i]})
	}
	return xys
}

// Histogram overlays one density histogram per sample. All samples share the
// same bin edges across their combined range; each histogram integrates to 1.
func Histogram(path string, fig Figure, bins int, samples ...Sample) error {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		for _, v := range s.Values {
			if !math.IsNaN(v) {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
		}
	}

	p := newPlot(fig)
	p.Legend.Top = true
	if lo <= hi {
		for i, s := range samples {
			h := DensityBins(s.Values, bins, lo, hi)
			if h == nil {
				continue
			}
			hist := &plotter.Histogram{
				Bins:      h,
				Width:     h[0].Max - h[0].Min,
				FillColor: seriesColor(i, 153),
				LineStyle: plotter.DefaultLineStyle,
			}
			hist.LineStyle.Width = vg.Points(0.5)
			p.Add(hist)
			p.Legend.Add(s.Name, hist)
		}
	}
	return save(p, fig, path)
}

// DensityBins splits [lo, hi] into n equal bins and weights each by
// count/(total*width), so the bins integrate to 1. The last bin is closed on
// the right. A zero-width range is widened to one unit centred on lo. It
// returns nil when values holds no number.
func DensityBins(values []float64, n int, lo, hi float64) []plotter.HistogramBin {
	if n < 1 {
		n = 1
	}
	if hi <= lo {
		lo, hi = lo-0.5, lo+0.5
	}
	width := (hi - lo) / float64(n)
	out := make([]plotter.HistogramBin, n)
	for i := range out {
		out[i].Min = lo + float64(i)*width
		out[i].Max = lo + float64(i+1)*width
	}

	total := 0
	for _, v := range values {
		if math.IsNaN(v) || v < lo || v > hi {
			continue
		}
		k := int((v - lo) / width)
		if k >= n {
			k = n - 1
		}
		out[k].Weight++
		total++
	}
	if total == 0 {
		return nil
	}
	for i := range out {
		out[i].Weight /= float64(total) * width
	}
	return out
}

// Bar draws one bar per label in the given order. With rotate set the tick
// labels are tilted so long category names do not overlap.
func Bar(path string, fig Figure, labels []string, values []float64, rotate bool) error {
	if len(labels) != len(values) {
		return errors.Errorf("bar chart: %d labels for %d values", len(labels), len(values))
	}
	if len(values) == 0 {
		return errors.New("bar chart: no data")
	}
	p := newPlot(fig)
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(barWidth(fig, len(values))))
	if err != nil {
		return errors.Wrap(err, "bar chart")
	}
	bars.Color = Blue
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)
	p.Y.Min = 0
	if rotate {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = text.XRight
		p.X.Tick.Label.YAlign = text.YCenter
	}
	return save(p, fig, path)
}

// barWidth fills about 70% of the room each category gets.
func barWidth(fig Figure, n int) float64 {
	w := fig.Width.Points() * 0.7 * 0.7 / float64(n)
	if w < 2 {
		w = 2
	}
	return w
}
