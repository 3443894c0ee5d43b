package chart

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
)

func testFigure() Figure {
	return Figure{Title: "t", XLabel: "x", YLabel: "y", Width: 2 * vg.Inch, Height: 1 * vg.Inch, DPI: 100}
}

func requirePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, w, cfg.Width)
	assert.Equal(t, h, cfg.Height)
}

func TestScatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img", "scatter.png")
	err := Scatter(path, testFigure(),
		Series{Name: "Stayed", X: []float64{0.1, 0.5}, Y: []float64{150, 200}},
		Series{Name: "Left", X: nil, Y: nil},
	)
	require.NoError(t, err)
	requirePNG(t, path, 200, 100)
}

func TestHistogram_SingleValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.png")
	err := Histogram(path, testFigure(), 20,
		Sample{Name: "Stayed", Values: []float64{0.5, 0.5}},
		Sample{Name: "Left"},
	)
	require.NoError(t, err)
	requirePNG(t, path, 200, 100)
}

func TestDensityBins(t *testing.T) {
	bins := DensityBins([]float64{0, 0.1, 0.6, 1}, 2, 0, 1)
	require.Len(t, bins, 2)
	assert.InDelta(t, 1.0, bins[0].Weight, 1e-12) // 2 of 4 values, width 0.5
	assert.InDelta(t, 1.0, bins[1].Weight, 1e-12)

	area := 0.0
	for _, b := range DensityBins([]float64{0.2, 0.3, 0.35, 0.9}, 10, 0, 1) {
		area += b.Weight * (b.Max - b.Min)
	}
	assert.InDelta(t, 1.0, area, 1e-12)

	assert.Nil(t, DensityBins(nil, 5, 0, 1))
}

func TestBar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bar.png")
	require.NoError(t, Bar(path, testFigure(), []string{"sales", "hr"}, []float64{0.3, 0.2}, true))
	requirePNG(t, path, 200, 100)

	assert.Error(t, Bar(filepath.Join(dir, "bad.png"), testFigure(), []string{"a"}, nil, false))
	assert.Error(t, Bar(filepath.Join(dir, "empty.png"), testFigure(), nil, nil, false))
}

func TestConfusionMatrix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cm.png")
	cm := [2][2]int{{10, 2}, {3, 5}}
	require.NoError(t, ConfusionMatrix(path, testFigure(), cm, [2]string{"Stayed (0)", "Left (1)"}))
	requirePNG(t, path, 200, 100)
}

func TestConfusionMatrix_Uniform(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cm.png")
	cm := [2][2]int{{0, 0}, {0, 0}}
	require.NoError(t, ConfusionMatrix(path, testFigure(), cm, [2]string{"Stayed (0)", "Left (1)"}))
}

func TestConfusionMatrix_DrawsColorBar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cm.png")
	fig := Figure{Width: 4 * vg.Inch, Height: 3 * vg.Inch, DPI: 100}
	require.NoError(t, ConfusionMatrix(path, fig, [2][2]int{{40, 2}, {3, 5}}, [2]string{"a", "b"}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	// The right strip holds only the bar and its axis, so any blue there is the bar.
	b := img.Bounds()
	blue := 0
	for x := b.Max.X - int(float64(b.Dx())*colorBarWidth); x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			r, _, bl, _ := img.At(x, y).RGBA()
			if bl>>8 > r>>8+60 {
				blue++
			}
		}
	}
	assert.Greater(t, blue, 0)
}

func TestBluesMap(t *testing.T) {
	m := &bluesMap{min: 0, max: 10, alpha: 1}
	lo, err := m.At(0)
	require.NoError(t, err)
	assert.Equal(t, color.Color(bluesLo), lo)
	hi, err := m.At(10)
	require.NoError(t, err)
	assert.Equal(t, color.Color(bluesHi), hi)

	_, err = m.At(-1)
	assert.ErrorIs(t, err, palette.ErrUnderflow)
	_, err = m.At(11)
	assert.ErrorIs(t, err, palette.ErrOverflow)
}

func TestMatrixGrid_ActualZeroOnTop(t *testing.T) {
	g := matrixGrid{{10, 2}, {3, 5}}
	// Top row (r=1) is actual class 0.
	assert.Equal(t, 10.0, g.Z(0, 1))
	assert.Equal(t, 2.0, g.Z(1, 1))
	assert.Equal(t, 3.0, g.Z(0, 0))
}

func TestBlues(t *testing.T) {
	cols := Blues(3).Colors()
	require.Len(t, cols, 3)
	r, g, b, _ := cols[0].RGBA()
	assert.Greater(t, r+g+b, uint32(0))
}
