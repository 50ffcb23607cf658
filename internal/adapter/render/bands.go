// Package render draws filled-contour SST maps as PNG images.
package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot/palette"
)

// Extend selects how values outside the contour levels are painted.
type Extend int

const (
	// ExtendBoth paints values below the first level with the first band
	// and values above the last level with the last band.
	ExtendBoth Extend = iota
	// ExtendMax paints values above the last level with the last band and
	// leaves values below the first level blank.
	ExtendMax
)

var (
	landColor  = color.NRGBA{R: 0xd3, G: 0xd3, B: 0xd3, A: 0xff}
	blankColor = color.NRGBA{}
)

// bands assigns grid values to contour bands [Levels[k], Levels[k+1]).
type bands struct {
	levels []float64
	extend Extend
	colors []color.Color // One per band.
}

func newBands(levels []float64, extend Extend, cmap palette.ColorMap) (*bands, error) {
	if err := CheckLevels(levels); err != nil {
		return nil, err
	}
	n := len(levels) - 1
	cmap.SetMin(0)
	cmap.SetMax(1)
	colors := make([]color.Color, n)
	for k := range colors {
		c, err := cmap.At((float64(k) + 0.5) / float64(n))
		if err != nil {
			return nil, fmt.Errorf("colour map: %w", err)
		}
		colors[k] = c
	}
	return &bands{levels: levels, extend: extend, colors: colors}, nil
}

// CheckLevels verifies that there are at least two strictly increasing
// contour levels.
func CheckLevels(levels []float64) error {
	if len(levels) < 2 {
		return fmt.Errorf("at least 2 contour levels are required, got %d", len(levels))
	}
	for i := 1; i < len(levels); i++ {
		if !(levels[i] > levels[i-1]) {
			return fmt.Errorf("contour levels must be strictly increasing (level %d: %v after %v)", i, levels[i], levels[i-1])
		}
	}
	return nil
}

// Palette indices beyond the bands.
func (b *bands) landIndex() int  { return len(b.colors) }
func (b *bands) blankIndex() int { return len(b.colors) + 1 }

// index returns the palette index for v.
func (b *bands) index(v float64) int {
	if math.IsNaN(v) {
		return b.landIndex()
	}
	last := len(b.levels) - 1
	switch {
	case v < b.levels[0]:
		if b.extend == ExtendBoth {
			return 0
		}
		return b.blankIndex()
	case v >= b.levels[last]:
		return len(b.colors) - 1
	}
	// levels[k] <= v < levels[k+1]
	return sort.SearchFloat64s(b.levels, math.Nextafter(v, math.Inf(1))) - 1
}

// Colors implements palette.Palette: band colours, then land, then blank.
func (b *bands) Colors() []color.Color {
	out := make([]color.Color, 0, len(b.colors)+2)
	out = append(out, b.colors...)
	return append(out, landColor, blankColor)
}

// bandColorMap is a piecewise-constant palette.ColorMap over the contour
// levels, drawn by the colour bar.
type bandColorMap struct {
	b        *bands
	min, max float64
	alpha    float64
}

func newBandColorMap(b *bands) *bandColorMap {
	return &bandColorMap{b: b, min: b.levels[0], max: b.levels[len(b.levels)-1], alpha: 1}
}

func (m *bandColorMap) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return nil, fmt.Errorf("NaN value")
	}
	k := 0
	if v > m.min {
		k = min(sort.SearchFloat64s(m.b.levels, math.Nextafter(v, math.Inf(1)))-1, len(m.b.colors)-1)
	}
	return m.b.colors[k], nil
}

func (m *bandColorMap) Max() float64       { return m.max }
func (m *bandColorMap) Min() float64       { return m.min }
func (m *bandColorMap) SetMax(v float64)   { m.max = v }
func (m *bandColorMap) SetMin(v float64)   { m.min = v }
func (m *bandColorMap) Alpha() float64     { return m.alpha }
func (m *bandColorMap) SetAlpha(a float64) { m.alpha = a }

func (m *bandColorMap) Palette(colors int) palette.Palette {
	out := make(colorList, colors)
	for i := range out {
		v := m.min
		if colors > 1 {
			v += (m.max - m.min) * float64(i) / float64(colors-1)
		}
		out[i], _ = m.At(v)
	}
	return out
}

type colorList []color.Color

func (c colorList) Colors() []color.Color { return c }
