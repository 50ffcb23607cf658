// Package domain holds the SST grid model shared by loaders, the filler,
// writers and renderers.
package domain

import (
	"math"
	"time"
)

// Grid is a 2-D scalar field on a regular latitude/longitude axis pair.
type Grid struct {
	Lat    []float64   // Latitudes, one per row.
	Lon    []float64   // Longitudes, one per column.
	Values [][]float64 // Values[i][j] corresponds to (Lat[i], Lon[j]). NaN marks a missing cell.
}

// Snapshot is one dataset at one timestamp.
type Snapshot struct {
	Dataset string
	Time    time.Time
	SST     *Grid // Kelvin.
	Err     *Grid // Analysis error in Kelvin; nil when the product has none.
}

// NewGrid allocates a grid of NaN values for the given axes.
func NewGrid(lat, lon []float64) *Grid {
	values := make([][]float64, len(lat))
	for i := range values {
		row := make([]float64, len(lon))
		for j := range row {
			row[j] = math.NaN()
		}
		values[i] = row
	}
	return &Grid{Lat: lat, Lon: lon, Values: values}
}

// Rows returns the number of latitude rows.
func (g *Grid) Rows() int { return len(g.Values) }

// Cols returns the number of longitude columns.
func (g *Grid) Cols() int {
	if len(g.Values) == 0 {
		return 0
	}
	return len(g.Values[0])
}

// Validate checks that the value array is rectangular and matches both
// coordinate axes.
func (g *Grid) Validate() error {
	if g == nil {
		return invalidShape("nil grid")
	}
	if len(g.Values) == 0 {
		return invalidShape("grid has no rows")
	}
	if len(g.Values) != len(g.Lat) {
		return invalidShape("number of value rows (%d) must match latitudes (%d)", len(g.Values), len(g.Lat))
	}
	for i, row := range g.Values {
		if len(row) != len(g.Lon) {
			return invalidShape("row %d has %d values, expected %d", i, len(row), len(g.Lon))
		}
	}
	if len(g.Lon) == 0 {
		return invalidShape("grid has no columns")
	}
	return nil
}

// Clone returns a deep copy of the value array. Coordinate slices are
// shared since they are never modified after loading.
func (g *Grid) Clone() *Grid {
	values := make([][]float64, len(g.Values))
	for i, row := range g.Values {
		values[i] = append([]float64(nil), row...)
	}
	return &Grid{Lat: g.Lat, Lon: g.Lon, Values: values}
}

// MissingMask returns true for every cell that is NaN.
func (g *Grid) MissingMask() [][]bool {
	mask := make([][]bool, len(g.Values))
	for i, row := range g.Values {
		mask[i] = make([]bool, len(row))
		for j, v := range row {
			mask[i][j] = math.IsNaN(v)
		}
	}
	return mask
}

// CountMissing returns the number of NaN cells.
func (g *Grid) CountMissing() int {
	n := 0
	for _, row := range g.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

// MaskNegative replaces negative values with NaN. Valid SST and error
// values in Kelvin are never negative.
func (g *Grid) MaskNegative() {
	for _, row := range g.Values {
		for j, v := range row {
			if v < 0 {
				row[j] = math.NaN()
			}
		}
	}
}
