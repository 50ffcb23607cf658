// Package interp fills missing (NaN) cells of an SST grid from the valid
// cells around them.
package interp

import (
	"fmt"
	"math"
	"strings"

	"go.ngs.io/sst-prescription/internal/domain"
)

// Method selects the interpolation scheme used by Fill.
type Method string

const (
	// Nearest copies the value of the closest valid cell.
	Nearest Method = "nearest"
	// Linear interpolates over the Delaunay triangulation of valid cells.
	Linear Method = "linear"
)

// ParseMethod converts a configuration string to a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case Nearest:
		return Nearest, nil
	case Linear:
		return Linear, nil
	default:
		return "", fmt.Errorf("unknown interpolation method %q (want %q or %q)", s, Nearest, Linear)
	}
}

// cell is a valid grid cell addressed by its integer index coordinates.
type cell struct {
	Row, Col int
	Value    float64
}

// Fill returns a copy of g with missing cells replaced according to method.
// Valid cells are copied unchanged and g is never modified.
//
// Distances are measured in index space: cell (i, j) sits at (i, j)
// regardless of the physical spacing of the coordinate axes.
func Fill(g *domain.Grid, method Method) (*domain.Grid, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("fill: %w", err)
	}

	valid := validCells(g)
	if len(valid) == 0 {
		return nil, &domain.EmptyInputError{Rows: g.Rows(), Cols: g.Cols()}
	}

	out := g.Clone()
	if len(valid) == g.Rows()*g.Cols() {
		return out, nil
	}

	switch method {
	case Nearest:
		fillNearest(out, valid)
	case Linear:
		fillLinear(out, valid)
	default:
		return nil, fmt.Errorf("fill: unknown interpolation method %q", method)
	}
	return out, nil
}

// MissingMask returns the fill-origin mask of an unfilled grid: true where
// the cell is missing and will be produced by interpolation.
func MissingMask(g *domain.Grid) [][]bool {
	return g.MissingMask()
}

func validCells(g *domain.Grid) []cell {
	valid := make([]cell, 0, g.Rows()*g.Cols())
	for i, row := range g.Values {
		for j, v := range row {
			if !math.IsNaN(v) {
				valid = append(valid, cell{Row: i, Col: j, Value: v})
			}
		}
	}
	return valid
}
