package interp

import (
	"errors"
	"fmt"
	"math"

	"go.ngs.io/sst-prescription/internal/domain"
)

// ErrOutsideGrid is returned by Sample for locations beyond the grid axes.
var ErrOutsideGrid = errors.New("location outside grid")

// GridCell is one grid cell with values at its four corners.
type GridCell struct {
	// Corner coordinates in normalized form:
	// V00 at (0, 0), V10 at (1, 0), V01 at (0, 1), V11 at (1, 1),
	// with the first coordinate along longitude.
	V00, V10, V01, V11 float64
}

// Bilinear evaluates the cell at fractional position (t, u) in [0, 1]²:
//
//	f(t,u) = (1-t)(1-u)V00 + t(1-u)V10 + (1-t)u V01 + tu V11
//
// A NaN corner yields NaN.
func (c GridCell) Bilinear(t, u float64) float64 {
	t = math.Max(0, math.Min(1, t))
	u = math.Max(0, math.Min(1, u))
	return (1-t)*(1-u)*c.V00 +
		t*(1-u)*c.V10 +
		(1-t)*u*c.V01 +
		t*u*c.V11
}

// Sample returns the bilinear interpolation of g at (lat, lon). Axes may be
// ascending or descending, and a western longitude is mapped onto a 0–360°
// axis. The result is NaN when a surrounding cell is missing.
func Sample(g *domain.Grid, lat, lon float64) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("sample: %w", err)
	}
	if domain.LonAxisIs0360(g.Lon) && lon < 0 {
		lon += 360
	}

	i, u, err := bracket(g.Lat, lat)
	if err != nil {
		return 0, fmt.Errorf("latitude: %w", err)
	}
	j, t, err := bracket(g.Lon, lon)
	if err != nil {
		return 0, fmt.Errorf("longitude: %w", err)
	}

	cell := GridCell{
		V00: g.Values[i][j],
		V10: g.Values[i][j+1],
		V01: g.Values[i+1][j],
		V11: g.Values[i+1][j+1],
	}
	return cell.Bilinear(t, u), nil
}

// bracket finds k such that v lies between axis[k] and axis[k+1] and
// returns the fractional offset from axis[k].
func bracket(axis []float64, v float64) (int, float64, error) {
	if len(axis) < 2 {
		return 0, 0, fmt.Errorf("axis must have at least 2 coordinates")
	}

	const epsilon = 1e-9
	for k := 0; k < len(axis)-1; k++ {
		a, b := axis[k], axis[k+1]
		lo, hi := math.Min(a, b), math.Max(a, b)
		if v < lo-epsilon || v > hi+epsilon {
			continue
		}
		if a == b {
			return 0, 0, fmt.Errorf("coordinates must be strictly monotonic")
		}
		return k, (v - a) / (b - a), nil
	}
	return 0, 0, fmt.Errorf("coordinate %.6f not in [%.6f, %.6f]: %w", v, axis[0], axis[len(axis)-1], ErrOutsideGrid)
}
