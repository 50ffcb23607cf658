package domain

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GridStats summarizes the valid cells of a grid.
type GridStats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Valid   int     `json:"valid"`
	Missing int     `json:"missing"`
}

// Summarize computes statistics over non-NaN cells. Min, Max, Mean and
// StdDev are NaN when no cell is valid.
func Summarize(g *Grid) GridStats {
	valid := make([]float64, 0, g.Rows()*g.Cols())
	missing := 0
	for _, row := range g.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				missing++
				continue
			}
			valid = append(valid, v)
		}
	}

	s := GridStats{Valid: len(valid), Missing: missing}
	if len(valid) == 0 {
		nan := math.NaN()
		s.Min, s.Max, s.Mean, s.StdDev = nan, nan, nan, nan
		return s
	}
	s.Min = floats.Min(valid)
	s.Max = floats.Max(valid)
	if len(valid) == 1 {
		s.Mean = valid[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(valid, nil)
	return s
}
