package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestGrid_Validate(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name    string
		grid    *Grid
		wantErr bool
	}{
		{
			name: "valid grid",
			grid: &Grid{
				Lat:    []float64{30, 31},
				Lon:    []float64{120, 121, 122},
				Values: [][]float64{{290, nan, 291}, {292, 293, nan}},
			},
		},
		{
			name:    "nil grid",
			grid:    nil,
			wantErr: true,
		},
		{
			name: "mismatched row count",
			grid: &Grid{
				Lat:    []float64{30, 31},
				Lon:    []float64{120, 121},
				Values: [][]float64{{1, 2}},
			},
			wantErr: true,
		},
		{
			name: "ragged rows",
			grid: &Grid{
				Lat:    []float64{30, 31},
				Lon:    []float64{120, 121},
				Values: [][]float64{{1, 2}, {3}},
			},
			wantErr: true,
		},
		{
			name: "no columns",
			grid: &Grid{
				Lat:    []float64{30},
				Lon:    []float64{},
				Values: [][]float64{{}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidShape) {
				t.Errorf("expected ErrInvalidShape, got %v", err)
			}
		})
	}
}

func TestGrid_CloneIsIndependent(t *testing.T) {
	g := &Grid{
		Lat:    []float64{0, 1},
		Lon:    []float64{0, 1},
		Values: [][]float64{{1, 2}, {3, 4}},
	}
	c := g.Clone()
	c.Values[0][0] = 99
	if g.Values[0][0] != 1 {
		t.Fatalf("clone shares value storage with original")
	}
}

func TestGrid_MissingMaskAndCount(t *testing.T) {
	nan := math.NaN()
	g := &Grid{
		Lat:    []float64{0, 1},
		Lon:    []float64{0, 1, 2},
		Values: [][]float64{{nan, 1, 2}, {3, nan, nan}},
	}
	want := [][]bool{{true, false, false}, {false, true, true}}
	mask := g.MissingMask()
	for i := range want {
		for j := range want[i] {
			if mask[i][j] != want[i][j] {
				t.Errorf("mask[%d][%d] = %v, want %v", i, j, mask[i][j], want[i][j])
			}
		}
	}
	if got := g.CountMissing(); got != 3 {
		t.Errorf("CountMissing() = %d, want 3", got)
	}
}

func TestGrid_MaskNegative(t *testing.T) {
	g := &Grid{
		Lat:    []float64{0},
		Lon:    []float64{0, 1, 2},
		Values: [][]float64{{-1.5, 0, 273.15}},
	}
	g.MaskNegative()
	if !math.IsNaN(g.Values[0][0]) {
		t.Errorf("negative value not masked: %v", g.Values[0][0])
	}
	if g.Values[0][1] != 0 || g.Values[0][2] != 273.15 {
		t.Errorf("non-negative values changed: %v", g.Values[0])
	}
}

func TestNewGrid_AllMissing(t *testing.T) {
	g := NewGrid([]float64{0, 1, 2}, []float64{0, 1})
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := g.CountMissing(); got != 6 {
		t.Errorf("CountMissing() = %d, want 6", got)
	}
}

func TestErrors_Unwrap(t *testing.T) {
	date := time.Date(2021, 9, 7, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		err  error
		want error
	}{
		{&EmptyInputError{Rows: 2, Cols: 3}, ErrEmptyInput},
		{&MissingFileError{Dataset: "OISST", Date: date, Pattern: "oisst-*.20210907.nc"}, ErrMissingFile},
		{&InvalidShapeError{Reason: "bad"}, ErrInvalidShape},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%v does not unwrap to %v", tt.err, tt.want)
		}
	}

	var mf *MissingFileError
	if !errors.As(tests[1].err, &mf) || mf.Dataset != "OISST" {
		t.Errorf("errors.As failed for MissingFileError")
	}
}
