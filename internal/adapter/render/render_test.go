package render

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctessum/geom"
	"gonum.org/v1/plot/palette/moreland"

	"go.ngs.io/sst-prescription/internal/domain"
)

var region = domain.Region{Lat: domain.Range{30, 45}, Lon: domain.Range{120, 135}}

func TestBands_Index(t *testing.T) {
	levels := []float64{0, 1, 2, 3}
	tests := []struct {
		name   string
		extend Extend
		v      float64
		want   int
	}{
		{"first band lower edge", ExtendBoth, 0, 0},
		{"inside second band", ExtendBoth, 1.5, 1},
		{"upper edge belongs to next band", ExtendBoth, 2, 2},
		{"above last level clamps", ExtendBoth, 7, 2},
		{"on last level clamps", ExtendBoth, 3, 2},
		{"below first level clamps", ExtendBoth, -1, 0},
		{"below first level is blank", ExtendMax, -1, 4},
		{"above last level, max", ExtendMax, 9, 2},
		{"NaN is land", ExtendBoth, math.NaN(), 3},
		{"NaN is land, max", ExtendMax, math.NaN(), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := newBands(levels, tt.extend, moreland.SmoothBlueRed())
			if err != nil {
				t.Fatalf("newBands: %v", err)
			}
			if got := b.index(tt.v); got != tt.want {
				t.Errorf("index(%v) = %d, want %d", tt.v, got, tt.want)
			}
		})
	}
}

func TestBands_Palette(t *testing.T) {
	b, err := newBands(DefaultErrLevels(), ExtendMax, moreland.Kindlmann())
	if err != nil {
		t.Fatalf("newBands: %v", err)
	}
	colors := b.Colors()
	if len(colors) != 30+2 {
		t.Fatalf("expected 32 colours, got %d", len(colors))
	}
	if colors[b.landIndex()] != landColor {
		t.Errorf("land colour = %v", colors[b.landIndex()])
	}
	if _, _, _, a := colors[b.blankIndex()].RGBA(); a != 0 {
		t.Errorf("blank colour is not transparent")
	}
}

func TestCheckLevels(t *testing.T) {
	tests := []struct {
		name    string
		levels  []float64
		wantErr bool
	}{
		{"defaults sst", DefaultSSTLevels(), false},
		{"defaults err", DefaultErrLevels(), false},
		{"single level", []float64{1}, true},
		{"repeated level", []float64{1, 2, 2}, true},
		{"decreasing", []float64{3, 2, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckLevels(tt.levels); (err != nil) != tt.wantErr {
				t.Errorf("CheckLevels() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultLevels(t *testing.T) {
	sst := DefaultSSTLevels()
	if len(sst) != 21 || sst[0] != 273.15 || sst[20] != 293.15 {
		t.Errorf("unexpected SST levels %v", sst)
	}
	errLevels := DefaultErrLevels()
	if len(errLevels) != 31 || errLevels[0] != 0 || errLevels[30] != 1 {
		t.Errorf("unexpected error levels %v", errLevels)
	}
}

func TestLevelTicks_Thinned(t *testing.T) {
	ticks := levelTicks(DefaultErrLevels())
	labelled := 0
	for _, tk := range ticks {
		if tk.Label != "" {
			labelled++
		}
	}
	if labelled > maxTicks {
		t.Errorf("%d labelled ticks, want at most %d", labelled, maxTicks)
	}
	if ticks[0].Label != "0.00" {
		t.Errorf("first tick label = %q", ticks[0].Label)
	}
}

func TestFileName(t *testing.T) {
	ts := time.Date(2021, 9, 7, 18, 30, 0, 0, time.UTC)
	if got := FileName(FieldSST, "GHRSST_UKMO", ts); got != "sst_ghrsst_ukmo_20210907_1830.png" {
		t.Errorf("FileName(sst) = %s", got)
	}
	if got := FileName(FieldError, "OISST", ts); got != "err_oisst_20210907_1830.png" {
		t.Errorf("FileName(err) = %s", got)
	}
}

func TestParseField(t *testing.T) {
	if f, err := ParseField(" ERR "); err != nil || f != FieldError {
		t.Errorf("ParseField(ERR) = %q, %v", f, err)
	}
	if _, err := ParseField("wind"); err == nil {
		t.Errorf("expected error for unknown field")
	}
}

func testSnapshot(withErr bool) *domain.Snapshot {
	lat := []float64{45, 40, 35, 30}
	lon := []float64{120, 125, 130, 135}
	sst := domain.NewGrid(lat, lon)
	errGrid := domain.NewGrid(lat, lon)
	for i := range lat {
		for j := range lon {
			sst.Values[i][j] = 280 + float64(i+j)
			errGrid.Values[i][j] = 0.1 * float64(i+j)
		}
	}
	sst.Values[1][1] = math.NaN()
	snap := &domain.Snapshot{
		Dataset: "OISST",
		Time:    time.Date(2021, 9, 7, 12, 0, 0, 0, time.UTC),
		SST:     sst,
	}
	if withErr {
		snap.Err = errGrid
	}
	return snap
}

func TestRenderer_WritesDecodablePNG(t *testing.T) {
	coast := NewCoastline(region,
		geom.LineString{{X: 121, Y: 31}, {X: 129, Y: 39}},
		geom.LineString{{X: -10, Y: 50}, {X: -5, Y: 55}},
	)
	if coast.Len() != 1 {
		t.Fatalf("expected 1 overlapping coastline, got %d", coast.Len())
	}
	r, err := NewRenderer(Options{Region: region, DPI: 50, Coastline: coast})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	for _, field := range []Field{FieldSST, FieldError} {
		var buf bytes.Buffer
		if err := r.Render(&buf, field, testSnapshot(true)); err != nil {
			t.Fatalf("Render(%s): %v", field, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatalf("decode %s: %v", field, err)
		}
		if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
			t.Errorf("%s image is %dx%d, want 400x300", field, b.Dx(), b.Dy())
		}
	}
}

func TestRenderer_Save(t *testing.T) {
	r, err := NewRenderer(Options{Region: region, DPI: 40})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "img")
	path, err := r.Save(dir, FieldSST, testSnapshot(false))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(path) != "sst_oisst_20210907_1200.png" {
		t.Errorf("unexpected path %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("decode: %v", err)
	}
}

func TestRenderer_Errors(t *testing.T) {
	r, err := NewRenderer(Options{Region: region, DPI: 40})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, FieldError, testSnapshot(false)); err == nil {
		t.Errorf("expected error when the snapshot has no error field")
	}

	thin := testSnapshot(false)
	thin.SST = &domain.Grid{Lat: []float64{30}, Lon: []float64{120, 121}, Values: [][]float64{{280, 281}}}
	if err := r.Render(&buf, FieldSST, thin); err == nil {
		t.Errorf("expected error for a single-row grid")
	}

	if _, err := NewRenderer(Options{Region: region, SSTLevels: []float64{2, 1}}); err == nil {
		t.Errorf("expected error for decreasing levels")
	}
}

func TestCoastline_Polylines0360(t *testing.T) {
	west := domain.Region{Lat: domain.Range{20, 40}, Lon: domain.Range{230, 250}}
	coast := NewCoastline(west,
		geom.Polygon{{{X: -125, Y: 30}, {X: -120, Y: 30}, {X: -120, Y: 35}, {X: -125, Y: 30}}},
		geom.MultiLineString{{{X: 10, Y: 30}, {X: 11, Y: 31}}},
	)
	lines := coast.polylines(true)
	if len(lines) != 1 {
		t.Fatalf("expected 1 polyline, got %d", len(lines))
	}
	if lines[0][0].X != 235 || lines[0][1].X != 240 {
		t.Errorf("longitudes not shifted: %v", lines[0])
	}
}

func TestLoadCoastline_MissingFile(t *testing.T) {
	if _, err := LoadCoastline(filepath.Join(t.TempDir(), "none.shp"), region); err == nil {
		t.Errorf("expected error for a missing shapefile")
	}
}
