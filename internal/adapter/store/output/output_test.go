package output

import (
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/sst-prescription/internal/domain"
)

var testTime = time.Date(2021, 9, 7, 18, 0, 0, 0, time.UTC)

func testGrid() (*domain.Grid, [][]bool) {
	g := &domain.Grid{
		Lat: []float64{30.0, 30.5},
		Lon: []float64{120.0, 120.5, 121.0},
		Values: [][]float64{
			{290.25, 291.5, math.NaN()},
			{289.75, 290.0, 292.125},
		},
	}
	mask := [][]bool{{false, true, true}, {false, false, true}}
	return g, mask
}

func readText(t *testing.T, v netcdf.Var, name string) string {
	t.Helper()
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil {
		t.Fatalf("attr %s: %v", name, err)
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		t.Fatalf("read attr %s: %v", name, err)
	}
	return string(buf)
}

func TestNetCDFWriter_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "interp")
	g, mask := testGrid()

	path, err := NewNetCDFWriter(dir).Write("OISST", testTime, g, mask)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "OISST_20210907_18_interp.nc" {
		t.Errorf("unexpected file name %s", path)
	}

	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer nc.Close()

	timeVar, err := nc.Var("time")
	if err != nil {
		t.Fatalf("time var: %v", err)
	}
	secs := make([]int32, 1)
	if err := timeVar.ReadInt32s(secs); err != nil {
		t.Fatalf("read time: %v", err)
	}
	if want := int32(testTime.Sub(domain.Epoch).Seconds()); secs[0] != want {
		t.Errorf("time = %d, want %d", secs[0], want)
	}
	if got := readText(t, timeVar, "units"); got != domain.TimeUnits {
		t.Errorf("time units = %q", got)
	}

	sstVar, err := nc.Var("sst")
	if err != nil {
		t.Fatalf("sst var: %v", err)
	}
	if got := readText(t, sstVar, "units"); got != "K" {
		t.Errorf("sst units = %q", got)
	}
	sst := make([]float32, 6)
	if err := sstVar.ReadFloat32s(sst); err != nil {
		t.Fatalf("read sst: %v", err)
	}
	want := []float32{290.25, 291.5, FillValue, 289.75, 290.0, 292.125}
	for i := range want {
		if sst[i] != want[i] {
			t.Errorf("sst[%d] = %v, want %v", i, sst[i], want[i])
		}
	}

	lonVar, err := nc.Var("lon")
	if err != nil {
		t.Fatalf("lon var: %v", err)
	}
	lon := make([]float32, 3)
	if err := lonVar.ReadFloat32s(lon); err != nil {
		t.Fatalf("read lon: %v", err)
	}
	if lon[0] != 120 || lon[2] != 121 {
		t.Errorf("lon = %v", lon)
	}

	mskVar, err := nc.Var("msk")
	if err != nil {
		t.Fatalf("msk var: %v", err)
	}
	msk := make([]int32, 6)
	if err := mskVar.ReadInt32s(msk); err != nil {
		t.Fatalf("read msk: %v", err)
	}
	wantMsk := []int32{0, 1, 1, 0, 0, 1}
	for i := range wantMsk {
		if msk[i] != wantMsk[i] {
			t.Errorf("msk[%d] = %d, want %d", i, msk[i], wantMsk[i])
		}
	}
}

func TestNetCDFWriter_NoMask(t *testing.T) {
	g, _ := testGrid()
	path, err := NewNetCDFWriter(t.TempDir()).Write("OSTIA", testTime, g, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer nc.Close()
	if _, err := nc.Var("msk"); err == nil {
		t.Errorf("msk variable written without a mask")
	}
}

func TestWriters_RejectMismatchedMask(t *testing.T) {
	g, _ := testGrid()
	bad := [][]bool{{true, false, true}}
	for _, format := range []string{FormatNetCDF, FormatCSV} {
		w, err := New(format, t.TempDir())
		if err != nil {
			t.Fatalf("New(%s): %v", format, err)
		}
		if _, err := w.Write("OISST", testTime, g, bad); !errors.Is(err, domain.ErrInvalidShape) {
			t.Errorf("%s: expected ErrInvalidShape, got %v", format, err)
		}
	}
}

func TestCSVWriter(t *testing.T) {
	g, mask := testGrid()
	path, err := NewCSVWriter(t.TempDir()).Write("GHRSST_UKMO", testTime, g, mask)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "GHRSST_UKMO_20210907_18_interp.csv" {
		t.Errorf("unexpected file name %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("expected header + 6 rows, got %d", len(records))
	}
	for i, h := range []string{"lat", "lon", "sst_k", "filled"} {
		if records[0][i] != h {
			t.Errorf("header[%d] = %s, want %s", i, records[0][i], h)
		}
	}
	if got := records[1]; got[0] != "30" || got[1] != "120" || got[2] != "290.2500" || got[3] != "0" {
		t.Errorf("first row = %v", got)
	}
	if got := records[3]; got[2] != "" || got[3] != "1" {
		t.Errorf("missing cell row = %v", got)
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New("grib", t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
