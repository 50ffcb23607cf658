package output

import (
	"fmt"
	"math"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/sst-prescription/internal/domain"
)

// FillValue marks cells that are still missing in the written SST.
const FillValue float32 = -999

// NetCDFWriter writes one NetCDF-4 file per timestamp.
type NetCDFWriter struct {
	dir string
}

// NewNetCDFWriter creates a writer storing files under dir.
func NewNetCDFWriter(dir string) *NetCDFWriter {
	return &NetCDFWriter{dir: dir}
}

// Write stores grid as variables time, lat, lon, sst and, when mask is not
// nil, msk.
func (w *NetCDFWriter) Write(dataset string, t time.Time, grid *domain.Grid, mask [][]bool) (string, error) {
	if err := grid.Validate(); err != nil {
		return "", err
	}
	if mask != nil {
		if err := checkMask(grid, mask); err != nil {
			return "", err
		}
	}
	path, err := prepare(w.dir, dataset, t, "nc")
	if err != nil {
		return "", err
	}
	if err := writeNetCDF(path, t, grid, mask); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func checkMask(grid *domain.Grid, mask [][]bool) error {
	if len(mask) != grid.Rows() {
		return &domain.InvalidShapeError{Reason: fmt.Sprintf("mask has %d rows, grid has %d", len(mask), grid.Rows())}
	}
	for i, row := range mask {
		if len(row) != grid.Cols() {
			return &domain.InvalidShapeError{Reason: fmt.Sprintf("mask row %d has %d values, grid has %d", i, len(row), grid.Cols())}
		}
	}
	return nil
}

func writeNetCDF(path string, t time.Time, grid *domain.Grid, mask [][]bool) (err error) {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := ds.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	timeDim, err := ds.AddDim("time", 1)
	if err != nil {
		return err
	}
	latDim, err := ds.AddDim("lat", uint64(grid.Rows()))
	if err != nil {
		return err
	}
	lonDim, err := ds.AddDim("lon", uint64(grid.Cols()))
	if err != nil {
		return err
	}
	field := []netcdf.Dim{latDim, lonDim}

	timeVar, err := addVar(ds, "time", netcdf.INT, []netcdf.Dim{timeDim}, domain.TimeUnits)
	if err != nil {
		return err
	}
	latVar, err := addVar(ds, "lat", netcdf.FLOAT, []netcdf.Dim{latDim}, "degrees_north")
	if err != nil {
		return err
	}
	lonVar, err := addVar(ds, "lon", netcdf.FLOAT, []netcdf.Dim{lonDim}, "degrees_east")
	if err != nil {
		return err
	}
	sstVar, err := addVar(ds, "sst", netcdf.FLOAT, field, "K")
	if err != nil {
		return err
	}
	if err := sstVar.Attr("_FillValue").WriteFloat32s([]float32{FillValue}); err != nil {
		return err
	}
	var mskVar netcdf.Var
	if mask != nil {
		mskVar, err = ds.AddVar("msk", netcdf.INT, field)
		if err != nil {
			return err
		}
		if err := mskVar.Attr("long_name").WriteBytes([]byte("1 where the cell was missing in the source analysis")); err != nil {
			return err
		}
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	if err := timeVar.WriteInt32s([]int32{int32(t.Sub(domain.Epoch).Seconds())}); err != nil {
		return err
	}
	if err := latVar.WriteFloat32s(toFloat32(grid.Lat)); err != nil {
		return err
	}
	if err := lonVar.WriteFloat32s(toFloat32(grid.Lon)); err != nil {
		return err
	}

	sst := make([]float32, 0, grid.Rows()*grid.Cols())
	for _, row := range grid.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				sst = append(sst, FillValue)
				continue
			}
			sst = append(sst, float32(v))
		}
	}
	if err := sstVar.WriteFloat32s(sst); err != nil {
		return fmt.Errorf("failed to write sst: %w", err)
	}

	if mask != nil {
		msk := make([]int32, 0, len(sst))
		for _, row := range mask {
			for _, m := range row {
				if m {
					msk = append(msk, 1)
				} else {
					msk = append(msk, 0)
				}
			}
		}
		if err := mskVar.WriteInt32s(msk); err != nil {
			return fmt.Errorf("failed to write msk: %w", err)
		}
	}
	return nil
}

func addVar(ds netcdf.Dataset, name string, t netcdf.Type, dims []netcdf.Dim, units string) (netcdf.Var, error) {
	v, err := ds.AddVar(name, t, dims)
	if err != nil {
		return v, err
	}
	if err := v.Attr("units").WriteBytes([]byte(units)); err != nil {
		return v, err
	}
	return v, nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
