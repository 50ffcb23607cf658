package sst

import (
	"math"

	"github.com/fhs/go-netcdf/netcdf"
)

// decode converts raw stored values to physical values in place: cells equal
// to _FillValue or missing_value become NaN, then scale_factor and
// add_offset are applied.
func decode(v netcdf.Var, data []float64) {
	var missing []float64
	for _, name := range []string{"_FillValue", "missing_value"} {
		if fv, ok := attrFloat(v, name); ok {
			missing = append(missing, fv)
		}
	}
	scale, ok := attrFloat(v, "scale_factor")
	if !ok {
		scale = 1
	}
	offset, _ := attrFloat(v, "add_offset")

	for i, raw := range data {
		if isMissing(raw, missing) {
			data[i] = math.NaN()
			continue
		}
		data[i] = raw*scale + offset
	}
}

func isMissing(raw float64, missing []float64) bool {
	if math.IsNaN(raw) {
		return true
	}
	for _, m := range missing {
		if raw == m {
			return true
		}
	}
	return false
}

// attrFloat returns the first value of a numeric attribute of v.
func attrFloat(v netcdf.Var, name string) (float64, bool) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	t, err := a.Type()
	if err != nil {
		return 0, false
	}

	switch t {
	case netcdf.DOUBLE:
		buf := make([]float64, n)
		if err := a.ReadFloat64s(buf); err == nil {
			return buf[0], true
		}
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if err := a.ReadFloat32s(buf); err == nil {
			return float64(buf[0]), true
		}
	case netcdf.INT:
		buf := make([]int32, n)
		if err := a.ReadInt32s(buf); err == nil {
			return float64(buf[0]), true
		}
	case netcdf.SHORT:
		buf := make([]int16, n)
		if err := a.ReadInt16s(buf); err == nil {
			return float64(buf[0]), true
		}
	case netcdf.BYTE:
		buf := make([]int8, n)
		if err := a.ReadInt8s(buf); err == nil {
			return float64(buf[0]), true
		}
	}
	return 0, false
}
