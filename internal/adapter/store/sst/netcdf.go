package sst

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/sst-prescription/internal/domain"
)

// Store loads snapshots of one product from an input root directory,
// cropped to a region.
type Store struct {
	root    string
	layout  Layout
	region  domain.Region
	padding int
}

// NewStore creates a store for the product registered under dataset.
func NewStore(root, dataset string, region domain.Region) (*Store, error) {
	layout, err := Lookup(dataset)
	if err != nil {
		return nil, err
	}
	return &Store{
		root:    root,
		layout:  layout,
		region:  region,
		padding: domain.CropPadding,
	}, nil
}

// Layout returns the product layout served by the store.
func (s *Store) Layout() Layout { return s.layout }

// Find returns the file holding the product for the day of t. When several
// files match, the lexicographically first is used.
func (s *Store) Find(t time.Time) (string, error) {
	pattern := filepath.Join(s.root, filepath.FromSlash(s.layout.Glob(t)))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", &domain.MissingFileError{Dataset: s.layout.ID, Date: t, Pattern: pattern}
	}
	slices.Sort(matches)
	return matches[0], nil
}

// Load reads the snapshot valid at t.
func (s *Store) Load(t time.Time) (*domain.Snapshot, error) {
	path, err := s.Find(t)
	if err != nil {
		return nil, err
	}

	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file %s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	lat, err := readAxis(nc, "lat")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lon, err := readAxis(nc, "lon")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	w, err := domain.CropWindow(lat, lon, s.region, s.padding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lat = lat[w.Row0 : w.Row1+1]
	lon = lon[w.Col0 : w.Col1+1]
	lead := s.layout.leadingIndex(t)

	values, err := readField(nc, s.layout.SSTVar, lead, w)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sst := &domain.Grid{Lat: lat, Lon: lon, Values: values}
	if s.layout.SSTOffset != 0 {
		for _, row := range sst.Values {
			for j := range row {
				row[j] += s.layout.SSTOffset
			}
		}
	}
	sst.MaskNegative()

	snap := &domain.Snapshot{Dataset: s.layout.ID, Time: t, SST: sst}
	if s.layout.HasError() {
		values, err := readField(nc, s.layout.ErrVar, lead, w)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		snap.Err = &domain.Grid{Lat: lat, Lon: lon, Values: values}
		snap.Err.MaskNegative()
	}
	return snap, nil
}

// readAxis reads a 1-D coordinate variable of any numeric type.
func readAxis(nc netcdf.Dataset, name string) ([]float64, error) {
	v, err := nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("coordinate variable %q not found: %w", name, err)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions of %q: %w", name, err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable %q, got %dD", name, len(dims))
	}
	n, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	return readSlice(v, []uint64{0}, []uint64{n})
}

// readField reads the (lat, lon) window of a data variable at the given
// leading indices and decodes it to physical units with NaN for missing
// cells.
func readField(nc netcdf.Dataset, name string, lead []uint64, w domain.Window) ([][]float64, error) {
	v, err := nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("data variable %q not found: %w", name, err)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions of %q: %w", name, err)
	}
	if len(dims) != len(lead)+2 {
		return nil, &domain.InvalidShapeError{
			Reason: fmt.Sprintf("variable %q has %d dimensions, expected %d", name, len(dims), len(lead)+2),
		}
	}
	for k, idx := range lead {
		n, err := dims[k].Len()
		if err != nil {
			return nil, err
		}
		if idx >= n {
			return nil, &domain.InvalidShapeError{
				Reason: fmt.Sprintf("index %d out of range for dimension %d (length %d) of %q", idx, k, n, name),
			}
		}
	}

	rows, cols := w.Rows(), w.Cols()
	start := append(slices.Clone(lead), uint64(w.Row0), uint64(w.Col0))
	count := make([]uint64, len(lead), len(lead)+2)
	for k := range count {
		count[k] = 1
	}
	count = append(count, uint64(rows), uint64(cols))

	flat, err := readSlice(v, start, count)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	decode(v, flat)

	out := make([][]float64, rows)
	for i := range out {
		out[i] = flat[i*cols : (i+1)*cols]
	}
	return out, nil
}

// readSlice reads a hyperslab of v as float64 regardless of storage type.
func readSlice(v netcdf.Var, start, count []uint64) ([]float64, error) {
	total := uint64(1)
	for _, c := range count {
		total *= c
	}

	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}

	out := make([]float64, total)
	switch t {
	case netcdf.DOUBLE:
		if err := v.ReadFloat64Slice(out, start, count); err != nil {
			return nil, err
		}
	case netcdf.FLOAT:
		tmp := make([]float32, total)
		if err := v.ReadFloat32Slice(tmp, start, count); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.INT:
		tmp := make([]int32, total)
		if err := v.ReadInt32Slice(tmp, start, count); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.SHORT:
		tmp := make([]int16, total)
		if err := v.ReadInt16Slice(tmp, start, count); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.BYTE:
		tmp := make([]int8, total)
		if err := v.ReadInt8Slice(tmp, start, count); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
	return out, nil
}
