package sst

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/sst-prescription/internal/domain"
)

// SynthOptions defines the grid of a synthetic product file.
type SynthOptions struct {
	Lat, Lon   domain.Range
	Resolution float64 // Degrees.
	Lon0360    bool    // Write longitudes on the 0–360° convention.
	Island     bool    // Mask an elliptical island at the centre as land.
}

// packing describes how a variable is stored on disk.
type packing struct {
	scale, offset float64
	fill          int16
}

var (
	ghrsstSST = packing{scale: 0.001, offset: 298.15, fill: -32768}
	ghrsstErr = packing{scale: 0.01, offset: 0, fill: -32768}
	oisstSST  = packing{scale: 0.01, offset: 0, fill: -999}
	oisstErr  = packing{scale: 0.01, offset: 0, fill: -999}
)

// SynthSST is the analytic sea surface temperature in Kelvin used for
// synthetic files. Longitude may use either convention.
func SynthSST(lat, lon float64, t time.Time) float64 {
	if lon > 180 {
		lon -= 360
	}
	day := float64(t.YearDay())
	hour := float64(t.Hour())
	return 273.15 + 27 -
		0.35*math.Abs(lat-10) +
		0.8*math.Sin(2*math.Pi*lon/30) +
		0.6*math.Cos(2*math.Pi*(day-220)/365) +
		0.25*math.Sin(2*math.Pi*(hour-9)/24)
}

// SynthError is the analytic analysis error in Kelvin.
func SynthError(lat, lon float64) float64 {
	return 0.2 + 0.15*math.Abs(math.Sin(lat/7)) + 0.05*math.Cos(lon/11)
}

// Synthesize writes a product file for dataset valid at t under root,
// following the dataset's directory, naming, variable and packing
// conventions, and returns its path.
func Synthesize(dataset, root string, t time.Time, opts SynthOptions) (string, error) {
	layout, err := Lookup(dataset)
	if err != nil {
		return "", err
	}
	if opts.Resolution <= 0 {
		return "", fmt.Errorf("resolution must be positive, got %v", opts.Resolution)
	}
	if err := (domain.Region{Lat: opts.Lat, Lon: opts.Lon}).Validate(); err != nil {
		return "", fmt.Errorf("invalid synthetic region: %w", err)
	}

	lat := synthAxis(opts.Lat[0], opts.Lat[1], opts.Resolution)
	lon0 := opts.Lon[0]
	if opts.Lon0360 && lon0 < 0 {
		lon0 += 360
	}
	lon := synthAxis(lon0, lon0+(opts.Lon[1]-opts.Lon[0]), opts.Resolution)

	dir := filepath.Join(root, layout.SubDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, layout.Name(t))

	g := synthGrid{layout: layout, opts: opts, lat: lat, lon: lon, t: t}
	if err := g.write(path); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func synthAxis(lo, hi, step float64) []float64 {
	n := int(math.Floor((hi-lo)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

type synthGrid struct {
	layout Layout
	opts   SynthOptions
	lat    []float64
	lon    []float64
	t      time.Time
}

// land reports whether (lat, lon) falls on the synthetic island.
func (g synthGrid) land(lat, lon float64) bool {
	if !g.opts.Island {
		return false
	}
	if lon > 180 {
		lon -= 360
	}
	cLat := (g.opts.Lat[0] + g.opts.Lat[1]) / 2
	cLon := (g.opts.Lon[0] + g.opts.Lon[1]) / 2
	a := 0.2 * (g.opts.Lat[1] - g.opts.Lat[0])
	b := 0.15 * (g.opts.Lon[1] - g.opts.Lon[0])
	dy, dx := (lat-cLat)/a, (lon-cLon)/b
	return dy*dy+dx*dx < 1
}

// steps returns the time records stored in the file.
func (g synthGrid) steps() []time.Time {
	day := time.Date(g.t.Year(), g.t.Month(), g.t.Day(), 0, 0, 0, 0, time.UTC)
	if g.layout.Hourly {
		out := make([]time.Time, 24)
		for h := range out {
			out[h] = day.Add(time.Duration(h) * time.Hour)
		}
		return out
	}
	return []time.Time{day.Add(12 * time.Hour)}
}

func (g synthGrid) pack(times []time.Time, p packing, value func(lat, lon float64, t time.Time) float64) []int16 {
	out := make([]int16, 0, len(times)*len(g.lat)*len(g.lon))
	for _, t := range times {
		for _, la := range g.lat {
			for _, lo := range g.lon {
				if g.land(la, lo) {
					out = append(out, p.fill)
					continue
				}
				out = append(out, int16(math.Round((value(la, lo, t)-p.offset)/p.scale)))
			}
		}
	}
	return out
}

func (g synthGrid) write(path string) (err error) {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := ds.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	times := g.steps()
	timeDim, err := ds.AddDim("time", uint64(len(times)))
	if err != nil {
		return err
	}
	dims := []netcdf.Dim{timeDim}
	if g.layout.Leading == 2 {
		zlevDim, err := ds.AddDim("zlev", 1)
		if err != nil {
			return err
		}
		dims = append(dims, zlevDim)
	}
	latDim, err := ds.AddDim("lat", uint64(len(g.lat)))
	if err != nil {
		return err
	}
	lonDim, err := ds.AddDim("lon", uint64(len(g.lon)))
	if err != nil {
		return err
	}
	dims = append(dims, latDim, lonDim)

	timeVar, err := ds.AddVar("time", netcdf.INT, []netcdf.Dim{timeDim})
	if err != nil {
		return err
	}
	if err := timeVar.Attr("units").WriteBytes([]byte(domain.TimeUnits)); err != nil {
		return err
	}
	latVar, err := ds.AddVar("lat", netcdf.FLOAT, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	if err := latVar.Attr("units").WriteBytes([]byte("degrees_north")); err != nil {
		return err
	}
	lonVar, err := ds.AddVar("lon", netcdf.FLOAT, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}
	if err := lonVar.Attr("units").WriteBytes([]byte("degrees_east")); err != nil {
		return err
	}

	sstPack, errPack, sstUnits := ghrsstSST, ghrsstErr, "kelvin"
	if g.layout.SSTOffset != 0 {
		sstPack, errPack, sstUnits = oisstSST, oisstErr, "Celsius"
	}
	sstVar, err := addPackedVar(ds, g.layout.SSTVar, dims, sstPack, sstUnits)
	if err != nil {
		return err
	}
	var errVar netcdf.Var
	if g.layout.HasError() {
		errVar, err = addPackedVar(ds, g.layout.ErrVar, dims, errPack, "kelvin")
		if err != nil {
			return err
		}
	}
	if err := ds.Attr("title").WriteBytes([]byte("Synthetic " + g.layout.Description)); err != nil {
		return err
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	secs := make([]int32, len(times))
	for i, t := range times {
		secs[i] = int32(t.Sub(domain.Epoch).Seconds())
	}
	if err := timeVar.WriteInt32s(secs); err != nil {
		return err
	}
	if err := latVar.WriteFloat32s(toFloat32(g.lat)); err != nil {
		return err
	}
	if err := lonVar.WriteFloat32s(toFloat32(g.lon)); err != nil {
		return err
	}

	offset := g.layout.SSTOffset
	sst := g.pack(times, sstPack, func(la, lo float64, t time.Time) float64 {
		return SynthSST(la, lo, t) - offset
	})
	if err := sstVar.WriteInt16s(sst); err != nil {
		return fmt.Errorf("failed to write %s: %w", g.layout.SSTVar, err)
	}
	if g.layout.HasError() {
		e := g.pack(times, errPack, func(la, lo float64, _ time.Time) float64 { return SynthError(la, lo) })
		if err := errVar.WriteInt16s(e); err != nil {
			return fmt.Errorf("failed to write %s: %w", g.layout.ErrVar, err)
		}
	}
	return nil
}

func addPackedVar(ds netcdf.Dataset, name string, dims []netcdf.Dim, p packing, units string) (netcdf.Var, error) {
	v, err := ds.AddVar(name, netcdf.SHORT, dims)
	if err != nil {
		return v, err
	}
	if err := v.Attr("_FillValue").WriteInt16s([]int16{p.fill}); err != nil {
		return v, err
	}
	if err := v.Attr("scale_factor").WriteFloat64s([]float64{p.scale}); err != nil {
		return v, err
	}
	if err := v.Attr("add_offset").WriteFloat64s([]float64{p.offset}); err != nil {
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
