// Package sst reads gridded SST analyses from the supported NetCDF
// product layouts.
package sst

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the date format substituted for {date} in file patterns.
const DateLayout = "20060102"

// Layout describes where a product's files live and how its variables are
// indexed.
type Layout struct {
	ID          string
	Description string

	SubDir   string // Directory under the input root.
	Pattern  string // Glob with a {date} placeholder.
	FileName string // Concrete name matching Pattern, used when synthesizing.

	SSTVar  string
	ErrVar  string // Empty when the product carries no analysis error.
	Leading int    // Number of leading dimensions before (lat, lon).
	Hourly  bool   // First leading index is the hour of day.

	SSTOffset float64 // Added to SST after unpacking to obtain Kelvin.
}

// HasError reports whether the product carries an analysis error field.
func (l Layout) HasError() bool { return l.ErrVar != "" }

// Glob returns the file pattern for the day of t, relative to the input
// root.
func (l Layout) Glob(t time.Time) string {
	return l.SubDir + "/" + strings.ReplaceAll(l.Pattern, "{date}", t.Format(DateLayout))
}

// Name returns the concrete file name for the day of t.
func (l Layout) Name(t time.Time) string {
	return strings.ReplaceAll(l.FileName, "{date}", t.Format(DateLayout))
}

// Leading indices for t, one per leading dimension.
func (l Layout) leadingIndex(t time.Time) []uint64 {
	idx := make([]uint64, l.Leading)
	if l.Hourly && l.Leading > 0 {
		idx[0] = uint64(t.Hour())
	}
	return idx
}

const celsiusToKelvin = 273.15

var layouts = map[string]Layout{
	"OSTIA": {
		ID:          "OSTIA",
		Description: "OSTIA foundation SST, daily (Copernicus Marine Service)",
		SubDir:      "OSTIA",
		Pattern:     "{date}*-OSTIA-*.nc",
		FileName:    "{date}120000-UKMO-L4_GHRSST-SSTfnd-OSTIA-GLOB-v02.0-fv02.0.nc",
		SSTVar:      "analysed_sst",
		ErrVar:      "analysis_error",
		Leading:     1,
	},
	"OSTIAdiu": {
		ID:          "OSTIAdiu",
		Description: "OSTIA diurnal skin SST, hourly (Copernicus Marine Service)",
		SubDir:      "OSTIA",
		Pattern:     "{date}*-OSTIAdiu-*.nc",
		FileName:    "{date}000000-UKMO-L4_GHRSST-SSTskin-OSTIAdiu-GLOB-v02.0-fv02.0.nc",
		SSTVar:      "analysed_sst",
		Leading:     1,
		Hourly:      true,
	},
	"OISST": {
		ID:          "OISST",
		Description: "NOAA OI SST v2.1 high resolution, daily",
		SubDir:      "OISST",
		Pattern:     "oisst-*.{date}.nc",
		FileName:    "oisst-avhrr-v02r01.{date}.nc",
		SSTVar:      "sst",
		ErrVar:      "err",
		Leading:     2,
		SSTOffset:   celsiusToKelvin,
	},
	"GHRSST_JPL_4.1": {
		ID:          "GHRSST_JPL_4.1",
		Description: "GHRSST L4 MUR foundation SST v4.1 (JPL PO.DAAC)",
		SubDir:      "GHRSST",
		Pattern:     "{date}*-JPL-*-MUR-*-fv04.1.nc",
		FileName:    "{date}090000-JPL-L4_GHRSST-SSTfnd-MUR-GLOB-v02.0-fv04.1.nc",
		SSTVar:      "analysed_sst",
		ErrVar:      "analysis_error",
		Leading:     1,
	},
	"GHRSST_JPL_4.2": {
		ID:          "GHRSST_JPL_4.2",
		Description: "GHRSST L4 MUR 0.25° foundation SST v4.2 (JPL PO.DAAC)",
		SubDir:      "GHRSST",
		Pattern:     "{date}*-JPL-*-MUR25-*-fv04.2.nc",
		FileName:    "{date}090000-JPL-L4_GHRSST-SSTfnd-MUR25-GLOB-v02.0-fv04.2.nc",
		SSTVar:      "analysed_sst",
		ErrVar:      "analysis_error",
		Leading:     1,
	},
	"GHRSST_NCEI": {
		ID:          "GHRSST_NCEI",
		Description: "GHRSST L4 AVHRR_OI blended SST v2.1 (NCEI)",
		SubDir:      "GHRSST",
		Pattern:     "{date}*-NCEI-*-AVHRR_OI-*-fv02.1.nc",
		FileName:    "{date}120000-NCEI-L4_GHRSST-SSTblend-AVHRR_OI-GLOB-v02.0-fv02.1.nc",
		SSTVar:      "analysed_sst",
		ErrVar:      "analysis_error",
		Leading:     1,
	},
	"GHRSST_UKMO": {
		ID:          "GHRSST_UKMO",
		Description: "GHRSST L4 OSTIA foundation SST (UKMO, JPL PO.DAAC)",
		SubDir:      "GHRSST",
		Pattern:     "{date}*-UKMO-*-OSTIA-*-fv02.0.nc",
		FileName:    "{date}120000-UKMO-L4_GHRSST-SSTfnd-OSTIA-GLOB-v02.0-fv02.0.nc",
		SSTVar:      "analysed_sst",
		ErrVar:      "analysis_error",
		Leading:     1,
	},
}

// Lookup returns the layout registered under id.
func Lookup(id string) (Layout, error) {
	l, ok := layouts[id]
	if !ok {
		return Layout{}, fmt.Errorf("unknown dataset %q (available: %s)", id, strings.Join(IDs(), ", "))
	}
	return l, nil
}

// IDs returns the registered dataset identifiers in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(layouts))
	for id := range layouts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Layouts returns every registered layout sorted by id.
func Layouts() []Layout {
	out := make([]Layout, 0, len(layouts))
	for _, id := range IDs() {
		out = append(out, layouts[id])
	}
	return out
}
