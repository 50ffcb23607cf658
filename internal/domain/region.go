package domain

import "fmt"

// CropPadding is the number of extra cells kept around the region on each
// side when cropping.
const CropPadding = 10

// Range is an inclusive [min, max] interval in degrees.
type Range [2]float64

// Contains reports whether v is inside the inclusive interval.
func (r Range) Contains(v float64) bool {
	return v >= r[0] && v <= r[1]
}

// Region is a latitude/longitude bounding box.
type Region struct {
	Lat Range `yaml:"lat" toml:"lat" json:"lat"`
	Lon Range `yaml:"lon" toml:"lon" json:"lon"`
}

// Validate checks that both ranges are ordered and latitudes are physical.
func (r Region) Validate() error {
	if r.Lat[0] > r.Lat[1] {
		return fmt.Errorf("latitude bounds inverted: %v", r.Lat)
	}
	if r.Lon[0] > r.Lon[1] {
		return fmt.Errorf("longitude bounds inverted: %v", r.Lon)
	}
	if r.Lat[0] < -90 || r.Lat[1] > 90 {
		return fmt.Errorf("latitude bounds outside [-90, 90]: %v", r.Lat)
	}
	return nil
}

// LonAxisIs0360 reports whether a longitude axis uses the 0–360°
// convention, i.e. holds at least one value above 180.
func LonAxisIs0360(lons []float64) bool {
	for _, v := range lons {
		if v > 180 {
			return true
		}
	}
	return false
}

// NormalizeLonBounds maps western (negative) longitude bounds onto a 0–360°
// axis. The input is returned unchanged when the axis uses −180–180° or
// neither bound is negative.
func NormalizeLonBounds(lon Range, axisIs0360 bool) Range {
	if axisIs0360 && (lon[0] < 0 || lon[1] < 0) {
		return Range{lon[0] + 360, lon[1] + 360}
	}
	return lon
}

// Window is an inclusive index window [Row0, Row1] × [Col0, Col1].
type Window struct {
	Row0, Row1 int
	Col0, Col1 int
}

// Rows returns the number of rows in the window.
func (w Window) Rows() int { return w.Row1 - w.Row0 + 1 }

// Cols returns the number of columns in the window.
func (w Window) Cols() int { return w.Col1 - w.Col0 + 1 }

// CropWindow finds the index window covering the region on the given axes,
// padded by padding cells on each side and clamped to the axes. Axes may be
// ascending or descending.
func CropWindow(lat, lon []float64, region Region, padding int) (Window, error) {
	lonBounds := NormalizeLonBounds(region.Lon, LonAxisIs0360(lon))

	r0, r1, ok := indexSpan(lat, region.Lat)
	if !ok {
		return Window{}, invalidShape("no latitude within %v", region.Lat)
	}
	c0, c1, ok := indexSpan(lon, lonBounds)
	if !ok {
		return Window{}, invalidShape("no longitude within %v", lonBounds)
	}

	return Window{
		Row0: clamp(r0-padding, 0, len(lat)-1),
		Row1: clamp(r1+padding, 0, len(lat)-1),
		Col0: clamp(c0-padding, 0, len(lon)-1),
		Col1: clamp(c1+padding, 0, len(lon)-1),
	}, nil
}

// indexSpan returns the first and last index whose value is inside bounds.
func indexSpan(axis []float64, bounds Range) (first, last int, ok bool) {
	first, last = -1, -1
	for i, v := range axis {
		if bounds.Contains(v) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	return first, last, first >= 0
}

// clamp ensures value is within [minVal, maxVal] range.
func clamp(value, minVal, maxVal int) int {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}
