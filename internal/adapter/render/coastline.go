package render

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"gonum.org/v1/plot/plotter"

	"go.ngs.io/sst-prescription/internal/domain"
)

// Coastline holds the coastline polylines overlapping a region, in
// longitudes of −180–180°.
type Coastline struct {
	lines [][]geom.Point
}

// LoadCoastline reads the line and polygon shapes of a shapefile, keeping
// those whose bounds overlap region.
func LoadCoastline(path string, region domain.Region) (*Coastline, error) {
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open coastline %s: %w", path, err)
	}
	defer dec.Close()

	bounds := regionBounds(region)
	coast := &Coastline{}
	for {
		g, _, more := dec.DecodeRowFields()
		if !more {
			break
		}
		if g == nil || !bounds.Overlaps(g.Bounds()) {
			continue
		}
		coast.add(g)
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("failed to read coastline %s: %w", path, err)
	}
	return coast, nil
}

// NewCoastline builds an overlay from in-memory shapes, keeping those whose
// bounds overlap region.
func NewCoastline(region domain.Region, shapes ...geom.Geom) *Coastline {
	bounds := regionBounds(region)
	coast := &Coastline{}
	for _, g := range shapes {
		if g != nil && bounds.Overlaps(g.Bounds()) {
			coast.add(g)
		}
	}
	return coast
}

// Len returns the number of polylines in the overlay.
func (c *Coastline) Len() int {
	if c == nil {
		return 0
	}
	return len(c.lines)
}

func (c *Coastline) add(g geom.Geom) {
	switch s := g.(type) {
	case geom.LineString:
		c.addLine(s)
	case geom.MultiLineString:
		for _, l := range s {
			c.addLine(l)
		}
	case geom.Polygon:
		for _, ring := range s {
			c.addLine(ring)
		}
	case geom.MultiPolygon:
		for _, p := range s {
			for _, ring := range p {
				c.addLine(ring)
			}
		}
	}
}

func (c *Coastline) addLine(pts []geom.Point) {
	if len(pts) < 2 {
		return
	}
	c.lines = append(c.lines, pts)
}

// polylines converts the overlay to plot coordinates. Western longitudes
// are shifted onto a 0–360° axis when lon0360 is set.
func (c *Coastline) polylines(lon0360 bool) []plotter.XYs {
	if c == nil {
		return nil
	}
	out := make([]plotter.XYs, 0, len(c.lines))
	for _, line := range c.lines {
		xys := make(plotter.XYs, len(line))
		for i, p := range line {
			x := p.X
			if lon0360 && x < 0 {
				x += 360
			}
			xys[i].X, xys[i].Y = x, p.Y
		}
		out = append(out, xys)
	}
	return out
}

// regionBounds expresses region in −180–180° longitudes, the convention of
// coastline shapefiles.
func regionBounds(region domain.Region) *geom.Bounds {
	lon := region.Lon
	if lon[0] > 180 && lon[1] > 180 {
		lon = domain.Range{lon[0] - 360, lon[1] - 360}
	}
	return &geom.Bounds{
		Min: geom.Point{X: lon[0], Y: region.Lat[0]},
		Max: geom.Point{X: lon[1], Y: region.Lat[1]},
	}
}
