package interp

import (
	"math"

	"go.ngs.io/sst-prescription/internal/domain"
)

// fillLinear interpolates missing cells of out linearly inside each
// Delaunay triangle of the valid cells. Cells outside the convex hull stay
// NaN. Fewer than three valid cells, or only collinear ones, yield no
// triangle and leave every missing cell NaN.
func fillLinear(out *domain.Grid, valid []cell) {
	if len(valid) < 3 {
		return
	}

	pts := make([]ipoint, len(valid))
	for k, c := range valid {
		pts[k] = ipoint{X: int64(c.Col), Y: int64(c.Row)}
	}
	tri := triangulate(pts)

	for _, t := range tri.realTriangles() {
		a, b, c := pts[t[0]], pts[t[1]], pts[t[2]]
		va, vb, vc := valid[t[0]].Value, valid[t[1]].Value, valid[t[2]].Value
		area := cross(a, b, c)
		if area <= 0 {
			continue
		}

		x0, x1 := min(a.X, b.X, c.X), max(a.X, b.X, c.X)
		y0, y1 := min(a.Y, b.Y, c.Y), max(a.Y, b.Y, c.Y)
		for y := y0; y <= y1; y++ {
			row := out.Values[y]
			for x := x0; x <= x1; x++ {
				if !math.IsNaN(row[x]) {
					continue
				}
				p := ipoint{X: x, Y: y}
				wa := cross(b, c, p)
				wb := cross(c, a, p)
				wc := cross(a, b, p)
				if wa < 0 || wb < 0 || wc < 0 {
					continue
				}
				row[x] = (float64(wa)*va + float64(wb)*vb + float64(wc)*vc) / float64(area)
			}
		}
	}
}

// cross returns twice the signed area of (a, b, c).
func cross(a, b, c ipoint) int64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
