package interp

import (
	"math/rand"
	"slices"
	"testing"
)

// hullArea2 returns twice the area of the convex hull of pts.
func hullArea2(pts []ipoint) int64 {
	ps := slices.Clone(pts)
	slices.SortFunc(ps, func(a, b ipoint) int {
		if a.X != b.X {
			return int(a.X - b.X)
		}
		return int(a.Y - b.Y)
	})
	var hull []ipoint
	for pass := 0; pass < 2; pass++ {
		start := len(hull)
		for _, p := range ps {
			for len(hull) >= start+2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
				hull = hull[:len(hull)-1]
			}
			hull = append(hull, p)
		}
		hull = hull[:len(hull)-1]
		slices.Reverse(ps)
	}
	var area int64
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		area += a.X*b.Y - b.X*a.Y
	}
	return area
}

func checkTriangulation(t *testing.T, pts []ipoint) {
	t.Helper()
	tri := triangulate(pts)
	tris := tri.realTriangles()
	if len(tris) == 0 {
		t.Fatalf("no triangles for %d points", len(pts))
	}

	var area int64
	for _, v := range tris {
		a, b, c := pts[v[0]], pts[v[1]], pts[v[2]]
		s := cross(a, b, c)
		if s <= 0 {
			t.Fatalf("triangle %v is not counter-clockwise", v)
		}
		area += s
		for k, p := range pts {
			if k == v[0] || k == v[1] || k == v[2] {
				continue
			}
			if incircle64(a, b, c, p) > 0 {
				t.Fatalf("point %v inside circumcircle of %v", p, v)
			}
		}
	}
	if want := hullArea2(pts); area != want {
		t.Errorf("triangles cover area %d, convex hull %d", area, want)
	}
}

func TestTriangulate_RandomPoints(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := map[ipoint]bool{}
	var pts []ipoint
	for len(pts) < 200 {
		p := ipoint{X: rng.Int63n(40), Y: rng.Int63n(30)}
		if !seen[p] {
			seen[p] = true
			pts = append(pts, p)
		}
	}
	checkTriangulation(t, pts)
}

// TestTriangulate_FullGrid exercises heavily cocircular input.
func TestTriangulate_FullGrid(t *testing.T) {
	var pts []ipoint
	for y := int64(0); y < 12; y++ {
		for x := int64(0); x < 17; x++ {
			pts = append(pts, ipoint{X: x, Y: y})
		}
	}
	checkTriangulation(t, pts)
	if got := len(triangulate(pts).realTriangles()); got != 2*11*16 {
		t.Errorf("full grid produced %d triangles, want %d", got, 2*11*16)
	}
}

func TestTriangulate_Collinear(t *testing.T) {
	pts := []ipoint{{0, 0}, {1, 1}, {2, 2}, {5, 5}}
	if got := len(triangulate(pts).realTriangles()); got != 0 {
		t.Errorf("collinear points produced %d triangles", got)
	}
}

func TestHilbertIndex_Bijective(t *testing.T) {
	const side = 8
	seen := make(map[int64]bool)
	for x := int64(0); x < side; x++ {
		for y := int64(0); y < side; y++ {
			d := hilbertIndex(side, x, y)
			if d < 0 || d >= side*side || seen[d] {
				t.Fatalf("hilbertIndex(%d, %d) = %d duplicates or out of range", x, y, d)
			}
			seen[d] = true
		}
	}
}
