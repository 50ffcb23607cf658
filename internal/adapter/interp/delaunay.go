package interp

import (
	"math/big"
	"math/rand"
	"slices"
)

// ipoint is a vertex with integer coordinates (x = column, y = row).
type ipoint struct {
	X, Y int64
}

// triangle stores counter-clockwise vertices and, for each vertex, the
// neighbour across the opposite edge (-1 on the outer boundary).
type triangle struct {
	v    [3]int
	n    [3]int
	dead bool

	// Cavity bookkeeping, valid while seen equals the current insertion.
	seen int
	bad  bool
}

// fastLimit bounds the coordinate extent for which the in-circle test of
// real vertices fits in int64.
const fastLimit = 20000

// triangulation is an incremental Bowyer-Watson Delaunay triangulation of
// integer points. The first nReal vertices are input points; the last
// three span an enclosing triangle far enough away that it never lies
// inside the circumcircle of a triangle of input points. Predicates are
// exact, using int64 for input vertices and math/big otherwise.
type triangulation struct {
	pts   []ipoint
	nReal int
	fast  bool

	tris []triangle
	last int
	iter int

	startAt, endAt []int
}

// triangulate builds the Delaunay triangulation of pts. Insertion order is
// biased-randomized and spatially sorted so that point location stays
// short and cavities stay small on regular grids.
func triangulate(pts []ipoint) *triangulation {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	extent := max(maxX-minX, maxY-minY) + 1
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	// Circumradius of an integer triangle is at most sqrt(2)*extent^3.
	far := 3*extent*extent*extent + extent + 16

	n := len(pts)
	d := &triangulation{
		pts:     make([]ipoint, 0, n+3),
		nReal:   n,
		fast:    extent <= fastLimit,
		startAt: make([]int, n+3),
		endAt:   make([]int, n+3),
	}
	d.pts = append(d.pts, pts...)
	d.pts = append(d.pts,
		ipoint{cx - far, cy - far},
		ipoint{cx + far, cy - far},
		ipoint{cx, cy + far},
	)
	d.tris = append(d.tris, triangle{v: [3]int{n, n + 1, n + 2}, n: [3]int{-1, -1, -1}})

	for _, k := range insertionOrder(pts, minX, minY, extent) {
		d.insert(k)
	}
	return d
}

// insertionOrder returns a BRIO permutation: a seeded shuffle split into
// rounds of doubling size, each round sorted along a Hilbert curve.
func insertionOrder(pts []ipoint, minX, minY, extent int64) []int {
	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(1))
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	side := int64(1)
	for side < extent {
		side <<= 1
	}
	key := make([]int64, len(pts))
	for i, p := range pts {
		key[i] = hilbertIndex(side, p.X-minX, p.Y-minY)
	}

	for end := len(order); end > 0; {
		start := end / 2
		if end-start < 64 {
			start = 0
		}
		round := order[start:end]
		slices.SortFunc(round, func(a, b int) int {
			switch {
			case key[a] < key[b]:
				return -1
			case key[a] > key[b]:
				return 1
			}
			return 0
		})
		end = start
	}
	return order
}

// hilbertIndex maps (x, y) in [0, side) to its distance along the Hilbert
// curve filling a side×side square.
func hilbertIndex(side, x, y int64) int64 {
	var d int64
	for s := side / 2; s > 0; s /= 2 {
		var rx, ry int64
		if x&s > 0 {
			rx = 1
		}
		if y&s > 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)
		if ry == 0 {
			if rx == 1 {
				x = side - 1 - x
				y = side - 1 - y
			}
			x, y = y, x
		}
	}
	return d
}

func (d *triangulation) isReal(i int) bool { return i < d.nReal }

// orient returns the sign of the signed area of (a, b, c): positive when
// counter-clockwise.
func (d *triangulation) orient(a, b, c int) int {
	pa, pb, pc := d.pts[a], d.pts[b], d.pts[c]
	if d.isReal(a) && d.isReal(b) && d.isReal(c) {
		return sign((pb.X-pa.X)*(pc.Y-pa.Y) - (pb.Y-pa.Y)*(pc.X-pa.X))
	}
	return bigOrient(pa, pb, pc)
}

// inCircle reports whether vertex p lies strictly inside the circumcircle
// of triangle t.
func (d *triangulation) inCircle(t, p int) bool {
	v := d.tris[t].v
	if d.fast && d.isReal(v[0]) && d.isReal(v[1]) && d.isReal(v[2]) {
		return incircle64(d.pts[v[0]], d.pts[v[1]], d.pts[v[2]], d.pts[p]) > 0
	}
	return bigInCircle(d.pts[v[0]], d.pts[v[1]], d.pts[v[2]], d.pts[p]) > 0
}

// locate returns a live triangle containing vertex p, on its boundary or
// in its interior.
func (d *triangulation) locate(p int) int {
	t := d.last
	for steps := 0; steps < len(d.tris); steps++ {
		next := -1
		v := d.tris[t].v
		for i := 0; i < 3; i++ {
			if d.orient(v[(i+1)%3], v[(i+2)%3], p) < 0 {
				next = d.tris[t].n[i]
				break
			}
		}
		if next < 0 {
			return t
		}
		t = next
	}

	// Walk did not converge; scan.
	for t := range d.tris {
		if d.tris[t].dead {
			continue
		}
		v := d.tris[t].v
		if d.orient(v[0], v[1], p) >= 0 && d.orient(v[1], v[2], p) >= 0 && d.orient(v[2], v[0], p) >= 0 {
			return t
		}
	}
	return d.last
}

type cavityEdge struct {
	a, b  int
	outer int
	old   int
}

// insert adds vertex p by re-triangulating the cavity of triangles whose
// circumcircle strictly contains it.
func (d *triangulation) insert(p int) {
	d.iter++
	cur := d.iter

	t0 := d.locate(p)
	d.tris[t0].seen, d.tris[t0].bad = cur, true
	cavity := []int{t0}
	stack := []int{t0}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nb := range d.tris[t].n {
			if nb < 0 || d.tris[nb].seen == cur {
				continue
			}
			d.tris[nb].seen = cur
			d.tris[nb].bad = d.inCircle(nb, p)
			if d.tris[nb].bad {
				cavity = append(cavity, nb)
				stack = append(stack, nb)
			}
		}
	}

	var edges []cavityEdge
	for _, t := range cavity {
		tri := &d.tris[t]
		for i, nb := range tri.n {
			if nb >= 0 && d.tris[nb].seen == cur && d.tris[nb].bad {
				continue
			}
			edges = append(edges, cavityEdge{a: tri.v[(i+1)%3], b: tri.v[(i+2)%3], outer: nb, old: t})
		}
		tri.dead = true
	}

	first := len(d.tris)
	for k, e := range edges {
		id := first + k
		d.tris = append(d.tris, triangle{v: [3]int{e.a, e.b, p}, n: [3]int{-1, -1, e.outer}})
		if e.outer >= 0 {
			on := &d.tris[e.outer].n
			for j := range on {
				if on[j] == e.old {
					on[j] = id
				}
			}
		}
		d.startAt[e.a] = id
		d.endAt[e.b] = id
	}
	for id := first; id < len(d.tris); id++ {
		tri := &d.tris[id]
		tri.n[0] = d.startAt[tri.v[1]]
		tri.n[1] = d.endAt[tri.v[0]]
	}
	d.last = len(d.tris) - 1
}

// realTriangles returns the live triangles whose vertices are all input
// points.
func (d *triangulation) realTriangles() [][3]int {
	var out [][3]int
	for _, t := range d.tris {
		if t.dead || !d.isReal(t.v[0]) || !d.isReal(t.v[1]) || !d.isReal(t.v[2]) {
			continue
		}
		out = append(out, t.v)
	}
	return out
}

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func incircle64(a, b, c, p ipoint) int {
	adx, ady := a.X-p.X, a.Y-p.Y
	bdx, bdy := b.X-p.X, b.Y-p.Y
	cdx, cdy := c.X-p.X, c.Y-p.Y
	alift := adx*adx + ady*ady
	blift := bdx*bdx + bdy*bdy
	clift := cdx*cdx + cdy*cdy
	return sign(alift*(bdx*cdy-bdy*cdx) + blift*(cdx*ady-cdy*adx) + clift*(adx*bdy-ady*bdx))
}

func bigOrient(a, b, c ipoint) int {
	abx := new(big.Int).SetInt64(b.X - a.X)
	aby := new(big.Int).SetInt64(b.Y - a.Y)
	acx := new(big.Int).SetInt64(c.X - a.X)
	acy := new(big.Int).SetInt64(c.Y - a.Y)
	l := new(big.Int).Mul(abx, acy)
	r := new(big.Int).Mul(aby, acx)
	return l.Sub(l, r).Sign()
}

func bigInCircle(a, b, c, p ipoint) int {
	adx, ady := big.NewInt(a.X-p.X), big.NewInt(a.Y-p.Y)
	bdx, bdy := big.NewInt(b.X-p.X), big.NewInt(b.Y-p.Y)
	cdx, cdy := big.NewInt(c.X-p.X), big.NewInt(c.Y-p.Y)

	lift := func(x, y *big.Int) *big.Int {
		s := new(big.Int).Mul(x, x)
		return s.Add(s, new(big.Int).Mul(y, y))
	}
	cross := func(x1, y1, x2, y2 *big.Int) *big.Int {
		s := new(big.Int).Mul(x1, y2)
		return s.Sub(s, new(big.Int).Mul(y1, x2))
	}

	det := new(big.Int).Mul(lift(adx, ady), cross(bdx, bdy, cdx, cdy))
	det.Add(det, new(big.Int).Mul(lift(bdx, bdy), cross(cdx, cdy, adx, ady)))
	det.Add(det, new(big.Int).Mul(lift(cdx, cdy), cross(adx, ady, bdx, bdy)))
	return det.Sign()
}
