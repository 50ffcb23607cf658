package interp

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"go.ngs.io/sst-prescription/internal/domain"
)

// indexPoint is a grid cell in index space, stored in the k-d tree.
type indexPoint struct {
	Row, Col float64
	Value    float64
}

// Compare implements kdtree.Comparable.
func (p indexPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexPoint)
	switch d {
	case 0:
		return p.Row - q.Row
	case 1:
		return p.Col - q.Col
	default:
		panic("illegal dimension")
	}
}

// Dims implements kdtree.Comparable.
func (p indexPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance in index space.
func (p indexPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexPoint)
	dr := p.Row - q.Row
	dc := p.Col - q.Col
	return dr*dr + dc*dc
}

// indexPoints satisfies kdtree.Interface.
type indexPoints []indexPoint

func (p indexPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p indexPoints) Len() int                              { return len(p) }
func (p indexPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p indexPoints) Pivot(d kdtree.Dim) int {
	plane := indexPlane{indexPoints: p, Dim: d}
	return kdtree.Partition(plane, kdtree.MedianOfMedians(plane))
}

// indexPlane sorts indexPoints along one dimension.
type indexPlane struct {
	indexPoints
	kdtree.Dim
}

func (p indexPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.indexPoints[i].Row < p.indexPoints[j].Row
	case 1:
		return p.indexPoints[i].Col < p.indexPoints[j].Col
	default:
		panic("illegal dimension")
	}
}

func (p indexPlane) Slice(start, end int) kdtree.SortSlicer {
	return indexPlane{indexPoints: p.indexPoints[start:end], Dim: p.Dim}
}

func (p indexPlane) Swap(i, j int) {
	p.indexPoints[i], p.indexPoints[j] = p.indexPoints[j], p.indexPoints[i]
}

// fillNearest assigns every missing cell of out the value of its nearest
// valid cell. Among equidistant candidates the lowest row wins, then the
// lowest column, so the result does not depend on tree layout.
func fillNearest(out *domain.Grid, valid []cell) {
	points := make(indexPoints, len(valid))
	for k, c := range valid {
		points[k] = indexPoint{Row: float64(c.Row), Col: float64(c.Col), Value: c.Value}
	}
	tree := kdtree.New(points, false)

	for i, row := range out.Values {
		for j, v := range row {
			if !math.IsNaN(v) {
				continue
			}
			q := indexPoint{Row: float64(i), Col: float64(j)}
			row[j] = nearestValue(tree, q)
		}
	}
}

func nearestValue(tree *kdtree.Tree, q indexPoint) float64 {
	first, d := tree.Nearest(q)

	// Squared index distances are exact integers, so every tie is
	// collected by a keeper bounded at d.
	keeper := kdtree.NewDistKeeper(d)
	tree.NearestSet(keeper, q)

	best := first.(indexPoint)
	for _, item := range keeper.Heap {
		if item.Comparable == nil || item.Dist != d {
			continue
		}
		p := item.Comparable.(indexPoint)
		if p.Row < best.Row || (p.Row == best.Row && p.Col < best.Col) {
			best = p
		}
	}
	return best.Value
}
