// Package partition provides a static spatial index over bounding boxes.
// The index is bulk-loaded once from (id, AABB) leaves and is never
// updated afterwards; rebuilding means building a new Index. A built
// Index is immutable and safe for concurrent queries.
package partition

import (
	"math"
	"slices"

	"github.com/chazu/collide/internal/logging"
	"github.com/chazu/collide/pkg/bounding"
	"github.com/chazu/collide/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/dhconnelly/rtreego"
	"github.com/samber/lo"
)

// Default R-tree fan-out.
const (
	DefaultMinChildren = 4
	DefaultMaxChildren = 16
)

// searchEpsilon is the smallest widening of an R-tree search. rtreego
// treats touching rectangles as disjoint, so candidates are gathered from a
// slightly larger window and re-tested with the closed AABB predicates.
const searchEpsilon = 1e-9

// minLength is the smallest side given to a zero-width leaf rectangle.
const minLength = 1e-12

// padULPs is how many float steps a pad spans at the largest coordinate of
// a box, so that widening survives rounding far from the origin.
const padULPs = 4

// Leaf is one indexed entry.
type Leaf struct {
	ID   uint32
	AABB bounding.AABB
}

// Options tunes the R-tree layout.
type Options struct {
	MinChildren int
	MaxChildren int
}

// DefaultOptions returns the default fan-out.
func DefaultOptions() Options {
	return Options{MinChildren: DefaultMinChildren, MaxChildren: DefaultMaxChildren}
}

func (o Options) normalized() Options {
	if o.MaxChildren < 2 {
		o.MaxChildren = DefaultMaxChildren
	}
	if o.MinChildren < 1 || o.MinChildren > o.MaxChildren/2 {
		o.MinChildren = max(1, o.MaxChildren/4)
	}
	return o
}

// entry adapts a leaf to rtreego.Spatial.
type entry struct {
	leaf Leaf
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

// Index is a bulk-loaded R-tree over leaf AABBs.
type Index struct {
	tree     *rtreego.Rtree
	leaves   []Leaf
	byID     map[uint32]int
	dilation geom.Real
}

// Build bulk-loads an index from leaves. Each stored box is the leaf AABB
// grown by dilation; pass 0 for an index that is never refit. Leaves with
// an invalid AABB are kept but never match a spatial query.
func Build(leaves []Leaf, dilation geom.Real, opts Options) *Index {
	opts = opts.normalized()
	idx := &Index{
		leaves:   make([]Leaf, len(leaves)),
		byID:     make(map[uint32]int, len(leaves)),
		dilation: dilation,
	}

	var objs []rtreego.Spatial
	for i, l := range leaves {
		if dilation != 0 && l.AABB.IsValid() {
			l.AABB = l.AABB.Loosened(dilation)
		}
		idx.leaves[i] = l
		idx.byID[l.ID] = i
		if !l.AABB.IsValid() {
			continue
		}
		objs = append(objs, &entry{leaf: l, rect: toRect(l.AABB, 0)})
	}

	idx.tree = rtreego.NewTree(2, opts.MinChildren, opts.MaxChildren, objs...)
	logging.Debug("partition: bulk-loaded index", "leaves", len(leaves), "indexed", idx.tree.Size())
	return idx
}

// padFor returns a pad of at least base that is still representable at
// the magnitude of a's coordinates.
func padFor(a bounding.AABB, base geom.Real) geom.Real {
	m := max(math.Abs(a.Mins.X), math.Abs(a.Mins.Y), math.Abs(a.Maxs.X), math.Abs(a.Maxs.Y))
	if math.IsInf(m, 0) || math.IsNaN(m) {
		return base
	}
	ulp := math.Nextafter(m, math.Inf(1)) - m
	return max(base, padULPs*ulp)
}

// toRect converts a valid AABB to an rtreego rectangle grown by pad. A
// zero-width side is given a length that is visible at the box's
// magnitude.
func toRect(a bounding.AABB, pad geom.Real) rtreego.Rect {
	lo := rtreego.Point{a.Mins.X - pad, a.Mins.Y - pad}
	hi := rtreego.Point{a.Maxs.X + pad, a.Maxs.Y + pad}
	minLen := padFor(a, minLength)
	for i := range hi {
		if hi[i]-lo[i] < minLen {
			hi[i] = lo[i] + minLen
		}
	}
	r, err := rtreego.NewRectFromPoints(lo, hi)
	if err != nil {
		// both corners are two dimensional
		panic("partition: " + err.Error())
	}
	return r
}

// Len returns the number of leaves, including those with invalid AABBs.
func (idx *Index) Len() int {
	return len(idx.leaves)
}

// Dilation returns the margin the index was built with.
func (idx *Index) Dilation() geom.Real {
	return idx.dilation
}

// Leaf returns the stored leaf with the given id.
func (idx *Index) Leaf(id uint32) (Leaf, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return Leaf{}, false
	}
	return idx.leaves[i], true
}

// IDs returns every leaf id in ascending order.
func (idx *Index) IDs() []uint32 {
	ids := lo.Map(idx.leaves, func(l Leaf, _ int) uint32 { return l.ID })
	slices.Sort(ids)
	return ids
}

// search returns the leaves whose rectangles meet the widened query window
// and pass keep, sorted by id.
func (idx *Index) search(window bounding.AABB, keep func(Leaf) bool) []uint32 {
	if !window.IsValid() || idx.tree.Size() == 0 {
		return nil
	}
	hits := idx.tree.SearchIntersect(toRect(window, padFor(window, searchEpsilon)))
	ids := lo.FilterMap(hits, func(s rtreego.Spatial, _ int) (uint32, bool) {
		e := s.(*entry)
		return e.leaf.ID, keep(e.leaf)
	})
	slices.Sort(ids)
	return ids
}

// Intersecting returns the ids of leaves whose AABB intersects query.
// Boundaries are closed: touching boxes intersect.
func (idx *Index) Intersecting(query bounding.AABB) []uint32 {
	return idx.search(query, func(l Leaf) bool {
		return l.AABB.Intersects(query)
	})
}

// ContainedIn returns the ids of leaves whose AABB lies inside query.
func (idx *Index) ContainedIn(query bounding.AABB) []uint32 {
	return idx.search(query, func(l Leaf) bool {
		return query.Contains(l.AABB)
	})
}

// ContainingPoint returns the ids of leaves whose AABB contains p.
func (idx *Index) ContainingPoint(p v2.Vec) []uint32 {
	return idx.search(bounding.New(p, p), func(l Leaf) bool {
		return l.AABB.ContainsPoint(p)
	})
}

// Nearest returns the id of the leaf whose AABB is closest to p. It
// reports false when no valid leaf is indexed.
func (idx *Index) Nearest(p v2.Vec) (uint32, bool) {
	if idx.tree.Size() == 0 {
		return 0, false
	}
	s := idx.tree.NearestNeighbor(rtreego.Point{p.X, p.Y})
	if s == nil {
		return 0, false
	}
	return s.(*entry).leaf.ID, true
}
