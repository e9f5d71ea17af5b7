package shape

import (
	"errors"
	"fmt"

	"github.com/chazu/collide/internal/logging"
	"github.com/chazu/collide/pkg/bounding"
	"github.com/chazu/collide/pkg/geom"
	"github.com/chazu/collide/pkg/partition"
)

var (
	// ErrEmptyCompound is returned when a compound is built from no parts.
	ErrEmptyCompound = errors.New("compound: a compound shape must contain at least one shape")

	// ErrNestedComposite is returned when a part is itself a composite
	// shape. Nested composite shapes are not allowed.
	ErrNestedComposite = errors.New("compound: nested composite shapes are not allowed")
)

// NestedCompositeError identifies the part that made a compound nested.
type NestedCompositeError struct {
	Index int
	Kind  Kind
}

func (e *NestedCompositeError) Error() string {
	return fmt.Sprintf("%s (part %d is a %s)", ErrNestedComposite, e.Index, e.Kind)
}

func (e *NestedCompositeError) Unwrap() error {
	return ErrNestedComposite
}

// Part is one member of a compound: a shape and its placement relative to
// the compound frame.
type Part struct {
	Delta geom.Isometry
	Shape Shape
}

// Compound is the union of several transformed primitive shapes. It is the
// main way of building concave geometry from convex parts.
//
// A Compound is immutable. Part i has id i everywhere: in Parts, AABBs and
// the spatial index.
type Compound struct {
	parts []Part
	index *partition.Index
	aabbs []bounding.AABB
	aabb  bounding.AABB
}

// NewCompound builds a compound from parts with the default index layout.
//
// It fails with ErrEmptyCompound if parts is empty and with a
// *NestedCompositeError if some part is itself a composite shape. No
// compound is returned on failure.
func NewCompound(parts []Part) (*Compound, error) {
	return NewCompoundWithOptions(parts, partition.DefaultOptions())
}

// NewCompoundWithOptions is NewCompound with an explicit index layout.
func NewCompoundWithOptions(parts []Part, opts partition.Options) (*Compound, error) {
	if len(parts) == 0 {
		return nil, ErrEmptyCompound
	}

	owned := make([]Part, len(parts))
	aabbs := make([]bounding.AABB, len(parts))
	leaves := make([]partition.Leaf, len(parts))
	aabb := bounding.Invalid()

	for i, p := range parts {
		if p.Shape == nil {
			return nil, fmt.Errorf("compound: part %d has no shape", i)
		}
		if _, ok := p.Shape.AsCompositeShape(); ok {
			return nil, &NestedCompositeError{Index: i, Kind: p.Shape.Kind()}
		}

		bv := p.Shape.ComputeAABB(p.Delta)
		aabb = aabb.Merge(bv)
		owned[i] = p
		aabbs[i] = bv
		leaves[i] = partition.Leaf{ID: uint32(i), AABB: bv}
	}

	// No dilation: the index is never refit.
	index := partition.Build(leaves, 0, opts)

	logging.Debug("compound: built", "parts", len(owned), "aabb", aabb)
	return &Compound{
		parts: owned,
		index: index,
		aabbs: aabbs,
		aabb:  aabb,
	}, nil
}

// MustCompound is like NewCompound but panics when an invariant is
// violated.
func MustCompound(parts []Part) *Compound {
	c, err := NewCompound(parts)
	if err != nil {
		panic(err)
	}
	return c
}

// Parts returns the parts of the compound. The slice must not be modified.
func (c *Compound) Parts() []Part {
	return c.parts
}

// AABB returns the bounding box of the compound in its local frame.
func (c *Compound) AABB() bounding.AABB {
	return c.aabb
}

// AABBs returns the local bounding box of every part, indexed by part id.
// The slice must not be modified.
func (c *Compound) AABBs() []bounding.AABB {
	return c.aabbs
}

func (c *Compound) Kind() Kind { return KindCompound }

// ComputeAABB transforms the local compound AABB by pos. The result may be
// looser than the union of the placed parts when pos rotates.
func (c *Compound) ComputeAABB(pos geom.Isometry) bounding.AABB {
	return c.aabb.TransformBy(pos)
}

// AsCompositeShape returns the compound itself.
func (c *Compound) AsCompositeShape() (CompositeShape, bool) {
	return c, true
}

// NParts returns the number of parts.
func (c *Compound) NParts() int {
	return len(c.parts)
}

// MapPartAt calls f with the delta and shape of part id. Out of range ids
// are ignored.
func (c *Compound) MapPartAt(id uint32, f PartVisitor) {
	if int64(id) >= int64(len(c.parts)) {
		return
	}
	p := &c.parts[id]
	delta := p.Delta
	f(&delta, p.Shape)
}

// Index returns the spatial index over the part AABBs.
func (c *Compound) Index() *partition.Index {
	return c.index
}

// PartsIntersecting calls f with the id, delta and shape of every part
// whose local AABB intersects query, in ascending id order.
func (c *Compound) PartsIntersecting(query bounding.AABB, f func(id uint32, delta *geom.Isometry, part Shape)) {
	for _, id := range c.index.Intersecting(query) {
		c.MapPartAt(id, func(delta *geom.Isometry, part Shape) {
			f(id, delta, part)
		})
	}
}
