// Package shape defines the shape capability abstraction consumed by the
// collision pipeline, the primitive shapes, and Compound, the concave
// aggregate built from transformed primitives.
//
// Shapes are immutable once constructed and are shared by pointer: the
// same primitive may appear in several parts of one compound or in several
// compounds.
package shape

import (
	"github.com/chazu/collide/pkg/bounding"
	"github.com/chazu/collide/pkg/geom"
	"github.com/chazu/collide/pkg/partition"
)

// Kind identifies the concrete type behind a Shape.
type Kind int

const (
	KindBall Kind = iota
	KindCuboid
	KindCapsule
	KindConvexPolygon
	KindCompound
)

func (k Kind) String() string {
	switch k {
	case KindBall:
		return "ball"
	case KindCuboid:
		return "cuboid"
	case KindCapsule:
		return "capsule"
	case KindConvexPolygon:
		return "convex-polygon"
	case KindCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// Shape is implemented by every shape kind.
type Shape interface {
	// Kind reports the concrete shape type.
	Kind() Kind

	// ComputeAABB returns the bounding box of the shape in the frame
	// obtained by applying pos to its local frame.
	ComputeAABB(pos geom.Isometry) bounding.AABB

	// AsCompositeShape returns the composite view of the shape and true
	// only when the shape itself aggregates parts. Primitives return
	// (nil, false).
	AsCompositeShape() (CompositeShape, bool)
}

// PartVisitor receives one part of a composite shape. delta is the part's
// placement relative to the composite, or nil when the part has no
// transform of its own.
type PartVisitor func(delta *geom.Isometry, part Shape)

// CompositeShape is the view of a shape made of indexed parts.
type CompositeShape interface {
	// NParts returns the number of parts.
	NParts() int

	// MapPartAt calls f exactly once with the part whose id is given.
	// Ids outside [0, NParts()) are ignored and f is not called.
	MapPartAt(id uint32, f PartVisitor)

	// Index returns the spatial index over the part AABBs, keyed by id.
	Index() *partition.Index
}

// primitive supplies the AsCompositeShape answer shared by every
// non-aggregate shape.
type primitive struct{}

func (primitive) AsCompositeShape() (CompositeShape, bool) {
	return nil, false
}
