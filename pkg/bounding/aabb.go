// Package bounding implements axis-aligned bounding boxes and the algebra
// used to combine them. AABB values are never mutated through shared
// references; every operation returns a new box.
package bounding

import (
	"fmt"
	"math"

	"github.com/chazu/collide/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// AABB is an axis-aligned box given by its lower and upper corners.
// A valid box has Mins <= Maxs on every axis. The invalid box returned by
// Invalid has Mins = +Inf and Maxs = -Inf; it bounds nothing and is the
// identity element of Merge.
type AABB struct {
	Mins v2.Vec
	Maxs v2.Vec
}

// New returns the box with the given corners. The corners are not reordered.
func New(mins, maxs v2.Vec) AABB {
	return AABB{Mins: mins, Maxs: maxs}
}

// FromHalfExtents returns the box centered on center with the given half
// extents.
func FromHalfExtents(center, half v2.Vec) AABB {
	return AABB{Mins: center.Sub(half), Maxs: center.Add(half)}
}

// Invalid returns the empty sentinel box.
func Invalid() AABB {
	inf := math.Inf(1)
	return AABB{
		Mins: v2.Vec{X: inf, Y: inf},
		Maxs: v2.Vec{X: -inf, Y: -inf},
	}
}

// FromBox2 converts an sdfx box.
func FromBox2(b sdf.Box2) AABB {
	return AABB{Mins: b.Min, Maxs: b.Max}
}

// Box2 converts the box to its sdfx equivalent.
func (a AABB) Box2() sdf.Box2 {
	return sdf.Box2{Min: a.Mins, Max: a.Maxs}
}

// IsValid reports whether Mins <= Maxs on every axis.
func (a AABB) IsValid() bool {
	return a.Mins.X <= a.Maxs.X && a.Mins.Y <= a.Maxs.Y
}

// Merge returns the smallest box containing both a and b.
func (a AABB) Merge(b AABB) AABB {
	return AABB{Mins: a.Mins.Min(b.Mins), Maxs: a.Maxs.Max(b.Maxs)}
}

// MergeAll merges every box into one, starting from the invalid box.
func MergeAll(boxes ...AABB) AABB {
	acc := Invalid()
	for _, b := range boxes {
		acc = acc.Merge(b)
	}
	return acc
}

// Intersects reports whether the closed boxes share at least one point.
// Boxes that only touch along an edge or corner intersect.
func (a AABB) Intersects(b AABB) bool {
	return a.Mins.X <= b.Maxs.X && b.Mins.X <= a.Maxs.X &&
		a.Mins.Y <= b.Maxs.Y && b.Mins.Y <= a.Maxs.Y
}

// Contains reports whether b lies entirely inside the closed box a.
func (a AABB) Contains(b AABB) bool {
	return a.Mins.X <= b.Mins.X && b.Maxs.X <= a.Maxs.X &&
		a.Mins.Y <= b.Mins.Y && b.Maxs.Y <= a.Maxs.Y
}

// ContainsPoint reports whether p lies inside the closed box.
func (a AABB) ContainsPoint(p v2.Vec) bool {
	return a.Mins.X <= p.X && p.X <= a.Maxs.X &&
		a.Mins.Y <= p.Y && p.Y <= a.Maxs.Y
}

// Center returns the middle of the box.
func (a AABB) Center() v2.Vec {
	return a.Mins.Add(a.Maxs).MulScalar(0.5)
}

// HalfExtents returns half the size of the box along each axis.
func (a AABB) HalfExtents() v2.Vec {
	return a.Maxs.Sub(a.Mins).MulScalar(0.5)
}

// Extents returns the size of the box along each axis.
func (a AABB) Extents() v2.Vec {
	return a.Maxs.Sub(a.Mins)
}

// Area returns the area of a valid box, zero otherwise.
func (a AABB) Area() geom.Real {
	if !a.IsValid() {
		return 0
	}
	e := a.Extents()
	return e.X * e.Y
}

// Loosened grows the box by margin on every side.
func (a AABB) Loosened(margin geom.Real) AABB {
	m := v2.Vec{X: margin, Y: margin}
	return AABB{Mins: a.Mins.Sub(m), Maxs: a.Maxs.Add(m)}
}

// TransformBy returns the tight box around a after it is moved by iso.
// The invalid box stays invalid.
func (a AABB) TransformBy(iso geom.Isometry) AABB {
	if !a.IsValid() {
		return a
	}
	center := iso.TransformPoint(a.Center())
	half := a.HalfExtents()
	r := iso.Rotation
	ws := v2.Vec{
		X: math.Abs(r.Re)*half.X + math.Abs(r.Im)*half.Y,
		Y: math.Abs(r.Im)*half.X + math.Abs(r.Re)*half.Y,
	}
	return FromHalfExtents(center, ws)
}

// Equal reports whether both corners match within tol.
func (a AABB) Equal(b AABB, tol geom.Real) bool {
	return near(a.Mins.X, b.Mins.X, tol) && near(a.Mins.Y, b.Mins.Y, tol) &&
		near(a.Maxs.X, b.Maxs.X, tol) && near(a.Maxs.Y, b.Maxs.Y, tol)
}

func near(a, b, tol geom.Real) bool {
	if a == b {
		// covers matching infinities
		return true
	}
	return math.Abs(a-b) <= tol
}

func (a AABB) String() string {
	if !a.IsValid() {
		return "AABB(invalid)"
	}
	return fmt.Sprintf("AABB[(%g, %g) .. (%g, %g)]", a.Mins.X, a.Mins.Y, a.Maxs.X, a.Maxs.Y)
}
