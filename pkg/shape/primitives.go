package shape

import (
	"fmt"
	"math"

	"github.com/chazu/collide/pkg/bounding"
	"github.com/chazu/collide/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Ball is a disk centered on its local origin.
type Ball struct {
	primitive
	Radius geom.Real
}

// NewBall returns a ball with the given radius.
func NewBall(radius geom.Real) (*Ball, error) {
	if radius < 0 || math.IsNaN(radius) {
		return nil, fmt.Errorf("ball: radius %g must be non-negative", radius)
	}
	return &Ball{Radius: radius}, nil
}

func (b *Ball) Kind() Kind { return KindBall }

// ComputeAABB is the square of side 2*Radius around the placed center.
func (b *Ball) ComputeAABB(pos geom.Isometry) bounding.AABB {
	r := v2.Vec{X: b.Radius, Y: b.Radius}
	return bounding.FromHalfExtents(pos.Translation, r)
}

// Cuboid is a rectangle centered on its local origin.
type Cuboid struct {
	primitive
	HalfExtents v2.Vec
}

// NewCuboid returns a rectangle with the given half extents.
func NewCuboid(hx, hy geom.Real) (*Cuboid, error) {
	if hx < 0 || hy < 0 || math.IsNaN(hx) || math.IsNaN(hy) {
		return nil, fmt.Errorf("cuboid: half extents (%g, %g) must be non-negative", hx, hy)
	}
	return &Cuboid{HalfExtents: v2.Vec{X: hx, Y: hy}}, nil
}

func (c *Cuboid) Kind() Kind { return KindCuboid }

// LocalAABB returns the rectangle itself.
func (c *Cuboid) LocalAABB() bounding.AABB {
	return bounding.FromHalfExtents(v2.Vec{}, c.HalfExtents)
}

func (c *Cuboid) ComputeAABB(pos geom.Isometry) bounding.AABB {
	return c.LocalAABB().TransformBy(pos)
}

// Capsule is the set of points within Radius of the segment running from
// (0, -HalfHeight) to (0, HalfHeight).
type Capsule struct {
	primitive
	HalfHeight geom.Real
	Radius     geom.Real
}

// NewCapsule returns a capsule aligned with the local Y axis.
func NewCapsule(halfHeight, radius geom.Real) (*Capsule, error) {
	if halfHeight < 0 || radius < 0 || math.IsNaN(halfHeight) || math.IsNaN(radius) {
		return nil, fmt.Errorf("capsule: half height %g and radius %g must be non-negative", halfHeight, radius)
	}
	return &Capsule{HalfHeight: halfHeight, Radius: radius}, nil
}

func (c *Capsule) Kind() Kind { return KindCapsule }

// Segment returns the end points of the capsule axis in its own frame.
func (c *Capsule) Segment() (a, b v2.Vec) {
	return v2.Vec{Y: -c.HalfHeight}, v2.Vec{Y: c.HalfHeight}
}

// ComputeAABB bounds the placed axis and grows it by the radius.
func (c *Capsule) ComputeAABB(pos geom.Isometry) bounding.AABB {
	a, b := c.Segment()
	return bounding.PointCloudAABB(pos, []v2.Vec{a, b}).Loosened(c.Radius)
}

// ConvexPolygon is a convex polygon given by its vertices in
// counter-clockwise order. Convexity is not checked.
type ConvexPolygon struct {
	primitive
	points []v2.Vec
}

// NewConvexPolygon copies points into a new polygon. At least one point is
// required.
func NewConvexPolygon(points []v2.Vec) (*ConvexPolygon, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("convex polygon: no vertices")
	}
	pts := make([]v2.Vec, len(points))
	copy(pts, points)
	return &ConvexPolygon{points: pts}, nil
}

func (p *ConvexPolygon) Kind() Kind { return KindConvexPolygon }

// Points returns the vertices. The slice must not be modified.
func (p *ConvexPolygon) Points() []v2.Vec {
	return p.points
}

// AABB returns the bounding box of the polygon transformed by pos.
func (p *ConvexPolygon) AABB(pos geom.Isometry) bounding.AABB {
	return bounding.PointCloudAABB(pos, p.points)
}

// LocalAABB returns the bounding box of the polygon in its own frame.
func (p *ConvexPolygon) LocalAABB() bounding.AABB {
	return bounding.LocalPointCloudAABB(p.points)
}

func (p *ConvexPolygon) ComputeAABB(pos geom.Isometry) bounding.AABB {
	return p.AABB(pos)
}

// Rectangle returns the axis-aligned w by h polygon with its lower-left
// corner at the origin.
func Rectangle(w, h geom.Real) *ConvexPolygon {
	return MustConvexPolygon([]v2.Vec{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}})
}

// MustBall is like NewBall but panics on invalid input.
func MustBall(radius geom.Real) *Ball {
	b, err := NewBall(radius)
	if err != nil {
		panic(err)
	}
	return b
}

// MustCuboid is like NewCuboid but panics on invalid input.
func MustCuboid(hx, hy geom.Real) *Cuboid {
	c, err := NewCuboid(hx, hy)
	if err != nil {
		panic(err)
	}
	return c
}

// MustCapsule is like NewCapsule but panics on invalid input.
func MustCapsule(halfHeight, radius geom.Real) *Capsule {
	c, err := NewCapsule(halfHeight, radius)
	if err != nil {
		panic(err)
	}
	return c
}

// MustConvexPolygon is like NewConvexPolygon but panics on invalid input.
func MustConvexPolygon(points []v2.Vec) *ConvexPolygon {
	p, err := NewConvexPolygon(points)
	if err != nil {
		panic(err)
	}
	return p
}
