// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/collide/pkg/bounding"
	"github.com/chazu/collide/pkg/geom"
	"github.com/chazu/collide/pkg/kernel"
	"github.com/chazu/collide/pkg/shape"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// surfaceTolerance is how far outside the boundary a point may be and
// still count as contained.
const surfaceTolerance = 1e-9

// sdfxProfile wraps an sdf.SDF2 to implement kernel.Profile.
type sdfxProfile struct {
	s sdf.SDF2
}

func (p *sdfxProfile) Distance(pt v2.Vec) float64 {
	return p.s.Evaluate(pt)
}

func (p *sdfxProfile) Contains(pt v2.Vec) bool {
	return p.s.Evaluate(pt) <= surfaceTolerance
}

func (p *sdfxProfile) Bounds() bounding.AABB {
	return bounding.FromBox2(p.s.BoundingBox())
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// Profile builds the SDF of s in its local frame and places it with pos.
func (k *SdfxKernel) Profile(s shape.Shape, pos geom.Isometry) (kernel.Profile, error) {
	local, err := k.build(s)
	if err != nil {
		return nil, err
	}
	return &sdfxProfile{s: sdf.Transform2D(local, pos.Matrix())}, nil
}

// build returns the SDF of s in its own frame.
func (k *SdfxKernel) build(s shape.Shape) (sdf.SDF2, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil shape", kernel.ErrUnsupportedShape)
	}
	if cs, ok := s.AsCompositeShape(); ok {
		return k.composite(cs)
	}

	switch v := s.(type) {
	case *shape.Ball:
		c, err := sdf.Circle2D(v.Radius)
		if err != nil {
			return nil, fmt.Errorf("sdfx.Circle2D: %w", err)
		}
		return c, nil
	case *shape.Cuboid:
		return sdf.Box2D(v.HalfExtents.MulScalar(2), 0), nil
	case *shape.Capsule:
		return capsule(v.HalfHeight, v.Radius), nil
	case *shape.ConvexPolygon:
		return polygon(v.Points())
	}
	return nil, fmt.Errorf("%w: %s", kernel.ErrUnsupportedShape, s.Kind())
}

// composite unions the parts of cs, each moved by its own delta.
func (k *SdfxKernel) composite(cs shape.CompositeShape) (sdf.SDF2, error) {
	n := cs.NParts()
	if n == 0 {
		return nil, fmt.Errorf("%w: composite with no parts", kernel.ErrUnsupportedShape)
	}
	parts := make([]sdf.SDF2, 0, n)
	for i := 0; i < n; i++ {
		var (
			part sdf.SDF2
			err  error
		)
		cs.MapPartAt(uint32(i), func(delta *geom.Isometry, s shape.Shape) {
			if _, nested := s.AsCompositeShape(); nested {
				err = fmt.Errorf("%w: part %d", shape.ErrNestedComposite, i)
				return
			}
			part, err = k.build(s)
			if err == nil && delta != nil {
				part = sdf.Transform2D(part, delta.Matrix())
			}
		})
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return sdf.Union2D(parts...), nil
}

// capsule is the Y-axis segment of the given half height, rounded by
// radius.
func capsule(halfHeight, radius float64) sdf.SDF2 {
	return sdf.Transform2D(sdf.Line2D(2*halfHeight, radius), sdf.Rotate2d(math.Pi/2))
}

// polygon is the SDF of a convex polygon. Polygons that enclose no area
// (fewer than three distinct vertices, or all of them collinear) become the
// segment between their two farthest vertices.
func polygon(points []v2.Vec) (sdf.SDF2, error) {
	pts := distinct(points)
	if len(pts) < 3 || math.Abs(area(pts)) <= degenerateArea {
		a, b := farthestPair(pts)
		return segment(a, b), nil
	}
	p, err := sdf.Polygon2D(pts)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	return p, nil
}

// degenerateArea is the polygon area below which the polygon is treated
// as a segment.
const degenerateArea = 1e-12

// distinct drops consecutive repeated vertices, including a last vertex
// that repeats the first.
func distinct(points []v2.Vec) []v2.Vec {
	out := make([]v2.Vec, 0, len(points))
	for _, p := range points {
		if len(out) == 0 || p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// area is the signed shoelace area of a closed vertex loop.
func area(points []v2.Vec) float64 {
	var sum float64
	for i, p := range points {
		q := points[(i+1)%len(points)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

func farthestPair(points []v2.Vec) (a, b v2.Vec) {
	a, b = points[0], points[0]
	best := -1.0
	for i := range points {
		for j := i; j < len(points); j++ {
			if d := points[j].Sub(points[i]).Length2(); d > best {
				best = d
				a, b = points[i], points[j]
			}
		}
	}
	return a, b
}

// segment is the SDF of the line segment from a to b. a == b gives a point.
func segment(a, b v2.Vec) sdf.SDF2 {
	d := b.Sub(a)
	mid := a.Add(d.MulScalar(0.5))
	m := sdf.Translate2d(mid).Mul(sdf.Rotate2d(math.Atan2(d.Y, d.X)))
	return sdf.Transform2D(sdf.Line2D(d.Length(), 0), m)
}
