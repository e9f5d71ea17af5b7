package bounding

import (
	"github.com/chazu/collide/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// PointCloudAABB returns the tight box around points after each one is
// transformed by pos. An empty point set yields the invalid box; callers
// that can meet degenerate shapes check IsValid.
func PointCloudAABB(pos geom.Isometry, points []v2.Vec) AABB {
	acc := Invalid()
	for _, p := range points {
		q := pos.TransformPoint(p)
		acc.Mins = acc.Mins.Min(q)
		acc.Maxs = acc.Maxs.Max(q)
	}
	return acc
}

// LocalPointCloudAABB returns the tight box around points in their own
// frame. It matches PointCloudAABB under the identity isometry.
func LocalPointCloudAABB(points []v2.Vec) AABB {
	acc := Invalid()
	for _, p := range points {
		acc.Mins = acc.Mins.Min(p)
		acc.Maxs = acc.Maxs.Max(p)
	}
	return acc
}
