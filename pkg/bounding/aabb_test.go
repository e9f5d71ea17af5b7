package bounding

import (
	"math"
	"testing"

	"github.com/chazu/collide/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(x0, y0, x1, y1 float64) AABB {
	return New(v2.Vec{X: x0, Y: y0}, v2.Vec{X: x1, Y: y1})
}

func TestInvalid(t *testing.T) {
	inv := Invalid()
	assert.False(t, inv.IsValid())
	assert.Equal(t, 0.0, inv.Area())
	assert.Equal(t, "AABB(invalid)", inv.String())
	assert.False(t, inv.ContainsPoint(v2.Vec{}))
}

func TestMergeIdentity(t *testing.T) {
	boxes := []AABB{
		box(0, 0, 1, 1),
		box(-5, 2, -4, 9),
		box(3, 3, 3, 3),
	}
	for _, b := range boxes {
		assert.Equal(t, b, Invalid().Merge(b))
		assert.Equal(t, b, b.Merge(Invalid()))
	}
	assert.False(t, Invalid().Merge(Invalid()).IsValid())
}

func TestMergeCommutativeAssociative(t *testing.T) {
	a := box(0, 0, 1, 1)
	b := box(-2, 0.5, 0.5, 4)
	c := box(10, -3, 11, -1)

	assert.Equal(t, a.Merge(b), b.Merge(a))
	assert.Equal(t, a.Merge(b).Merge(c), a.Merge(b.Merge(c)))
	assert.Equal(t, box(-2, -3, 11, 4), MergeAll(a, b, c))
}

func TestMergeDoesNotMutate(t *testing.T) {
	a := box(0, 0, 1, 1)
	b := box(5, 5, 6, 6)
	_ = a.Merge(b)
	assert.Equal(t, box(0, 0, 1, 1), a)
	assert.Equal(t, box(5, 5, 6, 6), b)
}

func TestMergeAllEmpty(t *testing.T) {
	assert.False(t, MergeAll().IsValid())
}

func TestIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b AABB
		want bool
	}{
		{"overlapping", box(0, 0, 2, 2), box(1, 1, 3, 3), true},
		{"separated on x", box(0, 0, 1, 1), box(2, 0, 3, 1), false},
		{"separated on y", box(0, 0, 1, 1), box(0, -3, 1, -2), false},
		{"touching edge", box(0, 0, 1, 1), box(1, 0, 2, 1), true},
		{"touching corner", box(0, 0, 1, 1), box(1, 1, 2, 2), true},
		{"nested", box(0, 0, 10, 10), box(2, 2, 3, 3), true},
		{"invalid", Invalid(), box(0, 0, 1, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(tt.a), "symmetry")
		})
	}
}

func TestContains(t *testing.T) {
	outer := box(0, 0, 10, 10)
	assert.True(t, outer.Contains(box(2, 2, 3, 3)))
	assert.True(t, outer.Contains(outer))
	assert.False(t, outer.Contains(box(9, 9, 11, 10)))
	assert.False(t, box(2, 2, 3, 3).Contains(outer))

	assert.True(t, outer.ContainsPoint(v2.Vec{X: 10, Y: 0}))
	assert.False(t, outer.ContainsPoint(v2.Vec{X: 10.0001, Y: 0}))
}

func TestMeasures(t *testing.T) {
	b := box(-1, 2, 3, 8)
	assert.Equal(t, v2.Vec{X: 1, Y: 5}, b.Center())
	assert.Equal(t, v2.Vec{X: 2, Y: 3}, b.HalfExtents())
	assert.Equal(t, v2.Vec{X: 4, Y: 6}, b.Extents())
	assert.Equal(t, 24.0, b.Area())
	assert.Equal(t, box(-1.5, 1.5, 3.5, 8.5), b.Loosened(0.5))
	assert.Equal(t, b, FromHalfExtents(b.Center(), b.HalfExtents()))
}

func TestTransformBy(t *testing.T) {
	b := box(-1, -0.5, 1, 0.5)

	got := b.TransformBy(geom.Translation(10, 0))
	assert.True(t, got.Equal(box(9, -0.5, 11, 0.5), 1e-12), got.String())

	got = b.TransformBy(geom.NewIsometry(geom.Vec2(0, 0), math.Pi/2))
	assert.True(t, got.Equal(box(-0.5, -1, 0.5, 1), 1e-12), got.String())

	got = b.TransformBy(geom.NewIsometry(geom.Vec2(0, 0), math.Pi/4))
	w := 1.5 / math.Sqrt2
	assert.True(t, got.Equal(box(-w, -w, w, w), 1e-12), got.String())

	assert.False(t, Invalid().TransformBy(geom.Translation(1, 1)).IsValid())
}

func TestBox2RoundTrip(t *testing.T) {
	b := box(1, 2, 3, 4)
	sb := b.Box2()
	assert.Equal(t, sdf.Box2{Min: v2.Vec{X: 1, Y: 2}, Max: v2.Vec{X: 3, Y: 4}}, sb)
	assert.Equal(t, b, FromBox2(sb))
}

func TestPointCloudAABB(t *testing.T) {
	pts := []v2.Vec{{X: 0, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 3}, {X: -1, Y: 2}}

	local := LocalPointCloudAABB(pts)
	assert.Equal(t, box(-1, 0, 2, 3), local)

	shifted := PointCloudAABB(geom.Translation(5, -1), pts)
	assert.True(t, shifted.Equal(box(4, -1, 7, 2), 1e-12), shifted.String())

	rotated := PointCloudAABB(geom.NewIsometry(geom.Vec2(0, 0), math.Pi), pts)
	assert.True(t, rotated.Equal(box(-2, -3, 1, 0), 1e-12), rotated.String())
}

func TestPointCloudIdentityConsistency(t *testing.T) {
	clouds := [][]v2.Vec{
		{{X: 0, Y: 0}},
		{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		{{X: -3.5, Y: 2}, {X: 7, Y: -1.25}, {X: 0.1, Y: 0.2}},
	}
	for _, pts := range clouds {
		assert.Equal(t, LocalPointCloudAABB(pts), PointCloudAABB(geom.Identity(), pts))
	}
}

func TestPointCloudEmpty(t *testing.T) {
	require.False(t, LocalPointCloudAABB(nil).IsValid())
	require.False(t, PointCloudAABB(geom.Translation(1, 1), nil).IsValid())
}

func TestPointCloudContainsEveryPoint(t *testing.T) {
	pts := []v2.Vec{{X: 0, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 3}}
	iso := geom.NewIsometry(geom.Vec2(1, -2), 0.7)
	bb := PointCloudAABB(iso, pts)
	for _, p := range pts {
		assert.True(t, bb.Loosened(1e-12).ContainsPoint(iso.TransformPoint(p)))
	}
}
