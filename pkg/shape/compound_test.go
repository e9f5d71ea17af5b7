package shape

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/chazu/collide/pkg/bounding"
	"github.com/chazu/collide/pkg/geom"
	"github.com/chazu/collide/pkg/partition"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare() *ConvexPolygon {
	return MustConvexPolygon([]v2.Vec{{X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5}, {X: 0.5, Y: 0.5}, {X: -0.5, Y: 0.5}})
}

func TestCompoundSinglePart(t *testing.T) {
	poly := MustConvexPolygon([]v2.Vec{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 1}, {X: 1, Y: 2}})
	c, err := NewCompound([]Part{{Delta: geom.Identity(), Shape: poly}})
	require.NoError(t, err)

	assert.Equal(t, poly.LocalAABB(), c.AABB())
	assert.Equal(t, []bounding.AABB{poly.LocalAABB()}, c.AABBs())
	assert.Equal(t, 1, c.NParts())
	assert.Equal(t, []uint32{0}, c.Index().IDs())
}

func TestCompoundTwoDisjointParts(t *testing.T) {
	sq := unitSquare()
	c, err := NewCompound([]Part{
		{Delta: geom.Translation(0, 0), Shape: sq},
		{Delta: geom.Translation(10, 0), Shape: sq},
	})
	require.NoError(t, err)

	assertBox(t, box(-0.5, -0.5, 10.5, 0.5), c.AABB())

	aabbs := c.AABBs()
	require.Len(t, aabbs, 2)
	assertBox(t, box(-0.5, -0.5, 0.5, 0.5), aabbs[0])
	assertBox(t, box(9.5, -0.5, 10.5, 0.5), aabbs[1])
	for _, a := range aabbs {
		assert.InDelta(t, 1.0, a.Extents().X, 1e-12)
	}
}

func TestCompoundSharedShape(t *testing.T) {
	ball := MustBall(1)
	c, err := NewCompound([]Part{
		{Delta: geom.Translation(-3, 0), Shape: ball},
		{Delta: geom.Translation(0, 4), Shape: ball},
	})
	require.NoError(t, err)

	assertBox(t, box(-4, -1, -2, 1), c.AABBs()[0])
	assertBox(t, box(-1, 3, 1, 5), c.AABBs()[1])
	assertBox(t, box(-4, -1, 1, 5), c.AABB())

	var seen []Shape
	for id := uint32(0); id < 2; id++ {
		c.MapPartAt(id, func(_ *geom.Isometry, s Shape) { seen = append(seen, s) })
	}
	require.Len(t, seen, 2)
	assert.Same(t, ball, seen[0])
	assert.Same(t, ball, seen[1])
}

func TestCompoundEmpty(t *testing.T) {
	c, err := NewCompound(nil)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrEmptyCompound)

	c, err = NewCompound([]Part{})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrEmptyCompound)

	assert.PanicsWithError(t, ErrEmptyCompound.Error(), func() { MustCompound(nil) })
}

func TestCompoundRejectsNesting(t *testing.T) {
	inner := MustCompound([]Part{{Delta: geom.Identity(), Shape: MustBall(1)}})

	c, err := NewCompound([]Part{
		{Delta: geom.Identity(), Shape: MustBall(1)},
		{Delta: geom.Translation(5, 0), Shape: inner},
	})
	assert.Nil(t, c)
	require.ErrorIs(t, err, ErrNestedComposite)
	assert.NotErrorIs(t, err, ErrEmptyCompound)

	var nerr *NestedCompositeError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, 1, nerr.Index)
	assert.Equal(t, KindCompound, nerr.Kind)
	assert.Contains(t, err.Error(), "part 1")

	assert.Panics(t, func() { MustCompound([]Part{{Shape: inner}}) })
}

// fakeComposite is a primitive-looking shape that reports a composite view.
type fakeComposite struct {
	Ball
}

func (f *fakeComposite) AsCompositeShape() (CompositeShape, bool) {
	return nil, true
}

func TestCompoundRejectsAnyComposite(t *testing.T) {
	_, err := NewCompound([]Part{{Delta: geom.Identity(), Shape: &fakeComposite{Ball: Ball{Radius: 1}}}})
	assert.ErrorIs(t, err, ErrNestedComposite)
}

func TestCompoundRejectsNilShape(t *testing.T) {
	_, err := NewCompound([]Part{{Delta: geom.Identity()}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "part 0")
}

func TestCompoundOverallBound(t *testing.T) {
	parts := []Part{
		{Delta: geom.NewIsometry(geom.Vec2(1, 1), 0.3), Shape: MustCuboid(1, 2)},
		{Delta: geom.NewIsometry(geom.Vec2(-4, 2), 1.7), Shape: MustCapsule(2, 0.25)},
		{Delta: geom.NewIsometry(geom.Vec2(0, -6), -0.9), Shape: Rectangle(2, 3)},
		{Delta: geom.Translation(7, 7), Shape: MustBall(0.1)},
	}
	c, err := NewCompound(parts)
	require.NoError(t, err)

	want := bounding.Invalid()
	for i, p := range parts {
		bv := p.Shape.ComputeAABB(p.Delta)
		assert.Equal(t, bv, c.AABBs()[i], "part %d", i)
		want = want.Merge(bv)
	}
	assert.Equal(t, want, c.AABB())
}

func TestCompoundOwnsParts(t *testing.T) {
	parts := []Part{
		{Delta: geom.Translation(0, 0), Shape: MustBall(1)},
		{Delta: geom.Translation(3, 0), Shape: MustBall(1)},
	}
	c := MustCompound(parts)
	parts[0] = Part{Delta: geom.Translation(100, 100), Shape: MustBall(9)}

	assert.Equal(t, geom.Translation(0, 0), c.Parts()[0].Delta)
	assertBox(t, box(-1, -1, 4, 1), c.AABB())
}

func TestCompoundMapPartAt(t *testing.T) {
	sq := unitSquare()
	c := MustCompound([]Part{
		{Delta: geom.Translation(0, 0), Shape: sq},
		{Delta: geom.Translation(2, 0), Shape: MustBall(1)},
	})

	calls := 0
	c.MapPartAt(1, func(delta *geom.Isometry, s Shape) {
		calls++
		require.NotNil(t, delta)
		assert.Equal(t, geom.Translation(2, 0), *delta)
		assert.Equal(t, KindBall, s.Kind())
		// Writing through the pointer must not reach the compound.
		*delta = geom.Translation(50, 50)
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, geom.Translation(2, 0), c.Parts()[1].Delta)

	for _, id := range []uint32{2, 3, 1000, math.MaxUint32} {
		c.MapPartAt(id, func(*geom.Isometry, Shape) {
			t.Errorf("visitor called for out of range id %d", id)
		})
	}
}

func TestCompoundIndexCompleteness(t *testing.T) {
	for _, n := range []int{1, 3, 17, 128} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			sq := unitSquare()
			parts := make([]Part, n)
			for i := range parts {
				parts[i] = Part{Delta: geom.Translation(float64(3*(i%8)), float64(3*(i/8))), Shape: sq}
			}
			c := MustCompound(parts)

			got := c.Index().Intersecting(c.AABB())
			require.Len(t, got, n)
			for i, id := range got {
				assert.Equal(t, uint32(i), id)
			}
			assert.Equal(t, n, c.Index().Len())
		})
	}
}

func TestCompoundIndexMatchesAABBs(t *testing.T) {
	c := MustCompound([]Part{
		{Delta: geom.Translation(0, 0), Shape: MustCuboid(1, 1)},
		{Delta: geom.Translation(5, 0), Shape: MustCuboid(1, 1)},
		{Delta: geom.Translation(0, 5), Shape: MustCuboid(1, 1)},
	})
	for i, a := range c.AABBs() {
		leaf, ok := c.Index().Leaf(uint32(i))
		require.True(t, ok)
		assert.Equal(t, a, leaf.AABB)
	}
	assert.Equal(t, 0.0, c.Index().Dilation())
}

func TestCompoundPartsIntersecting(t *testing.T) {
	c := MustCompound([]Part{
		{Delta: geom.Translation(0, 0), Shape: unitSquare()},
		{Delta: geom.Translation(2, 0), Shape: unitSquare()},
		{Delta: geom.Translation(4, 0), Shape: unitSquare()},
	})

	var ids []uint32
	c.PartsIntersecting(box(1.4, -1, 3.6, 1), func(id uint32, delta *geom.Isometry, s Shape) {
		ids = append(ids, id)
		assert.Equal(t, geom.Translation(float64(2*id), 0), *delta)
	})
	assert.Equal(t, []uint32{1, 2}, ids)

	ids = nil
	c.PartsIntersecting(box(1.6, -1, 2.4, 1), func(id uint32, _ *geom.Isometry, _ Shape) {
		ids = append(ids, id)
	})
	assert.Equal(t, []uint32{1}, ids)
}

func TestCompoundAsShape(t *testing.T) {
	c := MustCompound([]Part{
		{Delta: geom.Translation(-1, 0), Shape: MustBall(0.5)},
		{Delta: geom.Translation(1, 0), Shape: MustBall(0.5)},
	})

	var s Shape = c
	assert.Equal(t, KindCompound, s.Kind())
	cs, ok := s.AsCompositeShape()
	require.True(t, ok)
	assert.Equal(t, 2, cs.NParts())

	assertBox(t, box(-1.5, -0.5, 1.5, 0.5), c.ComputeAABB(geom.Identity()))
	assertBox(t, box(8.5, -0.5, 11.5, 0.5), c.ComputeAABB(geom.Translation(10, 0)))
	assertBox(t, box(-0.5, -1.5, 0.5, 1.5), c.ComputeAABB(geom.NewIsometry(geom.Vec2(0, 0), math.Pi/2)))
}

func TestCompoundWithOptions(t *testing.T) {
	parts := make([]Part, 64)
	for i := range parts {
		parts[i] = Part{Delta: geom.Translation(float64(2*i), 0), Shape: MustBall(0.5)}
	}
	c, err := NewCompoundWithOptions(parts, partition.Options{MinChildren: 2, MaxChildren: 4})
	require.NoError(t, err)
	assert.Equal(t, []uint32{10, 11}, c.Index().Intersecting(box(20.2, 0, 21.8, 0)))
}

func TestCompoundConcurrentReads(t *testing.T) {
	parts := make([]Part, 32)
	for i := range parts {
		parts[i] = Part{Delta: geom.Translation(float64(2*i), 0), Shape: unitSquare()}
	}
	c := MustCompound(parts)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := uint32(i % 32)
				got := c.Index().ContainingPoint(geom.Vec2(float64(2*id), 0))
				if len(got) != 1 || got[0] != id {
					t.Errorf("ContainingPoint(%d) = %v", id, got)
					return
				}
				c.MapPartAt(id, func(*geom.Isometry, Shape) {})
			}
		}()
	}
	wg.Wait()
}

func TestCompoundFarFromOrigin(t *testing.T) {
	for _, x := range []float64{1e7, 3e7, 1e8} {
		t.Run(fmt.Sprintf("x=%g", x), func(t *testing.T) {
			sq := MustCuboid(0.5, 0.5)
			c := MustCompound([]Part{
				{Delta: geom.Translation(x, 0), Shape: sq},
				{Delta: geom.Translation(x+1, 0), Shape: sq},
			})
			assert.Equal(t, []uint32{0, 1}, c.Index().Intersecting(c.AABB()))
			assert.Equal(t, []uint32{0, 1}, c.Index().Intersecting(box(x+0.5, -0.5, x+0.5, 0.5)))
			assert.Equal(t, []uint32{0, 1}, c.Index().ContainingPoint(geom.Vec2(x+0.5, 0)))
		})
	}

	points := MustCompound([]Part{
		{Delta: geom.Translation(1e8, 0), Shape: MustBall(0)},
		{Delta: geom.Translation(1e8+10, 0), Shape: MustBall(0)},
	})
	assert.Equal(t, []uint32{0, 1}, points.Index().Intersecting(points.AABB()))
}
