// Package kernel defines the abstract signed-distance kernel interface.
// A kernel turns a placed shape into a Profile that answers exact
// point queries. Bounding volumes only narrow the candidates; the profile
// decides. The kernel abstraction keeps the geometry backend swappable.
package kernel

import (
	"errors"

	"github.com/chazu/collide/pkg/bounding"
	"github.com/chazu/collide/pkg/geom"
	"github.com/chazu/collide/pkg/shape"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// ErrUnsupportedShape is returned when a kernel cannot represent a shape.
var ErrUnsupportedShape = errors.New("kernel: unsupported shape")

// Profile is a placed shape in world space.
type Profile interface {
	// Distance returns the signed distance from p to the boundary,
	// negative inside.
	Distance(p v2.Vec) float64

	// Contains reports whether p lies inside or on the boundary.
	Contains(p v2.Vec) bool

	// Bounds returns the bounding box of the profile.
	Bounds() bounding.AABB
}

// Kernel builds profiles from shapes.
type Kernel interface {
	Profile(s shape.Shape, pos geom.Isometry) (Profile, error)
}

// PartProfiles returns the profile of every part of a composite shape
// placed at pos, indexed by part id.
func PartProfiles(k Kernel, cs shape.CompositeShape, pos geom.Isometry) ([]Profile, error) {
	out := make([]Profile, cs.NParts())
	for i := range out {
		var err error
		cs.MapPartAt(uint32(i), func(delta *geom.Isometry, part shape.Shape) {
			placement := pos
			if delta != nil {
				placement = pos.Mul(*delta)
			}
			out[i], err = k.Profile(part, placement)
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
