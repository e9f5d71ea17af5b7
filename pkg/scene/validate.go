package scene

import (
	"fmt"
	"math"

	"github.com/chazu/collide/pkg/bounding"
)

// overlapTolerance is the smallest overlap extent reported. Parts that only
// touch along an edge do not overlap.
const overlapTolerance = 1e-9

// Warning is an advisory finding about a scene. Warnings never block
// evaluation.
type Warning struct {
	Compound string
	Parts    []uint32
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("compound %q: %s", w.Compound, w.Message)
}

// Validate inspects every compound of sc and returns advisory warnings:
// parts whose bounding boxes overlap, found through the compound's own
// spatial index, and parts with an empty bounding box. It never mutates
// the scene.
func Validate(sc *Scene) []Warning {
	var warnings []Warning
	for _, nc := range sc.Compounds() {
		warnings = append(warnings, validateCompound(nc)...)
	}
	return warnings
}

func validateCompound(nc *NamedCompound) []Warning {
	var warnings []Warning
	aabbs := nc.Compound.AABBs()
	index := nc.Compound.Index()

	for i, a := range aabbs {
		id := uint32(i)
		if !a.IsValid() || a.Area() == 0 {
			warnings = append(warnings, Warning{
				Compound: nc.Name,
				Parts:    []uint32{id},
				Message:  fmt.Sprintf("part %d has an empty bounding box %s", id, a),
			})
			continue
		}
		for _, other := range index.Intersecting(a) {
			if other <= id || !overlaps(a, aabbs[other]) {
				continue
			}
			warnings = append(warnings, Warning{
				Compound: nc.Name,
				Parts:    []uint32{id, other},
				Message:  fmt.Sprintf("parts %d and %d have overlapping bounds", id, other),
			})
		}
	}
	return warnings
}

// overlaps reports whether a and b share a region of positive area.
func overlaps(a, b bounding.AABB) bool {
	w := math.Min(a.Maxs.X, b.Maxs.X) - math.Max(a.Mins.X, b.Mins.X)
	h := math.Min(a.Maxs.Y, b.Maxs.Y) - math.Max(a.Mins.Y, b.Mins.Y)
	return w > overlapTolerance && h > overlapTolerance
}
