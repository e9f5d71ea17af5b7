// Package geom provides the rigid-transform types shared by the bounding
// volume, shape and kernel packages. Points and vectors are sdfx v2.Vec
// values so they pass straight through to the sdfx kernel backend.
package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Real is the scalar type used for all coordinates.
type Real = float64

// Vec2 returns a 2D vector.
func Vec2(x, y Real) v2.Vec {
	return v2.Vec{X: x, Y: y}
}

// Rotation is a 2D rotation stored as a unit complex number (cos, sin).
type Rotation struct {
	Re Real
	Im Real
}

// IdentityRotation returns the rotation by zero radians.
func IdentityRotation() Rotation {
	return Rotation{Re: 1}
}

// NewRotation returns the rotation by angle radians.
func NewRotation(angle Real) Rotation {
	s, c := math.Sincos(angle)
	return Rotation{Re: c, Im: s}
}

// Angle returns the rotation angle in radians, in (-pi, pi].
func (r Rotation) Angle() Real {
	return math.Atan2(r.Im, r.Re)
}

// Mul composes two rotations.
func (r Rotation) Mul(o Rotation) Rotation {
	return Rotation{
		Re: r.Re*o.Re - r.Im*o.Im,
		Im: r.Re*o.Im + r.Im*o.Re,
	}
}

// Inverse returns the opposite rotation.
func (r Rotation) Inverse() Rotation {
	return Rotation{Re: r.Re, Im: -r.Im}
}

// Rotate applies the rotation to a vector.
func (r Rotation) Rotate(v v2.Vec) v2.Vec {
	return v2.Vec{
		X: r.Re*v.X - r.Im*v.Y,
		Y: r.Im*v.X + r.Re*v.Y,
	}
}

// Isometry is a rigid transform: a rotation followed by a translation.
type Isometry struct {
	Rotation    Rotation
	Translation v2.Vec
}

// Identity returns the identity isometry.
func Identity() Isometry {
	return Isometry{Rotation: IdentityRotation()}
}

// Translation returns a pure translation.
func Translation(x, y Real) Isometry {
	return Isometry{Rotation: IdentityRotation(), Translation: Vec2(x, y)}
}

// NewIsometry returns the isometry that rotates by angle radians and then
// translates by t.
func NewIsometry(t v2.Vec, angle Real) Isometry {
	return Isometry{Rotation: NewRotation(angle), Translation: t}
}

// Angle returns the rotation angle in radians.
func (iso Isometry) Angle() Real {
	return iso.Rotation.Angle()
}

// Mul composes two isometries. The result applies o first, then iso.
func (iso Isometry) Mul(o Isometry) Isometry {
	return Isometry{
		Rotation:    iso.Rotation.Mul(o.Rotation),
		Translation: iso.TransformPoint(o.Translation),
	}
}

// Inverse returns the isometry undoing iso.
func (iso Isometry) Inverse() Isometry {
	inv := iso.Rotation.Inverse()
	t := inv.Rotate(iso.Translation)
	return Isometry{Rotation: inv, Translation: v2.Vec{X: -t.X, Y: -t.Y}}
}

// TransformPoint applies the rotation and translation to a point.
func (iso Isometry) TransformPoint(p v2.Vec) v2.Vec {
	return iso.Rotation.Rotate(p).Add(iso.Translation)
}

// TransformVector applies only the rotation.
func (iso Isometry) TransformVector(v v2.Vec) v2.Vec {
	return iso.Rotation.Rotate(v)
}

// InverseTransformPoint maps a point from the transformed frame back into
// the local frame.
func (iso Isometry) InverseTransformPoint(p v2.Vec) v2.Vec {
	return iso.Rotation.Inverse().Rotate(p.Sub(iso.Translation))
}

// Matrix returns the homogeneous 3x3 matrix of the isometry, suitable for
// sdf.Transform2D.
func (iso Isometry) Matrix() sdf.M33 {
	return sdf.Translate2d(iso.Translation).Mul(sdf.Rotate2d(iso.Angle()))
}

// ApproxEqual reports whether two isometries match within tol on every
// component.
func (iso Isometry) ApproxEqual(o Isometry, tol Real) bool {
	return math.Abs(iso.Rotation.Re-o.Rotation.Re) <= tol &&
		math.Abs(iso.Rotation.Im-o.Rotation.Im) <= tol &&
		math.Abs(iso.Translation.X-o.Translation.X) <= tol &&
		math.Abs(iso.Translation.Y-o.Translation.Y) <= tol
}

func (iso Isometry) String() string {
	return fmt.Sprintf("(%g, %g) @ %.4grad", iso.Translation.X, iso.Translation.Y, iso.Angle())
}
