// ABOUTME: Quaternion rotations for ear orientation
// ABOUTME: Axis-angle construction, shortest-arc between vectors, vector rotation
package spatial

import "math"

// Quat is a unit rotation quaternion.
type Quat struct {
	W, X, Y, Z float64
}

// IdentityQuat returns the no-rotation quaternion.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// FromAxisAngle builds a rotation of angle radians around axis.
// The axis does not need to be normalized.
func FromAxisAngle(axis Vec3, angle float64) Quat {
	a := axis.Normalize()
	s := math.Sin(angle / 2)
	return Quat{
		W: math.Cos(angle / 2),
		X: a.X * s,
		Y: a.Y * s,
		Z: a.Z * s,
	}
}

// ShortestArc returns the smallest rotation taking direction from to
// direction to. Antiparallel inputs rotate 180 degrees around an
// arbitrary perpendicular axis.
func ShortestArc(from, to Vec3) Quat {
	f := from.Normalize()
	t := to.Normalize()
	if f.IsZero() || t.IsZero() {
		return IdentityQuat()
	}

	d := f.Dot(t)
	if d > 1-1e-9 {
		return IdentityQuat()
	}
	if d < -1+1e-9 {
		// 180 degrees: pick any axis perpendicular to f.
		axis := Vec3{X: 1}.Cross(f)
		if axis.IsZero() {
			axis = Vec3{Y: 1}.Cross(f)
		}
		return FromAxisAngle(axis, math.Pi)
	}

	c := f.Cross(t)
	q := Quat{W: 1 + d, X: c.X, Y: c.Y, Z: c.Z}
	return q.normalize()
}

// Mul returns the composed rotation q then r applied as q*r.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	// v' = v + 2w(u x v) + 2(u x (u x v)) with u the vector part.
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

func (q Quat) normalize() Quat {
	l := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if l < 1e-12 {
		return IdentityQuat()
	}
	return Quat{q.W / l, q.X / l, q.Y / l, q.Z / l}
}
