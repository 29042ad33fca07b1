// ABOUTME: Tests for vector math
// ABOUTME: Covers length, normalization, and distance behavior
package spatial

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestVecLength(t *testing.T) {
	v := Vec3{3, 4, 0}
	if !almostEqual(v.Length(), 5) {
		t.Errorf("expected length 5, got %v", v.Length())
	}
}

func TestVecNormalize(t *testing.T) {
	v := Vec3{0, 0, 10}.Normalize()
	if !almostEqual(v.Length(), 1) {
		t.Errorf("expected unit length, got %v", v.Length())
	}
	if !almostEqual(v.Z, 1) {
		t.Errorf("expected direction preserved, got %+v", v)
	}

	zero := Vec3{}.Normalize()
	if !zero.IsZero() {
		t.Errorf("normalizing zero vector should stay zero, got %+v", zero)
	}
}

func TestVecDistance(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{1, 2, 8}
	if !almostEqual(a.DistanceTo(b), 5) {
		t.Errorf("expected distance 5, got %v", a.DistanceTo(b))
	}
}

func TestVecCrossRightHanded(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	z := x.Cross(y)
	if !almostEqual(z.Z, 1) || !almostEqual(z.X, 0) || !almostEqual(z.Y, 0) {
		t.Errorf("x cross y should be z, got %+v", z)
	}
}
