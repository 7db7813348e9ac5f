package math3d

import (
	"testing"
)

func BenchmarkMat3Mul(b *testing.B) {
	m1 := RotateX(0.3)
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkRigidApply(b *testing.B) {
	r := Translation(V3(1, 2, 3)).Mul(Rotation(RotateY(0.5)))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = r.Apply(v)
	}
}

func BenchmarkRigidInverse(b *testing.B) {
	r := Translation(V3(1, 2, 3)).Mul(Rotation(AngleAxis(0.7, V3(1, 1, 0))))

	for b.Loop() {
		_ = r.Inverse()
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	v1 := V3(1, 2, 3)
	v2 := V3(4, 5, 6)

	for b.Loop() {
		_ = v1.Cross(v2)
	}
}
