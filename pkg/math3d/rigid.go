package math3d

// Rigid is a rotation followed by a translation: p' = R*p + T.
//
// Poses (camera-to-world, world-to-camera) and the whole-mesh motions the
// viewer applies are all Rigid values. R is assumed orthonormal, so the
// inverse is exact and cheap.
type Rigid struct {
	R Mat3
	T Vec3
}

// IdentityRigid returns the identity transform.
func IdentityRigid() Rigid {
	return Rigid{R: Identity3()}
}

// Translation returns a pure translation by t.
func Translation(t Vec3) Rigid {
	return Rigid{R: Identity3(), T: t}
}

// Rotation returns a pure rotation about the origin.
func Rotation(r Mat3) Rigid {
	return Rigid{R: r}
}

// RotationAbout returns a rotation by r that keeps pivot fixed.
func RotationAbout(r Mat3, pivot Vec3) Rigid {
	return Rigid{R: r, T: pivot.Sub(r.MulVec3(pivot))}
}

// Apply transforms point p.
func (a Rigid) Apply(p Vec3) Vec3 {
	return a.R.MulVec3(p).Add(a.T)
}

// ApplyDir transforms direction d (rotation only).
func (a Rigid) ApplyDir(d Vec3) Vec3 {
	return a.R.MulVec3(d)
}

// Mul composes two transforms: (a * b).Apply(p) == a.Apply(b.Apply(p)).
//
//nolint:st1016 // a*b naming convention is clearer for composition
func (a Rigid) Mul(b Rigid) Rigid {
	return Rigid{
		R: a.R.Mul(b.R),
		T: a.R.MulVec3(b.T).Add(a.T),
	}
}

// Inverse returns the exact inverse, (R^T, -R^T*T).
func (a Rigid) Inverse() Rigid {
	rt := a.R.Transpose()
	return Rigid{R: rt, T: rt.MulVec3(a.T).Negate()}
}

// ApproxEqual reports whether both rotation and translation agree within eps.
func (a Rigid) ApproxEqual(b Rigid, eps float64) bool {
	return a.R.ApproxEqual(b.R, eps) && a.T.ApproxEqual(b.T, eps)
}
