// Package physics integrates the friction-damped motion used to spin and
// push meshes interactively.
package physics

import (
	"errors"
	"fmt"

	"github.com/taigrr/raster/pkg/math3d"
)

// ErrInvalidFriction is returned for a friction coefficient outside (0, 1].
var ErrInvalidFriction = errors.New("friction must be in (0, 1]")

// Kinetics holds a linear and an angular velocity that decay geometrically
// each step. A friction of 1 keeps velocities forever; smaller values bleed
// them off faster.
type Kinetics struct {
	LinearFriction  float64
	AngularFriction float64

	velocity        math3d.Vec3 // displacement per step
	angularVelocity math3d.Vec3 // axis * radians per step
}

// NewKinetics creates an integrator with initial velocities v and w.
func NewKinetics(linearFriction, angularFriction float64, v, w math3d.Vec3) (*Kinetics, error) {
	for _, f := range []float64{linearFriction, angularFriction} {
		if !(f > 0 && f <= 1) {
			return nil, fmt.Errorf("friction %v: %w", f, ErrInvalidFriction)
		}
	}
	return &Kinetics{
		LinearFriction:  linearFriction,
		AngularFriction: angularFriction,
		velocity:        v,
		angularVelocity: w,
	}, nil
}

// Velocity returns the current linear velocity.
func (k *Kinetics) Velocity() math3d.Vec3 { return k.velocity }

// AngularVelocity returns the current angular velocity.
func (k *Kinetics) AngularVelocity() math3d.Vec3 { return k.angularVelocity }

// Update returns the motion for this step, built from the velocities as
// they were before the call: a rotation by |w| about w and a translation
// by v. It then decays both velocities and adds the impulses dv and dw, so
// an impulse first shows up in the next step's motion.
func (k *Kinetics) Update(dv, dw math3d.Vec3) math3d.Rigid {
	w := k.angularVelocity
	step := math3d.Rigid{
		R: math3d.AngleAxis(w.Len(), w),
		T: k.velocity,
	}

	k.velocity = k.velocity.Scale(k.LinearFriction).Add(dv)
	k.angularVelocity = k.angularVelocity.Scale(k.AngularFriction).Add(dw)
	return step
}

// Stop zeroes both velocities.
func (k *Kinetics) Stop() {
	k.velocity = math3d.Zero3()
	k.angularVelocity = math3d.Zero3()
}

// Moving reports whether either speed is above eps.
func (k *Kinetics) Moving(eps float64) bool {
	return k.velocity.Len() > eps || k.angularVelocity.Len() > eps
}
