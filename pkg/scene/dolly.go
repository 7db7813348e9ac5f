package scene

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// zoomStep is the distance factor of one zoom command.
const zoomStep = 0.85

// Dolly eases the camera distance toward a target with a critically damped
// spring, so zooming glides instead of jumping.
type Dolly struct {
	spring harmonica.Spring

	pos    float64
	vel    float64
	target float64

	min, max float64
}

// NewDolly creates a dolly resting at distance, allowed to move between a
// quarter and eight times that distance.
func NewDolly(fps int, distance float64) *Dolly {
	return &Dolly{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
		pos:    distance,
		target: distance,
		min:    distance / 4,
		max:    distance * 8,
	}
}

// ZoomIn moves the target one step closer.
func (d *Dolly) ZoomIn() { d.setTarget(d.target * zoomStep) }

// ZoomOut moves the target one step away.
func (d *Dolly) ZoomOut() { d.setTarget(d.target / zoomStep) }

func (d *Dolly) setTarget(t float64) {
	d.target = math.Min(math.Max(t, d.min), d.max)
}

// Reset snaps to distance with no motion.
func (d *Dolly) Reset(distance float64) {
	d.pos, d.vel, d.target = distance, 0, distance
}

// Update advances the spring one frame and returns the new distance.
func (d *Dolly) Update() float64 {
	d.pos, d.vel = d.spring.Update(d.pos, d.vel, d.target)
	return d.pos
}

// Distance returns the current distance.
func (d *Dolly) Distance() float64 { return d.pos }

// Target returns the distance the dolly is moving toward.
func (d *Dolly) Target() float64 { return d.target }

// Settled reports whether the dolly is within eps of its target and at rest.
func (d *Dolly) Settled(eps float64) bool {
	return math.Abs(d.pos-d.target) < eps && math.Abs(d.vel) < eps
}
