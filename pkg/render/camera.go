// Package render draws triangle meshes onto character-grid surfaces with a
// pinhole camera, a z-buffer and perspective-correct colour interpolation.
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/raster/pkg/math3d"
	"github.com/taigrr/raster/pkg/palette"
)

var (
	// ErrBehindCamera is returned by Project for points with non-positive
	// depth.
	ErrBehindCamera = errors.New("point is behind the camera")

	// ErrParallelUpVector is returned by LookAt when the up vector has no
	// component perpendicular to the view direction.
	ErrParallelUpVector = errors.New("up vector is parallel to the view direction")

	// ErrTargetAtCamera is returned by LookAt when the target is the camera
	// position.
	ErrTargetAtCamera = errors.New("look-at target is at the camera position")

	// ErrInvalidIntrinsics is returned for non-positive sizes or focal
	// lengths and for a field of view outside (0, pi).
	ErrInvalidIntrinsics = errors.New("invalid camera intrinsics")
)

// parallelEpsilon is the shortest up component LookAt accepts.
const parallelEpsilon = 1e-6

// Shading selects how a face is coloured.
type Shading int

const (
	// Interpolated blends vertex colours perspective-correctly in linear
	// light.
	Interpolated Shading = iota
	// Flat paints every pixel of a face in the face colour.
	Flat
)

func (s Shading) String() string {
	switch s {
	case Interpolated:
		return "interpolated"
	case Flat:
		return "flat"
	default:
		return fmt.Sprintf("Shading(%d)", int(s))
	}
}

// ParseShading parses the String form of a Shading.
func ParseShading(s string) (Shading, error) {
	switch s {
	case "interpolated":
		return Interpolated, nil
	case "flat":
		return Flat, nil
	default:
		return 0, fmt.Errorf("unknown shading %q (want flat or interpolated)", s)
	}
}

// Intrinsics are the fixed projection parameters of a camera. X is the
// column axis and Y the row axis of the pixel grid.
type Intrinsics struct {
	Width, Height int
	Fx, Fy        float64
	Cx, Cy        float64
}

// IntrinsicsFromFOV derives intrinsics from a grid size and a horizontal
// field of view in radians. Pixels are square in the sense that fy is fx
// scaled by height/width, and the principal point is the grid centre.
func IntrinsicsFromFOV(width, height int, fov float64) (Intrinsics, error) {
	if !(fov > 0 && fov < math.Pi) {
		return Intrinsics{}, fmt.Errorf("field of view %v: %w", fov, ErrInvalidIntrinsics)
	}
	if width <= 0 || height <= 0 {
		return Intrinsics{}, fmt.Errorf("size %dx%d: %w", width, height, ErrInvalidIntrinsics)
	}
	fx := float64(width) / 2 * math.Tan(fov/2)
	in := Intrinsics{
		Width:  width,
		Height: height,
		Fx:     fx,
		Fy:     float64(height) * fx / float64(width),
		Cx:     float64(width)/2 - 0.5,
		Cy:     float64(height)/2 - 0.5,
	}
	return in, in.validate()
}

func (in Intrinsics) validate() error {
	if in.Width <= 0 || in.Height <= 0 {
		return fmt.Errorf("size %dx%d: %w", in.Width, in.Height, ErrInvalidIntrinsics)
	}
	if !(in.Fx > 0) || !(in.Fy > 0) || math.IsInf(in.Fx, 0) || math.IsInf(in.Fy, 0) {
		return fmt.Errorf("focal lengths %v, %v: %w", in.Fx, in.Fy, ErrInvalidIntrinsics)
	}
	return nil
}

// Option configures a Camera at construction.
type Option func(*Camera)

// WithPose sets the initial camera-to-world pose.
func WithPose(camToWorld math3d.Rigid) Option {
	return func(c *Camera) {
		c.setPose(camToWorld)
	}
}

// WithDepthTest turns the z-buffer on or off. It is on by default; with it
// off faces are painted in mesh order.
func WithDepthTest(enabled bool) Option {
	return func(c *Camera) {
		c.depthTest = enabled
	}
}

// WithShading sets the shading mode. The default is Interpolated.
func WithShading(s Shading) Option {
	return func(c *Camera) {
		c.shading = s
	}
}

// WithPalette sets the palette used to quantize pixel colours.
func WithPalette(p palette.Palette) Option {
	return func(c *Camera) {
		c.palette = p
	}
}

// Camera is a pinhole camera. The camera looks down its +Z axis, +X is
// image right (columns) and +Y is image down (rows).
//
// A Camera is not safe for concurrent use.
type Camera struct {
	intr Intrinsics

	// camToWorld and worldToCam are always exact inverses; only setPose
	// writes them.
	camToWorld math3d.Rigid
	worldToCam math3d.Rigid

	depthTest bool
	shading   Shading
	palette   palette.Palette

	zbuffer []float64 // row-major, +Inf when empty
	stats   RenderStats
}

// NewCamera creates a camera for a width x height grid with the given
// horizontal field of view in radians, placed at the origin looking down
// world +Z.
func NewCamera(width, height int, fov float64, opts ...Option) (*Camera, error) {
	in, err := IntrinsicsFromFOV(width, height, fov)
	if err != nil {
		return nil, err
	}
	return NewCameraFromIntrinsics(in, opts...)
}

// NewCameraFromIntrinsics creates a camera with explicit intrinsics.
func NewCameraFromIntrinsics(in Intrinsics, opts ...Option) (*Camera, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &Camera{
		intr:       in,
		camToWorld: math3d.IdentityRigid(),
		worldToCam: math3d.IdentityRigid(),
		depthTest:  true,
		shading:    Interpolated,
		palette:    palette.Default(),
		zbuffer:    make([]float64, in.Width*in.Height),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.clearDepth()
	return c, nil
}

// Intrinsics returns the projection parameters.
func (c *Camera) Intrinsics() Intrinsics { return c.intr }

// Width returns the grid width in pixels.
func (c *Camera) Width() int { return c.intr.Width }

// Height returns the grid height in pixels.
func (c *Camera) Height() int { return c.intr.Height }

// Pose returns the camera-to-world transform.
func (c *Camera) Pose() math3d.Rigid { return c.camToWorld }

// View returns the world-to-camera transform.
func (c *Camera) View() math3d.Rigid { return c.worldToCam }

// Position returns the camera centre in world space.
func (c *Camera) Position() math3d.Vec3 { return c.camToWorld.T }

// Forward returns the viewing direction in world space.
func (c *Camera) Forward() math3d.Vec3 { return c.camToWorld.R.Column(2) }

// SetPose replaces the camera-to-world pose.
func (c *Camera) SetPose(camToWorld math3d.Rigid) {
	c.setPose(camToWorld)
}

func (c *Camera) setPose(camToWorld math3d.Rigid) {
	c.camToWorld = camToWorld
	c.worldToCam = camToWorld.Inverse()
}

// DepthTest reports whether the z-buffer is in use.
func (c *Camera) DepthTest() bool { return c.depthTest }

// SetDepthTest turns the z-buffer on or off for following renders.
func (c *Camera) SetDepthTest(enabled bool) { c.depthTest = enabled }

// Shading returns the shading mode.
func (c *Camera) Shading() Shading { return c.shading }

// SetShading sets the shading mode for following renders.
func (c *Camera) SetShading(s Shading) { c.shading = s }

// Palette returns the palette pixel colours are quantized to.
func (c *Camera) Palette() palette.Palette { return c.palette }

// Project divides a camera-space point by its depth, giving its position on
// the z=1 image plane.
func (c *Camera) Project(p math3d.Vec3) (math3d.Vec2, error) {
	if !(p.Z > 0) {
		return math3d.Vec2{}, ErrBehindCamera
	}
	return math3d.V2(p.X/p.Z, p.Y/p.Z), nil
}

// ImagePlaneToPixel maps an image-plane point to pixel coordinates: X is the
// column, Y the row.
func (c *Camera) ImagePlaneToPixel(p math3d.Vec2) math3d.Vec2 {
	return math3d.V2(c.intr.Fx*p.X+c.intr.Cx, c.intr.Fy*p.Y+c.intr.Cy)
}

// Transform moves the camera by a world-frame rigid transform.
func (c *Camera) Transform(t math3d.Rigid) {
	c.setPose(t.Mul(c.camToWorld))
}

// LookAt turns the camera in place so it faces target with worldUp pointing
// up the image. The pose is unchanged on error.
func (c *Camera) LookAt(target, worldUp math3d.Vec3) error {
	pos := c.Position()
	dir := target.Sub(pos)
	if dir.Len() == 0 {
		return ErrTargetAtCamera
	}
	forward := dir.Normalize()

	up := worldUp.Sub(forward.Scale(worldUp.Dot(forward)))
	if !(up.Len() >= parallelEpsilon) {
		return ErrParallelUpVector
	}
	up = up.Normalize()
	right := forward.Cross(up)

	// Image rows grow downwards, so camera +Y is world down.
	rot := math3d.FromColumns(right, up.Negate(), forward)
	c.setPose(math3d.Rigid{R: rot, T: pos})
	return nil
}

// DepthAt returns the depth stored for a pixel by the last render, and false
// if nothing was drawn there or the pixel is outside the grid.
func (c *Camera) DepthAt(row, col int) (float64, bool) {
	if row < 0 || row >= c.intr.Height || col < 0 || col >= c.intr.Width {
		return 0, false
	}
	z := c.zbuffer[row*c.intr.Width+col]
	if math.IsInf(z, 1) {
		return 0, false
	}
	return z, true
}

// clearDepth resets every depth to +Inf. The filled prefix is copied onto
// the rest, doubling each pass.
func (c *Camera) clearDepth() {
	n := len(c.zbuffer)
	if n == 0 {
		return
	}
	c.zbuffer[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(c.zbuffer[i:], c.zbuffer[:i])
	}
}
