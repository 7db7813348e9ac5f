package render

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/raster/pkg/math3d"
)

func TestIntrinsicsFromFOV(t *testing.T) {
	in, err := IntrinsicsFromFOV(80, 24, math.Pi/2)
	if err != nil {
		t.Fatalf("IntrinsicsFromFOV: %v", err)
	}
	want := Intrinsics{Width: 80, Height: 24, Fx: 40, Fy: 12, Cx: 39.5, Cy: 11.5}
	if math.Abs(in.Fx-want.Fx) > 1e-9 || math.Abs(in.Fy-want.Fy) > 1e-9 ||
		in.Cx != want.Cx || in.Cy != want.Cy || in.Width != want.Width || in.Height != want.Height {
		t.Errorf("IntrinsicsFromFOV = %+v, want %+v", in, want)
	}
}

func TestInvalidIntrinsics(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		fov           float64
	}{
		{"zero fov", 80, 24, 0},
		{"fov pi", 80, 24, math.Pi},
		{"nan fov", 80, 24, math.NaN()},
		{"zero width", 0, 24, 1},
		{"negative height", 80, -1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCamera(tt.width, tt.height, tt.fov); !errors.Is(err, ErrInvalidIntrinsics) {
				t.Errorf("err = %v, want ErrInvalidIntrinsics", err)
			}
		})
	}

	_, err := NewCameraFromIntrinsics(Intrinsics{Width: 4, Height: 4, Fx: 0, Fy: 1})
	if !errors.Is(err, ErrInvalidIntrinsics) {
		t.Errorf("zero focal length: err = %v, want ErrInvalidIntrinsics", err)
	}
}

func TestProject(t *testing.T) {
	c := unitCamera(t, 8, 8)

	p, err := c.Project(math3d.V3(2, -4, 2))
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if p != math3d.V2(1, -2) {
		t.Errorf("Project = %v, want (1, -2)", p)
	}

	for _, z := range []float64{0, -1, math.NaN()} {
		if _, err := c.Project(math3d.V3(1, 1, z)); !errors.Is(err, ErrBehindCamera) {
			t.Errorf("Project(z=%v) err = %v, want ErrBehindCamera", z, err)
		}
	}
}

func TestProjectContinuous(t *testing.T) {
	c, err := NewCamera(80, 24, math.Pi/2)
	if err != nil {
		t.Fatal(err)
	}
	base := math3d.V3(0.3, -0.2, 1.5)
	const h = 1e-7
	p0, _ := c.Project(base)
	px0 := c.ImagePlaneToPixel(p0)
	for _, d := range []math3d.Vec3{math3d.V3(h, 0, 0), math3d.V3(0, h, 0), math3d.V3(0, 0, h)} {
		p1, err := c.Project(base.Add(d))
		if err != nil {
			t.Fatal(err)
		}
		px1 := c.ImagePlaneToPixel(p1)
		if math.Abs(px1.X-px0.X) > 1e-4 || math.Abs(px1.Y-px0.Y) > 1e-4 {
			t.Errorf("small step %v moved pixel from %v to %v", d, px0, px1)
		}
	}
}

func TestImagePlaneToPixel(t *testing.T) {
	c, err := NewCameraFromIntrinsics(Intrinsics{Width: 10, Height: 10, Fx: 2, Fy: 3, Cx: 4.5, Cy: 4.5})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.ImagePlaneToPixel(math3d.V2(1, -1)); got != math3d.V2(6.5, 1.5) {
		t.Errorf("ImagePlaneToPixel = %v, want (6.5, 1.5)", got)
	}
}

func TestLookAt(t *testing.T) {
	// The default scene: camera on +x looking at the origin, z up.
	c, err := NewCamera(80, 24, math.Pi/2, WithPose(math3d.Translation(math3d.V3(1, 0, 0))))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.LookAt(math3d.Zero3(), math3d.UnitZ()); err != nil {
		t.Fatalf("LookAt: %v", err)
	}

	if got := c.Forward(); !got.ApproxEqual(math3d.V3(-1, 0, 0), 1e-12) {
		t.Errorf("Forward() = %v, want (-1, 0, 0)", got)
	}
	if got := c.Position(); got != math3d.V3(1, 0, 0) {
		t.Errorf("Position() = %v, LookAt must not move the camera", got)
	}
	if d := c.Pose().R.Determinant(); math.Abs(d-1) > 1e-12 {
		t.Errorf("rotation determinant = %v, want 1", d)
	}

	// World up is image up (negative rows), world +y is image right.
	view := c.View()
	above := view.Apply(math3d.V3(0, 0, 1))
	right := view.Apply(math3d.V3(0, 1, 0))
	if !(above.Y < 0) {
		t.Errorf("point above the target has camera y %v, want < 0", above.Y)
	}
	if !(right.X > 0) {
		t.Errorf("point on +y has camera x %v, want > 0", right.X)
	}
	if target := view.Apply(math3d.Zero3()); !target.ApproxEqual(math3d.V3(0, 0, 1), 1e-12) {
		t.Errorf("target in camera space = %v, want (0, 0, 1)", target)
	}
}

func TestLookAtParallelUp(t *testing.T) {
	c := unitCamera(t, 8, 8, WithPose(math3d.Translation(math3d.V3(1, 2, 3))))
	before := c.Pose()

	tests := []struct {
		name   string
		target math3d.Vec3
		up     math3d.Vec3
		want   error
	}{
		{"target straight up", math3d.V3(1, 2, 10), math3d.UnitZ(), ErrParallelUpVector},
		{"target straight down", math3d.V3(1, 2, -10), math3d.UnitZ(), ErrParallelUpVector},
		{"zero up", math3d.Zero3(), math3d.Zero3(), ErrParallelUpVector},
		{"target at camera", math3d.V3(1, 2, 3), math3d.UnitZ(), ErrTargetAtCamera},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.LookAt(tt.target, tt.up); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if c.Pose() != before {
				t.Errorf("pose changed on error: %+v", c.Pose())
			}
			if c.Pose().R.HasNaN() || c.View().R.HasNaN() {
				t.Error("pose has NaN entries")
			}
		})
	}
}

func TestCameraTransform(t *testing.T) {
	c := unitCamera(t, 8, 8)
	c.Transform(math3d.Translation(math3d.V3(0, 0, -5)))
	c.Transform(math3d.Rotation(math3d.RotateY(math.Pi / 2)))

	// Rotating about world y carries the camera from -z to -x.
	if got := c.Position(); !got.ApproxEqual(math3d.V3(-5, 0, 0), 1e-12) {
		t.Errorf("Position() = %v, want (-5, 0, 0)", got)
	}
	if got := c.Forward(); !got.ApproxEqual(math3d.UnitX(), 1e-12) {
		t.Errorf("Forward() = %v, want +x", got)
	}
	if !c.Pose().Mul(c.View()).ApproxEqual(math3d.IdentityRigid(), 1e-12) {
		t.Error("Pose and View are not inverses")
	}

	c.SetPose(math3d.IdentityRigid())
	if c.View() != math3d.IdentityRigid() {
		t.Errorf("View() = %+v after SetPose(identity)", c.View())
	}
}

func TestDepthAtBounds(t *testing.T) {
	c := unitCamera(t, 4, 4)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {0, 0}} {
		if _, ok := c.DepthAt(p[0], p[1]); ok {
			t.Errorf("DepthAt(%d, %d) ok before any render", p[0], p[1])
		}
	}
}

func TestParseShading(t *testing.T) {
	for _, s := range []Shading{Interpolated, Flat} {
		got, err := ParseShading(s.String())
		if err != nil || got != s {
			t.Errorf("ParseShading(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseShading("phong"); err == nil {
		t.Error("ParseShading(phong) succeeded")
	}
}

func TestClearDepthOddSize(t *testing.T) {
	c := unitCamera(t, 7, 3)
	for i := range c.zbuffer {
		c.zbuffer[i] = 1
	}
	c.clearDepth()
	for i, z := range c.zbuffer {
		if !math.IsInf(z, 1) {
			t.Fatalf("zbuffer[%d] = %v after clear, want +Inf", i, z)
		}
	}
}
