// Package scene drives an interactive view of one mesh: it turns commands
// into motion, advances that motion once per frame and renders the result.
package scene

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/taigrr/raster/pkg/math3d"
	"github.com/taigrr/raster/pkg/models"
	"github.com/taigrr/raster/pkg/palette"
	"github.com/taigrr/raster/pkg/physics"
	"github.com/taigrr/raster/pkg/render"
)

// Config holds the viewer settings.
type Config struct {
	FPS       int     // frames per second the driver runs at
	FOV       float64 // horizontal field of view, radians
	Distance  float64 // camera distance from the origin
	Friction  float64 // velocity kept per frame, in (0, 1]
	Shading   render.Shading
	DepthTest bool
	Palette   palette.Palette
	Seed      uint64 // for Nudge
}

// DefaultConfig returns the viewer defaults.
func DefaultConfig() Config {
	return Config{
		FPS:       30,
		FOV:       math.Pi / 2,
		Distance:  1.5,
		Friction:  0.85,
		Shading:   render.Interpolated,
		DepthTest: true,
		Palette:   palette.Default(),
		Seed:      1,
	}
}

// Up is the world up direction. The camera orbits in the xy plane.
var Up = math3d.UnitZ()

// Scene owns a mesh and the camera looking at it.
type Scene struct {
	cfg Config

	original *models.Mesh
	mesh     *models.Mesh
	camera   *render.Camera
	kinetics *physics.Kinetics
	dolly    *Dolly
	rng      *rand.Rand

	// Impulses collected since the last Step.
	dv, dw math3d.Vec3

	ShowHelp bool
	frames   int
}

// New creates a scene viewing mesh on a width x height grid. The mesh is
// copied; the caller's mesh is never moved.
func New(mesh *models.Mesh, width, height int, cfg Config) (*Scene, error) {
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("fps %d must be positive", cfg.FPS)
	}
	if !(cfg.Distance > 0) {
		return nil, fmt.Errorf("distance %v must be positive", cfg.Distance)
	}
	k, err := physics.NewKinetics(cfg.Friction, cfg.Friction, math3d.Zero3(), math3d.Zero3())
	if err != nil {
		return nil, fmt.Errorf("create kinetics: %w", err)
	}

	s := &Scene{
		cfg:      cfg,
		original: mesh.Clone(),
		mesh:     mesh.Clone(),
		kinetics: k,
		dolly:    NewDolly(cfg.FPS, cfg.Distance),
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
	}
	if err := s.Resize(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

// Resize rebuilds the camera for a new grid size, keeping its pose and
// render options.
func (s *Scene) Resize(width, height int) error {
	opts := []render.Option{
		render.WithShading(s.cfg.Shading),
		render.WithDepthTest(s.cfg.DepthTest),
		render.WithPalette(s.cfg.Palette),
	}
	if s.camera != nil {
		opts = append(opts,
			render.WithPose(s.camera.Pose()),
			render.WithShading(s.camera.Shading()),
			render.WithDepthTest(s.camera.DepthTest()),
		)
	}

	cam, err := render.NewCamera(width, height, s.cfg.FOV, opts...)
	if err != nil {
		return fmt.Errorf("create camera: %w", err)
	}
	if s.camera == nil {
		if err := placeCamera(cam, s.cfg.Distance); err != nil {
			return err
		}
	}
	s.camera = cam
	return nil
}

// placeCamera puts cam on +x at distance, looking at the origin.
func placeCamera(cam *render.Camera, distance float64) error {
	cam.SetPose(math3d.Translation(math3d.V3(distance, 0, 0)))
	if err := cam.LookAt(math3d.Zero3(), Up); err != nil {
		return fmt.Errorf("aim camera: %w", err)
	}
	return nil
}

// Camera returns the scene camera.
func (s *Scene) Camera() *render.Camera { return s.camera }

// Mesh returns the mesh as currently posed.
func (s *Scene) Mesh() *models.Mesh { return s.mesh }

// Kinetics returns the mesh motion integrator.
func (s *Scene) Kinetics() *physics.Kinetics { return s.kinetics }

// Dolly returns the camera distance controller.
func (s *Scene) Dolly() *Dolly { return s.dolly }

// Frames returns how many steps have run.
func (s *Scene) Frames() int { return s.frames }

// Handle applies a command. It reports false for Quit.
func (s *Scene) Handle(cmd Command) bool {
	// One key press turns the mesh by pi/fps radians per frame.
	spin := math.Pi / float64(s.cfg.FPS)
	right := s.camera.Pose().R.Column(0)

	switch cmd {
	case SpinLeft:
		s.dw = s.dw.Add(Up.Scale(-spin))
	case SpinRight:
		s.dw = s.dw.Add(Up.Scale(spin))
	case PitchUp:
		s.dw = s.dw.Add(right.Scale(-spin))
	case PitchDown:
		s.dw = s.dw.Add(right.Scale(spin))
	case ZoomIn:
		s.dolly.ZoomIn()
	case ZoomOut:
		s.dolly.ZoomOut()
	case Nudge:
		s.dw = s.dw.Add(math3d.V3(
			(s.rng.Float64()-0.5)*spin,
			(s.rng.Float64()-0.5)*spin,
			(s.rng.Float64()-0.5)*spin,
		))
	case Reset:
		s.reset()
	case ToggleShading:
		if s.camera.Shading() == render.Flat {
			s.camera.SetShading(render.Interpolated)
		} else {
			s.camera.SetShading(render.Flat)
		}
	case ToggleDepth:
		s.camera.SetDepthTest(!s.camera.DepthTest())
	case ToggleHUD:
		s.ShowHelp = !s.ShowHelp
	case Quit:
		return false
	}

	if cmd != None {
		render.Logger().Debug("command", slog.String("command", cmd.String()))
	}
	return true
}

func (s *Scene) reset() {
	s.mesh = s.original.Clone()
	s.kinetics.Stop()
	s.dv, s.dw = math3d.Zero3(), math3d.Zero3()
	s.dolly.Reset(s.cfg.Distance)
	s.camera.SetShading(s.cfg.Shading)
	s.camera.SetDepthTest(s.cfg.DepthTest)
	// New already placed a camera with this distance.
	if err := placeCamera(s.camera, s.cfg.Distance); err != nil {
		panic(err)
	}
}

// Step advances one frame: the mesh moves by the current velocities,
// pending impulses are added for the next frame, and the camera slides
// along its view axis toward the dolly target.
func (s *Scene) Step() {
	step := s.kinetics.Update(s.dv, s.dw)
	s.dv, s.dw = math3d.Zero3(), math3d.Zero3()

	// Spin about the mesh centre rather than the world origin.
	center := s.mesh.Center()
	s.mesh.Transform(math3d.Translation(step.T).Mul(math3d.RotationAbout(step.R, center)))

	d := s.dolly.Update()
	forward := s.camera.Forward()
	s.camera.SetPose(math3d.Rigid{R: s.camera.Pose().R, T: forward.Scale(-d)})

	s.frames++
}

// Render draws the current frame onto surface.
func (s *Scene) Render(surface render.Surface) error {
	return s.camera.Render(s.mesh, surface)
}

// Status summarizes the scene for a status line.
type Status struct {
	Mesh      string
	Vertices  int
	Faces     int
	Shading   render.Shading
	DepthTest bool
	Distance  float64
	Stats     render.RenderStats
}

// Status returns the current state.
func (s *Scene) Status() Status {
	return Status{
		Mesh:      s.mesh.Name,
		Vertices:  s.mesh.VertexCount(),
		Faces:     s.mesh.TriangleCount(),
		Shading:   s.camera.Shading(),
		DepthTest: s.camera.DepthTest(),
		Distance:  s.dolly.Distance(),
		Stats:     s.camera.Stats(),
	}
}
