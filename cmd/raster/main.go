// raster - Terminal Triangle Rasterizer
// Spin a coloured mesh in your terminal, drawn with a z-buffered software
// rasterizer. Without a mesh argument a four-sided pyramid is shown.
//
// Controls:
//
//	A/D, Left/Right  - Spin about the up axis
//	W/S, Up/Down     - Pitch toward/away from the camera
//	+/-              - Zoom in/out
//	Space            - Random spin
//	R                - Reset
//	F                - Toggle flat/interpolated shading
//	Z                - Toggle depth test
//	?                - Toggle HUD overlay
//	Q/Esc            - Quit
package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/raster/pkg/math3d"
	"github.com/taigrr/raster/pkg/models"
	"github.com/taigrr/raster/pkg/palette"
	"github.com/taigrr/raster/pkg/render"
	"github.com/taigrr/raster/pkg/scene"
)

var version = "dev"

// options are the command line settings.
type options struct {
	fps       int
	fov       float64 // degrees
	distance  float64
	friction  float64
	shading   string
	noDepth   bool
	levels    string
	halfBlock bool
	glyph     string
	logFile   string
	snapshot  string
	width     int
	height    int
	meshSize  float64
	scale     int
}

func main() {
	opts := options{}
	defaults := scene.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "raster [mesh.obj|mesh.glb]",
		Short: "Render a coloured triangle mesh in the terminal",
		Long: `raster draws a triangle mesh into the terminal with a software rasterizer:
perspective projection, a z-buffer and perspective-correct colour interpolation,
quantized to a 216 colour palette.

Meshes are read from glTF (.glb, .gltf) or from a text format of
"v x y z [r g b]" and "f i j k" lines. Without a mesh a pyramid is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd.Context(), path, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.fps, "fps", defaults.FPS, "target frames per second")
	flags.Float64Var(&opts.fov, "fov", defaults.FOV*180/math.Pi, "horizontal field of view in degrees")
	flags.Float64Var(&opts.distance, "distance", defaults.Distance, "camera distance from the mesh")
	flags.Float64Var(&opts.friction, "friction", defaults.Friction, "fraction of spin kept each frame, in (0, 1]")
	flags.StringVar(&opts.shading, "shading", defaults.Shading.String(), "shading mode: flat or interpolated")
	flags.BoolVar(&opts.noDepth, "no-depth", false, "disable the depth test (faces drawn in file order)")
	flags.StringVar(&opts.levels, "levels", palette.Sqrt.String(), "palette level spacing: sqrt or uniform")
	flags.BoolVar(&opts.halfBlock, "half-block", false, "draw two pixels per cell with half blocks")
	flags.StringVar(&opts.glyph, "glyph", render.DefaultGlyph, "character drawn in each cell")
	flags.StringVar(&opts.logFile, "log-file", "", "write debug logs to this file")
	flags.StringVar(&opts.snapshot, "snapshot", "", "render one frame to this PNG file and exit")
	flags.IntVar(&opts.width, "width", 160, "snapshot width in pixels")
	flags.IntVar(&opts.height, "height", 96, "snapshot height in pixels")
	flags.IntVar(&opts.scale, "scale", 4, "snapshot upscale factor")
	flags.Float64Var(&opts.meshSize, "size", 1.2, "size loaded meshes are scaled to")

	if err := fang.Execute(context.Background(), cmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, opts options) error {
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		render.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := opts.config()
	if err != nil {
		return err
	}

	mesh, err := loadMesh(path, opts.meshSize)
	if err != nil {
		return err
	}
	render.Logger().Info("mesh loaded",
		slog.String("name", mesh.Name),
		slog.Int("vertices", mesh.VertexCount()),
		slog.Int("faces", mesh.TriangleCount()),
	)

	if opts.snapshot != "" {
		return snapshot(mesh, cfg, opts)
	}
	return view(ctx, mesh, cfg, opts)
}

// config turns flags into a scene configuration.
func (o options) config() (scene.Config, error) {
	cfg := scene.DefaultConfig()
	cfg.FPS = o.fps
	cfg.FOV = o.fov * math.Pi / 180
	cfg.Distance = o.distance
	cfg.Friction = o.friction
	cfg.DepthTest = !o.noDepth

	shading, err := render.ParseShading(o.shading)
	if err != nil {
		return cfg, err
	}
	cfg.Shading = shading

	q, err := palette.ParseQuantizer(o.levels)
	if err != nil {
		return cfg, err
	}
	pal, err := palette.New(palette.DefaultLevels, q)
	if err != nil {
		return cfg, err
	}
	cfg.Palette = pal
	return cfg, nil
}

// loadMesh loads path, or returns the pyramid when path is empty. Loaded
// meshes are centred and scaled to size.
func loadMesh(path string, size float64) (*models.Mesh, error) {
	if path == "" {
		return scene.Pyramid(), nil
	}

	var (
		mesh *models.Mesh
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		mesh, err = models.LoadGLB(path)
		if err == nil {
			// glTF is y-up; the viewer is z-up.
			mesh.Transform(math3d.Rotation(math3d.RotateX(math.Pi / 2)))
		}
	default:
		mesh, err = models.LoadMesh(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	mesh.Fit(size)
	return mesh, nil
}

// snapshot renders a single frame to a PNG file.
func snapshot(mesh *models.Mesh, cfg scene.Config, opts options) error {
	s, err := scene.New(mesh, opts.width, opts.height, cfg)
	if err != nil {
		return err
	}
	fb := render.NewFramebuffer(opts.width, opts.height)
	if err := s.Render(fb); err != nil {
		return err
	}
	if err := fb.SavePNG(opts.snapshot, cfg.Palette, color.RGBA{30, 30, 40, 255}, opts.scale); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d faces, %d pixels)\n", opts.snapshot, s.Status().Faces, s.Status().Stats.Pixels)
	return nil
}
