package main

import (
	"testing"

	"github.com/taigrr/raster/pkg/render"
)

func TestOptionsConfig(t *testing.T) {
	opts := options{fps: 24, fov: 60, distance: 2, friction: 0.5, shading: "flat", levels: "uniform", noDepth: true}
	cfg, err := opts.config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Shading != render.Flat || cfg.DepthTest || cfg.FPS != 24 || cfg.Distance != 2 {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Palette.Quantizer().String() != "uniform" {
		t.Errorf("quantizer = %v, want uniform", cfg.Palette.Quantizer())
	}

	opts.shading = "phong"
	if _, err := opts.config(); err == nil {
		t.Error("config accepted shading phong")
	}
}

func TestLoadMeshDefault(t *testing.T) {
	m, err := loadMesh("", 1)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "pyramid" {
		t.Errorf("default mesh = %q, want pyramid", m.Name)
	}
	if _, err := loadMesh("/nonexistent/model.glb", 1); err == nil {
		t.Error("loading a missing file succeeded")
	}
}
