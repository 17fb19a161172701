package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/ionocraft"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model.Mode != "three_input" {
		t.Errorf("expected three_input mode, got %s", cfg.Model.Mode)
	}
	if cfg.Model.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Rollout.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if cfg.Model.Mass != ionocraft.DefaultMass {
		t.Errorf("expected default mass, got %g", cfg.Model.Mass)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("canted")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Model.Angle != 0.1 {
		t.Errorf("expected angle 0.1, got %f", cfg.Model.Angle)
	}

	cfg.Model.Angle = 2
	if GetPreset("canted").Model.Angle != 0.1 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	want := []string{"canted", "climb", "four_input", "hover", "noisy"}
	if len(presets) != len(want) {
		t.Fatalf("expected %d presets, got %v", len(want), presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("preset %d: expected %s, got %s", i, want[i], presets[i])
		}
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			if err := GetPreset(name).Validate(); err != nil {
				t.Errorf("preset %s invalid: %v", name, err)
			}
		})
	}
}

func TestInitState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rollout.InitState.Z = -0.2
	cfg.Rollout.InitState.Pitch = 0.05
	cfg.Rollout.InitState.WZ = 1

	x := cfg.InitState()
	if len(x) != ionocraft.NumStates {
		t.Fatalf("expected %d states, got %d", ionocraft.NumStates, len(x))
	}
	if x[ionocraft.Z] != -0.2 || x[ionocraft.Pitch] != 0.05 || x[ionocraft.WZ] != 1 {
		t.Errorf("init state mapped incorrectly: %v", x)
	}
	for _, i := range []ionocraft.StateIndex{ionocraft.AX, ionocraft.AY, ionocraft.AZ} {
		if x[i] != 0 {
			t.Errorf("%s should start at 0", i)
		}
	}
}

func TestModelFromConfig(t *testing.T) {
	cfg := GetPreset("four_input")
	m, err := cfg.BuildModel()
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	if m.ControlDim() != 4 {
		t.Errorf("expected 4 inputs, got %d", m.ControlDim())
	}
	if m.Timestep() != cfg.Model.Dt {
		t.Errorf("expected dt %g, got %g", cfg.Model.Dt, m.Timestep())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		is     error
	}{
		{"bad mode", func(c *Config) { c.Model.Mode = "five" }, nil},
		{"zero dt", func(c *Config) { c.Model.Dt = 0 }, dynamo.ErrInvalidParameter},
		{"negative mass", func(c *Config) { c.Model.Mass = -1 }, dynamo.ErrInvalidParameter},
		{"negative noise", func(c *Config) { c.Model.ProcessNoise = -1 }, dynamo.ErrInvalidParameter},
		{"zero steps", func(c *Config) { c.Rollout.Steps = 0 }, nil},
		{"zero runs", func(c *Config) { c.Rollout.Runs = 0 }, nil},
		{"empty controller", func(c *Config) { c.Rollout.Controller = "" }, nil},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, nil},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ionosim.yaml")

	cfg := GetPreset("climb")
	cfg.Rollout.ControllerParams.Input = []float64{1e-4, 0, 0}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Rollout.ControllerParams.Target != -0.5 {
		t.Errorf("expected target -0.5, got %f", loaded.Rollout.ControllerParams.Target)
	}
	if len(loaded.Rollout.ControllerParams.Input) != 3 {
		t.Errorf("expected constant input to round-trip, got %v", loaded.Rollout.ControllerParams.Input)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("model:\n  mode: four_input\nrollout:\n  steps: 10\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Model.Mode != "four_input" || cfg.Rollout.Steps != 10 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Model.Mass != ionocraft.DefaultMass {
		t.Errorf("expected default mass kept, got %g", cfg.Model.Mass)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOverlayKeepsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	if err := os.WriteFile(path, []byte("rollout:\n  steps: 42\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("canted")
	cfg, err := Overlay(path, base)
	if err != nil {
		t.Fatalf("overlay failed: %v", err)
	}
	if cfg.Rollout.Steps != 42 || cfg.Model.Angle != 0.1 {
		t.Errorf("expected preset angle with overridden steps, got angle=%g steps=%d", cfg.Model.Angle, cfg.Rollout.Steps)
	}
	if base.Rollout.Steps == 42 {
		t.Error("Overlay must not modify base")
	}
}
