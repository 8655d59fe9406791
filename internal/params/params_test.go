package params

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default parameters should validate: %v", err)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	doc := []byte(`
radius: 5
seed: 42
tectonics:
  big_tectonics_number: 3
  small_tectonics_number: 2
height:
  water_percentage: 70
temperature:
  noise:
    octaves: [2]
    coefficients: [0.7]
`)
	g, err := Parse(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Radius != 5 || g.SeedValue() != 42 {
		t.Fatalf("expected radius 5 and seed 42, got %v %v", g.Radius, g.SeedValue())
	}
	if g.Tectonics.BigNumber != 3 || g.Tectonics.SmallNumber != 2 || g.TotalPlates() != 5 {
		t.Fatalf("unexpected plate counts %+v", g.Tectonics)
	}
	if g.Height.WaterPercentage != 70 {
		t.Fatalf("expected water percentage 70, got %v", g.Height.WaterPercentage)
	}
	if len(g.Temperature.Noise.Octaves) != 1 || g.Temperature.Noise.Octaves[0] != 2 {
		t.Fatalf("expected temperature octaves to be replaced, got %v", g.Temperature.Noise.Octaves)
	}
	def := Default()
	if g.Height.MaxTectonicSpeed != def.Height.MaxTectonicSpeed {
		t.Fatalf("expected untouched field to keep default")
	}
}

func TestLoadFileReadsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planet.json")
	if err := os.WriteFile(path, []byte(`{"radius": 3, "noise_kind": "simplex"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	g, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Radius != 3 || g.NoiseKind != "simplex" || g.Seed != nil {
		t.Fatalf("unexpected record %+v", g)
	}
}

func TestValidateRejectsMalformedRecords(t *testing.T) {
	cases := map[string]func(g *Generation){
		"zero radius":         func(g *Generation) { g.Radius = 0 },
		"tiny radius":         func(g *Generation) { g.Radius = 0.1 },
		"empty height noise":  func(g *Generation) { g.Height.Noise = Noise{} },
		"mismatched noise":    func(g *Generation) { g.Temperature.Noise.Coefficients = []float64{1} },
		"water over 100":      func(g *Generation) { g.Height.WaterPercentage = 120 },
		"negative mountain":   func(g *Generation) { g.Height.MountainPercentage = -1 },
		"overlapping levels":  func(g *Generation) { g.Height.WaterPercentage = 95; g.Height.MountainPercentage = 10 },
		"no big plates":       func(g *Generation) { g.Tectonics.BigNumber = 0 },
		"inverted heights":    func(g *Generation) { g.Height.MinHeight = 2 },
		"zero speed":          func(g *Generation) { g.Height.MaxTectonicSpeed = 0 },
		"bad ratio":           func(g *Generation) { g.Height.OceanicPlatesRatio = 1.5 },
		"unknown noise":       func(g *Generation) { g.NoiseKind = "worley" },
		"inverted biome temp": func(g *Generation) { g.Biome.TemperatureRange = Range{Min: 1, Max: 1} },
		"too many plates":     func(g *Generation) { g.Radius = 1; g.Tectonics.BigNumber = 20 },
	}
	for name, mutate := range cases {
		g := Default().Clone()
		mutate(&g)
		if err := Validate(g); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%s: expected ErrInvalidParameter, got %v", name, err)
		}
	}
}

func TestWithSeedFillsOnlyMissingSeed(t *testing.T) {
	g := Default()
	filled := WithSeed(g)
	if filled.Seed == nil {
		t.Fatal("expected seed to be drawn")
	}
	if s := *filled.Seed; s < 0 || s > 10000 {
		t.Fatalf("seed out of range: %d", s)
	}
	if g.Seed != nil {
		t.Fatal("input record must not be mutated")
	}
	fixed := int64(7)
	g.Seed = &fixed
	if got := WithSeed(g).SeedValue(); got != 7 {
		t.Fatalf("expected explicit seed to be kept, got %d", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PLANET_SEED", "99")
	t.Setenv("PLANET_RADIUS", "4")
	t.Setenv("GEN_WORKERS", "bad")
	g := ApplyEnv(Default())
	if g.SeedValue() != 99 || g.Radius != 4 {
		t.Fatalf("expected env overrides, got seed=%d radius=%v", g.SeedValue(), g.Radius)
	}
	if g.Workers != 0 {
		t.Fatalf("expected unparsable worker count to be ignored, got %d", g.Workers)
	}
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	g := Default()
	c := g.Clone()
	c.Height.Noise.Octaves[0] = 99
	if g.Height.Noise.Octaves[0] == 99 {
		t.Fatal("clone shares noise slices with its source")
	}
}
