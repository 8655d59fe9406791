package snapshot

import (
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"neurosphere/internal/params"
)

func TestValueEncodesAsTriple(t *testing.T) {
	b, err := json.Marshal(Value{Lat: 0.5, Lon: 1.25, V: -3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[0.5,1.25,-3]" {
		t.Fatalf("unexpected encoding %s", b)
	}
	b, _ = json.Marshal(Label{Lat: 0.5, Lon: 1.25, V: "taiga"})
	if string(b) != `[0.5,1.25,"taiga"]` {
		t.Fatalf("unexpected label encoding %s", b)
	}
}

func TestValueDecodesObjectForm(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"lat":0.1,"lon":0.2,"value":3}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Lat != 0.1 || v.Lon != 0.2 || v.V != 3 {
		t.Fatalf("unexpected value %+v", v)
	}
	var l Label
	if err := json.Unmarshal([]byte(`{"lat":0.1,"lon":0.2,"value":"swamp"}`), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if l.V != "swamp" {
		t.Fatalf("unexpected label %+v", l)
	}
	if err := json.Unmarshal([]byte(`[1,2]`), &v); err == nil {
		t.Fatal("expected short triple to be rejected")
	}
}

func TestWriteReadFileRoundTrip(t *testing.T) {
	id := 4
	seed := int64(42)
	g := params.Default()
	g.Seed = &seed
	w := World{ID: &id, Type: "planet", Generation: Generation{Generation: g}}
	w.Generation.SetLevels(params.Levels{Water: -0.1, Mountain: 0.7})
	w.Maps = &Maps{
		Height:   []Value{{Lat: math.Pi / 7, Lon: 1 / 3.0, V: 0.123456789012345}},
		Biome:    []Label{{Lat: math.Pi / 7, Lon: 1 / 3.0, V: "plains"}},
		Location: []Value{{Lat: math.Pi / 7, Lon: 1 / 3.0, V: 0}},
	}
	loc := 0
	doc := &Document{Worlds: []World{w}, Characters: []Character{{ID: 1, Name: "Ada", WorldID: 4, LocationID: &loc}}}

	path := filepath.Join(t.TempDir(), "world.json")
	if err := WriteFile(path, doc); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Worlds) != 1 || *got.Worlds[0].ID != 4 || got.Worlds[0].Type != "planet" {
		t.Fatalf("unexpected worlds %+v", got.Worlds)
	}
	gw := got.Worlds[0]
	if gw.Generation.SeedValue() != 42 || gw.Generation.Radius != g.Radius {
		t.Fatalf("generation not restored: %+v", gw.Generation.Generation)
	}
	lv, ok := gw.Generation.Levels()
	if !ok || lv.Water != -0.1 || lv.Mountain != 0.7 {
		t.Fatalf("levels not restored: %+v %v", lv, ok)
	}
	if gw.Maps.Height[0] != w.Maps.Height[0] || gw.Maps.Biome[0] != w.Maps.Biome[0] {
		t.Fatalf("map values not bit-identical after round trip")
	}
	if len(got.Characters) != 1 || *got.Characters[0].LocationID != 0 {
		t.Fatalf("characters not restored: %+v", got.Characters)
	}
}

func TestMapsEmpty(t *testing.T) {
	var m *Maps
	if !m.Empty() {
		t.Fatal("nil maps should be empty")
	}
	if (&Maps{Height: []Value{{}}}).Empty() {
		t.Fatal("maps with a field should not be empty")
	}
}
