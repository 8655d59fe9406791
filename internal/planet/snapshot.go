package planet

import (
	"fmt"
	"math"

	"neurosphere/internal/biome"
	"neurosphere/internal/geo"
	"neurosphere/internal/logger"
	"neurosphere/internal/metrics"
	"neurosphere/internal/snapshot"
)

// 文档注释：导出持久化记录
// 背景：各点场写成 (lat, lon, value) 三元组；水位/山地线与已补全的种子写回 generation。
func (p *Planet) Snapshot() (snapshot.World, error) {
	f, err := p.ready()
	if err != nil {
		return snapshot.World{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	w := snapshot.World{Type: Type, Generation: snapshot.Generation{Generation: p.gen.Clone()}}
	if p.hasID {
		id := p.id
		w.ID = &id
	}
	w.Generation.SetLevels(f.levels)

	n := len(f.points)
	m := &snapshot.Maps{
		Tectonic:      make([]snapshot.Value, n),
		Height:        make([]snapshot.Value, n),
		Heat:          make([]snapshot.Value, n),
		Precipitation: make([]snapshot.Value, n),
		Biome:         make([]snapshot.Label, n),
	}
	for i, pt := range f.points {
		m.Tectonic[i] = snapshot.Value{Lat: pt.Lat, Lon: pt.Lon, V: float64(f.plates[i])}
		m.Height[i] = snapshot.Value{Lat: pt.Lat, Lon: pt.Lon, V: f.height[i]}
		m.Heat[i] = snapshot.Value{Lat: pt.Lat, Lon: pt.Lon, V: f.heat[i]}
		m.Precipitation[i] = snapshot.Value{Lat: pt.Lat, Lon: pt.Lon, V: f.precip[i]}
		m.Biome[i] = snapshot.Label{Lat: pt.Lat, Lon: pt.Lon, V: string(f.biomes[i])}
	}
	if p.locIDs != nil {
		m.Location = make([]snapshot.Value, n)
		for i, pt := range f.points {
			m.Location[i] = snapshot.Value{Lat: pt.Lat, Lon: pt.Lon, V: float64(p.locIDs[i])}
		}
	}
	w.Maps = m
	return w, nil
}

// 文档注释：由持久化记录恢复
// 背景：无点场的记录返回待生成行星；有点场时以高程场的点顺序为 arena，其余点场按坐标对齐，不重新生成。
// 约束：任一点场缺点、多点或坐标不匹配返回 ErrCoverage；缺少水位/山地线同样视为不完整。
func FromSnapshot(doc snapshot.World) (*Planet, error) {
	p := New(doc.Generation.Generation)
	if doc.ID != nil {
		p.SetID(*doc.ID)
	}
	if doc.Maps.Empty() {
		return p, nil
	}
	m := doc.Maps
	lv, ok := doc.Generation.Levels()
	if !ok {
		return nil, fmt.Errorf("%w: missing water/mountain levels", snapshot.ErrCoverage)
	}

	n := len(m.Height)
	f := &fields{points: make([]geo.Point, n), height: make([]float64, n), levels: lv}
	at := make(map[geo.Point]int, n)
	for i, v := range m.Height {
		pt := geo.Point{Lat: v.Lat, Lon: v.Lon}
		if _, dup := at[pt]; dup {
			return nil, fmt.Errorf("%w: duplicate point (%v, %v)", snapshot.ErrCoverage, v.Lat, v.Lon)
		}
		at[pt] = i
		f.points[i] = pt
		f.height[i] = v.V
	}

	var err error
	if f.heat, err = align("heat_map", at, m.Heat); err != nil {
		return nil, err
	}
	if f.precip, err = align("precipitation_map", at, m.Precipitation); err != nil {
		return nil, err
	}
	plates, err := align("tectonic_map", at, m.Tectonic)
	if err != nil {
		return nil, err
	}
	f.plates = make([]int, n)
	for i, v := range plates {
		f.plates[i] = int(math.Round(v))
	}

	if len(m.Biome) != n {
		return nil, fmt.Errorf("%w: biome_map has %d of %d points", snapshot.ErrCoverage, len(m.Biome), n)
	}
	f.biomes = make([]biome.Biome, n)
	for _, l := range m.Biome {
		i, ok := at[geo.Point{Lat: l.Lat, Lon: l.Lon}]
		if !ok || f.biomes[i] != "" {
			return nil, fmt.Errorf("%w: biome_map point (%v, %v) not in height_map", snapshot.ErrCoverage, l.Lat, l.Lon)
		}
		f.biomes[i] = biome.Biome(l.V)
	}

	if len(m.Location) > 0 {
		ids, err := align("location_map", at, m.Location)
		if err != nil {
			return nil, err
		}
		p.locIDs = make([]int, n)
		p.byLoc = make(map[int]int, n)
		for i, v := range ids {
			id := int(math.Round(v))
			p.locIDs[i] = id
			p.byLoc[id] = i
		}
	}

	f.index = geo.NewIndex(f.points)
	p.f = f
	p.fp = fingerprint(p.gen)
	metrics.Points.Set(float64(n))
	logger.L().Info("planet_loaded", "seed", p.gen.SeedValue(), "points", n, "locations", len(p.locIDs))
	return p, nil
}

// align：按坐标把点场对齐到 arena 顺序
func align(name string, at map[geo.Point]int, vals []snapshot.Value) ([]float64, error) {
	if len(vals) != len(at) {
		return nil, fmt.Errorf("%w: %s has %d of %d points", snapshot.ErrCoverage, name, len(vals), len(at))
	}
	out := make([]float64, len(at))
	seen := make([]bool, len(at))
	for _, v := range vals {
		i, ok := at[geo.Point{Lat: v.Lat, Lon: v.Lon}]
		if !ok || seen[i] {
			return nil, fmt.Errorf("%w: %s point (%v, %v) does not match height_map", snapshot.ErrCoverage, name, v.Lat, v.Lon)
		}
		seen[i] = true
		out[i] = v.V
	}
	return out, nil
}
