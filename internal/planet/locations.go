package planet

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"neurosphere/internal/geo"
	"neurosphere/internal/logger"
	"neurosphere/internal/params"
	"neurosphere/internal/world"
)

// 文档注释：物化地点
// 背景：每个点一个地点，id 由共享持有器分配；加载的行星已带 id，只登记不重新分配。
// 约束：建立点 ↔ 地点 id 双向映射；重复调用对同一持有器是幂等的。
func (p *Planet) GenerateLocations(h *world.Holder) error {
	f, err := p.ready()
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.locIDs != nil {
		for i, id := range p.locIDs {
			if _, ok := h.Get(id); ok {
				continue
			}
			if err := h.Put(&world.Location{ID: id, WorldID: p.id, Biome: string(f.biomes[i])}); err != nil {
				return err
			}
		}
		return nil
	}

	ids := make([]int, len(f.points))
	byLoc := make(map[int]int, len(f.points))
	for i := range f.points {
		l := h.Create(p.id, string(f.biomes[i]))
		ids[i] = l.ID
		byLoc[l.ID] = i
	}
	p.locIDs = ids
	p.byLoc = byLoc
	logger.L().Info("locations_generated", "world_id", p.id, "locations", len(ids), "first_id", ids[0])
	return nil
}

// LocationIDs：按点下标排列的地点 id
func (p *Planet) LocationIDs() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]int(nil), p.locIDs...)
}

// pointOf：地点 id → 点下标
func (p *Planet) pointOf(locationID int) (*fields, int, error) {
	f, err := p.ready()
	if err != nil {
		return nil, 0, err
	}
	p.mu.RLock()
	i, ok := p.byLoc[locationID]
	p.mu.RUnlock()
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownLocation, locationID)
	}
	return f, i, nil
}

// 文档注释：地点描述
// 返回：群系展示名 + 纬度/经度（度，经度在 [-180,180)）
func (p *Planet) Describe(locationID int) (string, error) {
	f, i, err := p.pointOf(locationID)
	if err != nil {
		return "", err
	}
	lat, lon := f.points[i].Degrees()
	return fmt.Sprintf("Biome: %s\nLatitude: %.3f, longitude: %.3f\n", f.biomes[i].DisplayName(), lat, lon), nil
}

// 文档注释：可达地点
// 背景：以地点所在点为圆心做大圆半径查询，结果经点 ↔ id 映射转换。
// 约束：不含自身；distance 为弧度，负数与 NaN 视为非法参数；结果升序。
func (p *Planet) Reachable(locationID int, distance float64) ([]int, error) {
	f, i, err := p.pointOf(locationID)
	if err != nil {
		return nil, err
	}
	if distance < 0 || math.IsNaN(distance) {
		return nil, fmt.Errorf("%w: distance must be >= 0, got %v", params.ErrInvalidParameter, distance)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []int
	for _, j := range f.index.Within(f.points[i], distance) {
		if j == i {
			continue
		}
		out = append(out, p.locIDs[j])
	}
	sort.Ints(out)
	return out, nil
}

// Neighbours：可达地点附带八方位与大圆距离，按距离升序
func (p *Planet) Neighbours(locationID int, distance float64) ([]world.Neighbour, error) {
	ids, err := p.Reachable(locationID, distance)
	if err != nil {
		return nil, err
	}
	f, i, _ := p.pointOf(locationID)
	from := f.points[i]
	out := make([]world.Neighbour, 0, len(ids))
	p.mu.RLock()
	for _, id := range ids {
		to := f.points[p.byLoc[id]]
		out = append(out, world.Neighbour{
			LocationID: id,
			Direction:  geo.Compass(geo.Bearing(from, to)),
			Distance:   geo.Haversine(from, to),
		})
	}
	p.mu.RUnlock()
	sort.SliceStable(out, func(a, b int) bool { return out[a].Distance < out[b].Distance })
	return out, nil
}

// 文档注释：放置角色
// 背景：以 种子+角色 id 为随机源，在非海洋、非冰川地点中选一个；整个行星没有陆地时退回任意地点。
// 约束：需先物化地点；同一行星与角色 id 的结果恒定。
func (p *Planet) GenerateCharacter(c *world.Character) error {
	f, err := p.ready()
	if err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.locIDs == nil {
		return fmt.Errorf("%w: locations not generated", ErrNotReady)
	}
	var land []int
	for i, b := range f.biomes {
		if b.IsLand() {
			land = append(land, i)
		}
	}
	rng := rand.New(rand.NewSource(p.gen.SeedValue() + int64(c.ID)))
	var i int
	if len(land) > 0 {
		i = land[rng.Intn(len(land))]
	} else {
		i = rng.Intn(len(f.points))
	}
	c.WorldID = p.id
	c.LocationID = p.locIDs[i]
	logger.L().Debug("character_placed", "character_id", c.ID, "world_id", p.id, "location_id", c.LocationID, "biome", string(f.biomes[i]))
	return nil
}
