package planet

import (
	"context"
	"sort"

	"neurosphere/internal/biome"
	"neurosphere/internal/logger"
)

func (gr *generator) biomeField(ctx context.Context) error {
	f := gr.f
	n := len(f.points)
	mustCover("biome", n, len(f.height), len(f.heat), len(f.precip))
	cls := biome.NewClassifier(gr.gen.Biome, f.levels)
	out := make([]biome.Biome, n)
	if err := forEach(ctx, gr.workers, n, func(i int) {
		out[i] = cls.Classify(f.height[i], f.heat[i], f.precip[i])
	}); err != nil {
		return err
	}
	f.biomes = out
	return nil
}

// Statistics：生成结果摘要
type Statistics struct {
	Seed               int64          `json:"seed"`
	Points             int            `json:"points"`
	Plates             int            `json:"plates"`
	WaterLevel         float64        `json:"water_level"`
	MountainLevel      float64        `json:"mountain_level"`
	AvgTemperature     float64        `json:"avg_temperature"`
	AvgLandTemperature float64        `json:"avg_land_temperature"`
	LandPoints         int            `json:"land_points"`
	Biomes             map[string]int `json:"biomes"`
}

// 文档注释：统计
// 背景：平均温度（全体与水位以上）与群系直方图；陆地为空时陆地均温为 0。
func (p *Planet) Statistics() (Statistics, error) {
	f, err := p.ready()
	if err != nil {
		return Statistics{}, err
	}
	p.mu.RLock()
	seed := p.gen.SeedValue()
	plates := p.gen.TotalPlates()
	p.mu.RUnlock()

	s := Statistics{
		Seed:          seed,
		Points:        len(f.points),
		Plates:        plates,
		WaterLevel:    f.levels.Water,
		MountainLevel: f.levels.Mountain,
		Biomes:        make(map[string]int),
	}
	var sum, land float64
	for i, t := range f.heat {
		sum += t
		if f.height[i] > f.levels.Water {
			land += t
			s.LandPoints++
		}
		s.Biomes[string(f.biomes[i])]++
	}
	if len(f.heat) > 0 {
		s.AvgTemperature = sum / float64(len(f.heat))
	}
	if s.LandPoints > 0 {
		s.AvgLandTemperature = land / float64(s.LandPoints)
	}
	return s, nil
}

// BiomeNames：直方图中出现的群系，按数量降序（同数量按名称）
func (s Statistics) BiomeNames() []string {
	names := make([]string, 0, len(s.Biomes))
	for b := range s.Biomes {
		names = append(names, b)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.Biomes[names[i]] != s.Biomes[names[j]] {
			return s.Biomes[names[i]] > s.Biomes[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// LogStatistics：以结构化事件输出统计
func (p *Planet) LogStatistics() {
	s, err := p.Statistics()
	if err != nil {
		return
	}
	logger.L().Info("planet_statistics",
		"avg_temperature", s.AvgTemperature,
		"avg_land_temperature", s.AvgLandTemperature,
		"land_points", s.LandPoints,
		"points", s.Points,
	)
}
