package planet

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"neurosphere/internal/geo"
	"neurosphere/internal/logger"
	"neurosphere/internal/metrics"
	"neurosphere/internal/noise"
	"neurosphere/internal/params"
)

// 各点场噪声的种子偏移，保证同一种子下各场互不相关
const (
	seedHeight int64 = iota
	seedDistance
	seedBearing
	seedTemperature
	seedPrecipitation
)

// generator：一次生成的工作状态，只在 Generate 内部存活
type generator struct {
	gen     params.Generation
	seed    int64
	rng     *rand.Rand
	workers int
	f       *fields
}

// 文档注释：生成行星
// 背景：校验参数 → 补全种子 → 采样与建索引 → 板块 → 高程 → 温度 → 降水 → 群系，顺序固定。
// 约束：任一阶段失败或 ctx 取消都不发布点场；已生成的行星再次调用直接返回 nil。
func (p *Planet) Generate(ctx context.Context) error {
	p.mu.RLock()
	done := p.f != nil
	g := p.gen.Clone()
	p.mu.RUnlock()
	if done {
		return nil
	}
	if err := params.Validate(g); err != nil {
		metrics.GenerationsTotal.WithLabelValues("invalid").Inc()
		return err
	}
	g = params.WithSeed(g)
	seed := g.SeedValue()
	logger.L().Info("planet_seed", "seed", seed, "radius", g.Radius)

	start := time.Now()
	gr := &generator{gen: g, seed: seed, rng: rand.New(rand.NewSource(seed)), workers: g.Workers}
	f, err := gr.run(ctx)
	if err != nil {
		status := "error"
		if ctx.Err() != nil {
			status = "canceled"
		}
		metrics.GenerationsTotal.WithLabelValues(status).Inc()
		logger.L().Warn("planet_generation_failed", "seed", seed, "err", err)
		return err
	}

	fp := fingerprint(g)
	p.mu.Lock()
	p.gen = g
	p.f = f
	p.fp = fp
	p.mu.Unlock()

	metrics.GenerationsTotal.WithLabelValues("ok").Inc()
	metrics.Points.Set(float64(len(f.points)))
	logger.L().Info("planet_ready",
		"seed", seed,
		"points", len(f.points),
		"water_level", f.levels.Water,
		"mountain_level", f.levels.Mountain,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

type stage struct {
	name string
	fn   func(ctx context.Context) error
}

func (gr *generator) run(ctx context.Context) (*fields, error) {
	gr.f = &fields{}
	stages := []stage{
		{"sphere", gr.sample},
		{"tectonics", gr.tectonics},
		{"height", gr.heightField},
		{"temperature", gr.temperatureField},
		{"precipitation", gr.precipitationField},
		{"biome", gr.biomeField},
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st := logger.StartStage(logger.L(), s.name)
		if err := s.fn(ctx); err != nil {
			return nil, fmt.Errorf("planet: %s: %w", s.name, err)
		}
		metrics.ObserveStage(s.name, st.Done("points", len(gr.f.points)))
	}
	return gr.f, nil
}

func (gr *generator) sample(context.Context) error {
	pts, err := geo.SampleRadius(gr.gen.Radius)
	if err != nil {
		return err
	}
	gr.f.points = pts
	gr.f.index = geo.NewIndex(pts)
	return nil
}

// noiseField：在每个点（可选按点平移）处求值
func (gr *generator) noiseField(ctx context.Context, offset int64, n params.Noise, shift func(i int) geo.Vec3) ([]float64, error) {
	field, err := noise.New(noise.Kind(gr.gen.NoiseKind), gr.seed+offset, n.Octaves, n.Coefficients)
	if err != nil {
		return nil, err
	}
	pts := gr.f.points
	out := make([]float64, len(pts))
	err = forEach(ctx, gr.workers, len(pts), func(i int) {
		v := pts[i].Cartesian()
		if shift != nil {
			v = v.Add(shift(i))
		}
		out[i] = field.At(v)
	})
	return out, err
}
