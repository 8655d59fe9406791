package planet

import (
	"context"
	"fmt"
	"math"

	"neurosphere/internal/geo"
	"neurosphere/internal/logger"
)

const relaxMinDist = 1e-6

// 文档注释：板块划分（两级近似 Voronoi）
// 背景：
// 1) 距离噪声与方位噪声把每个点沿大圆挪到一个查询点，使板块边界呈不规则形状；
// 2) 大板块中心经排斥松弛后建索引，查询点到最近两个中心的距离差小于 small_delta 的点暂缓；
// 3) 从暂缓点中选小板块中心，暂缓点取最近的小板块（id 偏移 big），过远时退回最近大板块。
// 约束：每个点最终恰有一个 [0, big+small) 内的板块 id。
func (gr *generator) tectonics(ctx context.Context) error {
	t := gr.gen.Tectonics
	pts := gr.f.points
	n := len(pts)

	dist, err := gr.noiseField(ctx, seedDistance, t.DistanceNoise, nil)
	if err != nil {
		return err
	}
	bearing, err := gr.noiseField(ctx, seedBearing, t.BearingNoise, nil)
	if err != nil {
		return err
	}
	query := make([]geo.Point, n)
	if err := forEach(ctx, gr.workers, n, func(i int) {
		query[i] = geo.Move(pts[i], bearing[i], dist[i]/gr.gen.Radius)
	}); err != nil {
		return err
	}

	perm := gr.rng.Perm(n)
	bigSeeds := make([]geo.Point, t.BigNumber)
	for i := range bigSeeds {
		bigSeeds[i] = pts[perm[i]]
	}
	bigSeeds, err = relax(ctx, gr.workers, bigSeeds, t.RelaxIterations, t.RelaxStep)
	if err != nil {
		return err
	}
	bigIdx := geo.NewIndex(bigSeeds)

	plates := make([]int, n)
	deferred := make([]bool, n)
	if err := forEach(ctx, gr.workers, n, func(i int) {
		nb := bigIdx.Nearest(query[i], 2)
		plates[i] = nb[0].Index
		if t.SmallNumber > 0 && len(nb) == 2 && math.Abs(nb[0].Dist-nb[1].Dist) < t.SmallDelta {
			deferred[i] = true
			plates[i] = -1
		}
	}); err != nil {
		return err
	}

	var pending []int
	for i, d := range deferred {
		if d {
			pending = append(pending, i)
		}
	}
	small := t.SmallNumber
	if small > len(pending) {
		small = len(pending)
	}
	logger.L().Info("tectonics_deferred", "deferred", len(pending), "small_plates", small, "requested", t.SmallNumber)
	if small < t.SmallNumber {
		logger.L().Warn("tectonics_small_plates_short", "requested", t.SmallNumber, "available", small)
	}

	if small > 0 {
		sp := gr.rng.Perm(len(pending))
		smallSeeds := make([]geo.Point, small)
		for i := range smallSeeds {
			smallSeeds[i] = pts[pending[sp[i]]]
		}
		smallIdx := geo.NewIndex(smallSeeds)
		if err := forEach(ctx, gr.workers, len(pending), func(k int) {
			i := pending[k]
			nb := smallIdx.Nearest(query[i], 1)[0]
			if nb.Dist > t.SmallMaxDistance {
				plates[i] = bigIdx.Nearest(query[i], 1)[0].Index
				return
			}
			plates[i] = t.BigNumber + nb.Index
		}); err != nil {
			return err
		}
	}

	mustCover("tectonics", n, len(plates))
	for i, id := range plates {
		if id < 0 {
			panic(fmt.Sprintf("planet: tectonics: point %d left without a plate", i))
		}
	}
	gr.f.plates = plates
	return nil
}

// 文档注释：排斥松弛
// 背景：每轮按当前位置计算两两排斥力 diff/(|diff|+ε)^3，整体推进一步后重新归一到单位球。
// 约束：轮与轮之间严格串行；单轮内的受力累加按点并行，只读上一轮坐标。
func relax(ctx context.Context, workers int, seeds []geo.Point, iterations int, step float64) ([]geo.Point, error) {
	n := len(seeds)
	coords := make([]geo.Vec3, n)
	for i, s := range seeds {
		coords[i] = s.Cartesian()
	}
	forces := make([]geo.Vec3, n)
	for it := 0; it < iterations; it++ {
		if err := forEach(ctx, workers, n, func(i int) {
			var f geo.Vec3
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				diff := coords[i].Sub(coords[j])
				d := diff.Norm() + relaxMinDist
				f = f.Add(diff.Scale(1 / (d * d * d)))
			}
			forces[i] = f
		}); err != nil {
			return nil, err
		}
		for i := range coords {
			coords[i] = coords[i].Add(forces[i].Scale(step)).Unit()
		}
	}
	out := make([]geo.Point, n)
	for i, c := range coords {
		out[i] = geo.FromCartesian(c)
	}
	return out, nil
}
