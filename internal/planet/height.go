package planet

import (
	"context"
	"math"

	"neurosphere/internal/geo"
	"neurosphere/internal/logger"
	"neurosphere/internal/params"
)

// conflictEps：球面三角形退化时分母阈值，低于它夹角按 0 处理
const conflictEps = 1e-10

// 文档注释：高程场
// 背景：
// 1) 每个板块随机平移噪声采样位置，得到分板块的底噪并归一到 [0,1]；
// 2) 按比例抽取大洋板块，大洋点加负偏移、大陆点加正偏移；
// 3) 每个点在 mountain_width/R 范围内寻找异板块邻点，按两板块运动矢量的冲突量抬升或压低；
// 4) 归一到 [min_height, max_height] 后由实际分布取水位与山地线百分位。
// 约束：随机数消耗顺序固定（平移 → 大洋抽取 → 运动矢量），同种子结果一致。
func (gr *generator) heightField(ctx context.Context) error {
	h := gr.gen.Height
	plates := gr.f.plates
	total := gr.gen.TotalPlates()
	mustCover("height", len(gr.f.points), len(plates))

	shifts := make([]geo.Vec3, total)
	for i := range shifts {
		shifts[i] = geo.Vec3{
			(gr.rng.Float64() - 0.5) * 2,
			(gr.rng.Float64() - 0.5) * 2,
			(gr.rng.Float64() - 0.5) * 2,
		}
	}
	height, err := gr.noiseField(ctx, seedHeight, h.Noise, func(i int) geo.Vec3 { return shifts[plates[i]] })
	if err != nil {
		return err
	}
	normalize(height, 0, 1)

	oceanic := make([]bool, total)
	order := gr.rng.Perm(total)
	count := int(math.Round(float64(total) * h.OceanicPlatesRatio))
	for _, id := range order[:count] {
		oceanic[id] = true
	}
	for i, id := range plates {
		if oceanic[id] {
			height[i] += h.OceanicPlateDelta
		} else {
			height[i] += h.ContinentalPlateDelta
		}
	}

	motions := make([]Motion, total)
	for i := range motions {
		motions[i] = Motion{
			Bearing: gr.rng.Float64() * 2 * math.Pi,
			Speed:   gr.rng.Float64() * h.MaxTectonicSpeed,
		}
	}

	delta, err := gr.conflict(ctx, plates, oceanic, motions)
	if err != nil {
		return err
	}
	for i := range height {
		height[i] += delta[i]
	}

	normalize(height, h.MinHeight, h.MaxHeight)
	lv := params.Levels{
		Water:    percentile(height, h.WaterPercentage),
		Mountain: percentile(height, 100-h.MountainPercentage),
	}
	logger.L().Info("levels_computed",
		"water_level", lv.Water,
		"mountain_level", lv.Mountain,
		"oceanic_plates", count,
		"plates", total,
	)

	gr.f.height = height
	gr.f.oceanic = oceanic
	gr.f.motions = motions
	gr.f.levels = lv
	return nil
}

// 文档注释：板块边界冲突
// 背景：点 A 与异板块邻点 C 各自沿本板块运动矢量移动一步得 B、D，冲突量为 AB 与 CD 在 AC 方向上的投影之和。
// 约束：每个点只累加自身一侧的贡献（A 看 C 写入 A，C 看 A 写入 C）；同板块与自身跳过。
func (gr *generator) conflict(ctx context.Context, plates []int, oceanic []bool, motions []Motion) ([]float64, error) {
	h := gr.gen.Height
	pts := gr.f.points
	width := h.MountainWidth / gr.gen.Radius
	out := make([]float64, len(pts))
	err := forEach(ctx, gr.workers, len(pts), func(i int) {
		pa := plates[i]
		a := pts[i]
		b := geo.Move(a, motions[pa].Bearing, motions[pa].Speed)
		sum := 0.0
		for _, j := range gr.f.index.Within(a, width) {
			if j == i {
				continue
			}
			pc := plates[j]
			if pc == pa {
				continue
			}
			c := pts[j]
			d := geo.Move(c, motions[pc].Bearing, motions[pc].Speed)
			k := h.ConflictK
			if oceanic[pa] && oceanic[pc] {
				k = h.OceanicConflictK
			}
			sum += vectorConflict(a, b, c, d) / (2 * h.MaxTectonicSpeed) * k
		}
		out[i] = sum
	})
	return out, err
}

// 文档注释：两运动矢量的冲突量
// 背景：由球面余弦定理求 ∠BAC 与 ∠DCA，结果为 cos(∠A)·|AB| + cos(∠C)·|CD|；
// 相向运动为正（造山），背向为负（裂谷）。
// 约束：acos 输入截断到 [-1,1]；分母接近 0（重合或对跖）时夹角取 0。
func vectorConflict(a, b, c, d geo.Point) float64 {
	dab := geo.Haversine(a, b)
	dac := geo.Haversine(a, c)
	dbc := geo.Haversine(b, c)
	angleA := sphericalAngle(dac, dab, dbc)

	dcd := geo.Haversine(c, d)
	dad := geo.Haversine(a, d)
	angleC := sphericalAngle(dac, dcd, dad)

	return math.Cos(angleA)*dab + math.Cos(angleC)*dcd
}

// sphericalAngle：已知两邻边 x、y 与对边 opp，求夹角
func sphericalAngle(x, y, opp float64) float64 {
	den := math.Sin(x) * math.Sin(y)
	if math.Abs(den) < conflictEps {
		return 0
	}
	return math.Acos(geo.Clamp((math.Cos(opp)-math.Cos(x)*math.Cos(y))/den, -1, 1))
}
