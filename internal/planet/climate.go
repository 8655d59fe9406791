package planet

import (
	"context"
	"math"

	"neurosphere/internal/geo"
)

// 文档注释：有效纬度
// 背景：先绕 z 轴转 rotation（本初子午线偏移），再绕 x 轴转 tilt（自转轴倾角），取结果向量的纬度。
func effectiveLatitude(v geo.Vec3, rotation, tilt float64) float64 {
	y1 := math.Sin(rotation)*v[0] + math.Cos(rotation)*v[1]
	z2 := math.Sin(tilt)*y1 + math.Cos(tilt)*v[2]
	return math.Asin(geo.Clamp(z2, -1, 1))
}

// 文档注释：温度场
// 背景：噪声归一到 noise_range → 加日照项 cos(有效纬度)+delta 并归一 → 水位以上按海拔降温并再次归一。
// 约束：只读高程场，不改写高程；每次叠加后都归一到 [min_temp, max_temp]。
func (gr *generator) temperatureField(ctx context.Context) error {
	tp := gr.gen.Temperature
	pts := gr.f.points
	height := gr.f.height
	mustCover("temperature", len(pts), len(height))
	water := gr.f.levels.Water

	heat, err := gr.noiseField(ctx, seedTemperature, tp.Noise, nil)
	if err != nil {
		return err
	}
	normalize(heat, tp.NoiseRange.Min, tp.NoiseRange.Max)

	if err := forEach(ctx, gr.workers, len(pts), func(i int) {
		lat := effectiveLatitude(pts[i].Cartesian(), tp.RotationAngle, tp.TiltAngle)
		heat[i] += math.Cos(lat) + tp.Delta
	}); err != nil {
		return err
	}
	normalize(heat, tp.MinTemp, tp.MaxTemp)

	for i, h := range height {
		if h > water {
			heat[i] -= (h - water) * tp.AltitudeK
		}
	}
	normalize(heat, tp.MinTemp, tp.MaxTemp)

	gr.f.heat = heat
	return nil
}

// 文档注释：降水场
// 背景：噪声 + cos²((4·有效纬度+π)/2)，形成赤道/温带湿润带与副热带干旱带；
// 水位之上 increase_level 范围内的近岸带获得固定增量，更高处按海拔递减。
// 约束：每次叠加后归一到 [min_precipitation, max_precipitation]。
func (gr *generator) precipitationField(ctx context.Context) error {
	pr := gr.gen.Precipitation
	pts := gr.f.points
	height := gr.f.height
	mustCover("precipitation", len(pts), len(height))
	water := gr.f.levels.Water

	precip, err := gr.noiseField(ctx, seedPrecipitation, pr.Noise, nil)
	if err != nil {
		return err
	}
	normalize(precip, pr.NoiseRange.Min, pr.NoiseRange.Max)

	if err := forEach(ctx, gr.workers, len(pts), func(i int) {
		lat := effectiveLatitude(pts[i].Cartesian(), pr.RotationAngle, pr.TiltAngle)
		c := math.Cos((4*lat + math.Pi) / 2)
		precip[i] += c*c + pr.Delta
	}); err != nil {
		return err
	}
	normalize(precip, pr.Min, pr.Max)

	for i, h := range height {
		switch {
		case h > water && h < water+pr.IncreaseLevel:
			precip[i] += pr.WaterIncrease
		case h > water:
			precip[i] -= (h - water) * pr.AltitudeK
		}
	}
	normalize(precip, pr.Min, pr.Max)

	gr.f.precip = precip
	return nil
}
