package params

import (
	"errors"
	"fmt"

	"neurosphere/internal/geo"
	"neurosphere/internal/noise"
)

// ErrInvalidParameter：参数记录不合法，整个生成调用在计算任何点场前失败
var ErrInvalidParameter = errors.New("invalid generation parameter")

func invalid(field, format string, a ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameter, field, fmt.Sprintf(format, a...))
}

// 文档注释：参数校验
// 约束：半径为正且至少采样出与大板块数相当的点；噪声列表非空等长；百分位在 [0,100]；各区间 min<max。
func Validate(g Generation) error {
	if g.Radius <= 0 {
		return invalid("radius", "must be positive, got %v", g.Radius)
	}
	n := geo.SampleCount(g.Radius)
	if n <= 0 {
		return invalid("radius", "%v samples no points", g.Radius)
	}
	switch noise.Kind(g.NoiseKind) {
	case "", noise.KindPerlin, noise.KindSimplex:
	default:
		return invalid("noise_kind", "unknown kind %q", g.NoiseKind)
	}
	if g.Workers < 0 {
		return invalid("workers", "must be >= 0, got %d", g.Workers)
	}

	t := g.Tectonics
	if t.BigNumber < 1 {
		return invalid("tectonics.big_tectonics_number", "must be >= 1, got %d", t.BigNumber)
	}
	if t.BigNumber > n {
		return invalid("tectonics.big_tectonics_number", "%d plates exceed %d points", t.BigNumber, n)
	}
	if t.SmallNumber < 0 {
		return invalid("tectonics.small_tectonics_number", "must be >= 0, got %d", t.SmallNumber)
	}
	if t.SmallDelta < 0 || t.SmallMaxDistance < 0 {
		return invalid("tectonics", "small plate delta and max distance must be >= 0")
	}
	if t.RelaxIterations < 0 || t.RelaxStep < 0 {
		return invalid("tectonics", "relaxation iterations and step must be >= 0")
	}
	if err := checkNoise("tectonics.distance_noise", t.DistanceNoise); err != nil {
		return err
	}
	if err := checkNoise("tectonics.bearing_noise", t.BearingNoise); err != nil {
		return err
	}

	h := g.Height
	if err := checkNoise("height.noise", h.Noise); err != nil {
		return err
	}
	if h.OceanicPlatesRatio < 0 || h.OceanicPlatesRatio > 1 {
		return invalid("height.oceanic_plates_ratio", "must be in [0,1], got %v", h.OceanicPlatesRatio)
	}
	if h.MaxTectonicSpeed <= 0 {
		return invalid("height.max_tectonic_speed", "must be positive, got %v", h.MaxTectonicSpeed)
	}
	if h.MountainWidth < 0 {
		return invalid("height.mountain_width_in_units", "must be >= 0, got %v", h.MountainWidth)
	}
	if err := checkRange("height", h.MinHeight, h.MaxHeight); err != nil {
		return err
	}
	if err := checkPercent("height.water_percentage", h.WaterPercentage); err != nil {
		return err
	}
	if err := checkPercent("height.mountain_percentage", h.MountainPercentage); err != nil {
		return err
	}
	if h.WaterPercentage+h.MountainPercentage > 100 {
		return invalid("height", "water %v%% and mountain %v%% overlap", h.WaterPercentage, h.MountainPercentage)
	}

	tp := g.Temperature
	if err := checkNoise("temperature.noise", tp.Noise); err != nil {
		return err
	}
	if err := checkRange("temperature.noise_range", tp.NoiseRange.Min, tp.NoiseRange.Max); err != nil {
		return err
	}
	if err := checkRange("temperature", tp.MinTemp, tp.MaxTemp); err != nil {
		return err
	}

	pr := g.Precipitation
	if err := checkNoise("precipitation.noise", pr.Noise); err != nil {
		return err
	}
	if err := checkRange("precipitation.noise_range", pr.NoiseRange.Min, pr.NoiseRange.Max); err != nil {
		return err
	}
	if err := checkRange("precipitation", pr.Min, pr.Max); err != nil {
		return err
	}
	if pr.IncreaseLevel < 0 {
		return invalid("precipitation.precipitation_increase_level", "must be >= 0, got %v", pr.IncreaseLevel)
	}

	b := g.Biome
	if err := checkRange("biome.temperature_range", b.TemperatureRange.Min, b.TemperatureRange.Max); err != nil {
		return err
	}
	return checkRange("biome.precipitation_range", b.PrecipitationRange.Min, b.PrecipitationRange.Max)
}

func checkNoise(field string, n Noise) error {
	if len(n.Octaves) == 0 {
		return invalid(field, "octaves must not be empty")
	}
	if len(n.Octaves) != len(n.Coefficients) {
		return invalid(field, "%d octaves but %d coefficients", len(n.Octaves), len(n.Coefficients))
	}
	for i, o := range n.Octaves {
		if o < 1 {
			return invalid(field, "octave[%d]=%d must be >= 1", i, o)
		}
	}
	return nil
}

func checkRange(field string, lo, hi float64) error {
	if !(lo < hi) {
		return invalid(field, "min %v must be below max %v", lo, hi)
	}
	return nil
}

func checkPercent(field string, v float64) error {
	if v < 0 || v > 100 {
		return invalid(field, "must be in [0,100], got %v", v)
	}
	return nil
}
