// 包 params：行星生成参数记录（只读输入），负责默认值、文件加载、校验与种子补全
package params

// 文档注释：生成参数
// 背景：同一参数 + 同一种子 ⇒ 所有点场逐位一致；这是一次确定性生成的唯一输入。
// 约束：生成过程中不修改；缺省种子由 WithSeed 补全后回报调用方。
type Generation struct {
	Radius        float64       `yaml:"radius" json:"radius"`
	Seed          *int64        `yaml:"seed" json:"seed"`
	NoiseKind     string        `yaml:"noise_kind" json:"noise_kind"`
	Workers       int           `yaml:"workers" json:"workers,omitempty"`
	Tectonics     Tectonics     `yaml:"tectonics" json:"tectonics"`
	Height        Height        `yaml:"height" json:"height"`
	Temperature   Temperature   `yaml:"temperature" json:"temperature"`
	Precipitation Precipitation `yaml:"precipitation" json:"precipitation"`
	Biome         Biome         `yaml:"biome" json:"biome"`
}

// Noise：多层噪声（每层倍频数与系数）
type Noise struct {
	Octaves      []int     `yaml:"octaves" json:"octaves"`
	Coefficients []float64 `yaml:"coefficients" json:"coefficients"`
}

// Range：闭区间
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

type Tectonics struct {
	BigNumber        int     `yaml:"big_tectonics_number" json:"big_tectonics_number"`
	SmallNumber      int     `yaml:"small_tectonics_number" json:"small_tectonics_number"`
	SmallDelta       float64 `yaml:"small_tectonics_delta" json:"small_tectonics_delta"`
	SmallMaxDistance float64 `yaml:"small_tectonics_max_distance" json:"small_tectonics_max_distance"`
	DistanceNoise    Noise   `yaml:"distance_noise" json:"distance_noise"`
	BearingNoise     Noise   `yaml:"bearing_noise" json:"bearing_noise"`
	RelaxIterations  int     `yaml:"relax_iterations" json:"relax_iterations"`
	RelaxStep        float64 `yaml:"relax_step" json:"relax_step"`
}

type Height struct {
	Noise                 Noise   `yaml:"noise" json:"noise"`
	OceanicPlatesRatio    float64 `yaml:"oceanic_plates_ratio" json:"oceanic_plates_ratio"`
	OceanicPlateDelta     float64 `yaml:"oceanic_plate_height_delta" json:"oceanic_plate_height_delta"`
	ContinentalPlateDelta float64 `yaml:"continental_plate_height_delta" json:"continental_plate_height_delta"`
	MaxTectonicSpeed      float64 `yaml:"max_tectonic_speed" json:"max_tectonic_speed"`
	MountainWidth         float64 `yaml:"mountain_width_in_units" json:"mountain_width_in_units"`
	ConflictK             float64 `yaml:"tectonic_conflict_coefficient" json:"tectonic_conflict_coefficient"`
	OceanicConflictK      float64 `yaml:"oceanic_tectonic_conflict_coefficient" json:"oceanic_tectonic_conflict_coefficient"`
	MinHeight             float64 `yaml:"min_height" json:"min_height"`
	MaxHeight             float64 `yaml:"max_height" json:"max_height"`
	WaterPercentage       float64 `yaml:"water_percentage" json:"water_percentage"`
	MountainPercentage    float64 `yaml:"mountain_percentage" json:"mountain_percentage"`
}

type Temperature struct {
	Noise         Noise   `yaml:"noise" json:"noise"`
	NoiseRange    Range   `yaml:"noise_range" json:"noise_range"`
	Delta         float64 `yaml:"heat_delta" json:"heat_delta"`
	RotationAngle float64 `yaml:"rotation_angle" json:"rotation_angle"`
	TiltAngle     float64 `yaml:"tilt_angle" json:"tilt_angle"`
	MinTemp       float64 `yaml:"min_temp" json:"min_temp"`
	MaxTemp       float64 `yaml:"max_temp" json:"max_temp"`
	AltitudeK     float64 `yaml:"altitude_heat_k" json:"altitude_heat_k"`
}

type Precipitation struct {
	Noise         Noise   `yaml:"noise" json:"noise"`
	NoiseRange    Range   `yaml:"noise_range" json:"noise_range"`
	Delta         float64 `yaml:"precipitation_delta" json:"precipitation_delta"`
	RotationAngle float64 `yaml:"rotation_angle" json:"rotation_angle"`
	TiltAngle     float64 `yaml:"tilt_angle" json:"tilt_angle"`
	Min           float64 `yaml:"min_precipitation" json:"min_precipitation"`
	Max           float64 `yaml:"max_precipitation" json:"max_precipitation"`
	IncreaseLevel float64 `yaml:"precipitation_increase_level" json:"precipitation_increase_level"`
	WaterIncrease float64 `yaml:"water_precipitation_increase" json:"water_precipitation_increase"`
	AltitudeK     float64 `yaml:"altitude_precipitation_k" json:"altitude_precipitation_k"`
}

// 文档注释：生物群系查表参数
// 约束：查表区间与温度/降水配置边界相互独立；越界的分箱下标截断而非报错。
type Biome struct {
	ColdThreshold      float64 `yaml:"cold_threshold" json:"cold_threshold"`
	TemperatureRange   Range   `yaml:"temperature_range" json:"temperature_range"`
	PrecipitationRange Range   `yaml:"precipitation_range" json:"precipitation_range"`
}

// Levels：由实际高程分布得出的水位与山地阈值，回写供气候与群系阶段复用
type Levels struct {
	Water    float64 `json:"water_level"`
	Mountain float64 `json:"mountain_level"`
}

// TotalPlates：大板块 + 小板块
func (g Generation) TotalPlates() int { return g.Tectonics.BigNumber + g.Tectonics.SmallNumber }

// SeedValue：已补全的种子；未补全时返回 0
func (g Generation) SeedValue() int64 {
	if g.Seed == nil {
		return 0
	}
	return *g.Seed
}

// Clone：深拷贝，避免切片字段在调用方与生成器之间共享
func (g Generation) Clone() Generation {
	out := g
	if g.Seed != nil {
		s := *g.Seed
		out.Seed = &s
	}
	out.Tectonics.DistanceNoise = g.Tectonics.DistanceNoise.clone()
	out.Tectonics.BearingNoise = g.Tectonics.BearingNoise.clone()
	out.Height.Noise = g.Height.Noise.clone()
	out.Temperature.Noise = g.Temperature.Noise.clone()
	out.Precipitation.Noise = g.Precipitation.Noise.clone()
	return out
}

func (n Noise) clone() Noise {
	return Noise{
		Octaves:      append([]int(nil), n.Octaves...),
		Coefficients: append([]float64(nil), n.Coefficients...),
	}
}
