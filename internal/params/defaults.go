package params

import "math"

// Default：完整的基线参数，文件只需覆盖差异字段
func Default() Generation {
	return Generation{
		Radius:    10,
		NoiseKind: "perlin",
		Tectonics: Tectonics{
			BigNumber:        7,
			SmallNumber:      10,
			SmallDelta:       0.08,
			SmallMaxDistance: 0.5,
			DistanceNoise:    Noise{Octaves: []int{1, 2}, Coefficients: []float64{2, 1}},
			BearingNoise:     Noise{Octaves: []int{1}, Coefficients: []float64{2 * math.Pi}},
			RelaxIterations:  100,
			RelaxStep:        0.01,
		},
		Height: Height{
			Noise:                 Noise{Octaves: []int{1, 2, 4}, Coefficients: []float64{1, 0.5, 0.25}},
			OceanicPlatesRatio:    0.6,
			OceanicPlateDelta:     -0.3,
			ContinentalPlateDelta: 0.3,
			MaxTectonicSpeed:      0.02,
			MountainWidth:         1.5,
			ConflictK:             0.8,
			OceanicConflictK:      0.3,
			MinHeight:             -1,
			MaxHeight:             1,
			WaterPercentage:       65,
			MountainPercentage:    8,
		},
		Temperature: Temperature{
			Noise:         Noise{Octaves: []int{1, 3}, Coefficients: []float64{1, 0.5}},
			NoiseRange:    Range{Min: -0.5, Max: 0.5},
			Delta:         0,
			RotationAngle: 0,
			TiltAngle:     0.41,
			MinTemp:       -80,
			MaxTemp:       50,
			AltitudeK:     60,
		},
		Precipitation: Precipitation{
			Noise:         Noise{Octaves: []int{1, 3}, Coefficients: []float64{1, 0.5}},
			NoiseRange:    Range{Min: -0.5, Max: 0.5},
			Delta:         0,
			RotationAngle: 0,
			TiltAngle:     0.41,
			Min:           0,
			Max:           100,
			IncreaseLevel: 0.1,
			WaterIncrease: 15,
			AltitudeK:     40,
		},
		Biome: Biome{
			ColdThreshold:      -60,
			TemperatureRange:   Range{Min: -100, Max: 100},
			PrecipitationRange: Range{Min: 0, Max: 100},
		},
	}
}
