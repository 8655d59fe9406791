// 包 biome：按 (高程, 温度, 降水) 判定生物群系标签；查表数据与判定逻辑分离
package biome

import (
	"fmt"
	"math"
	"strings"

	"neurosphere/internal/params"
)

// Biome：群系标签（持久化与查询均使用该字符串）
type Biome string

const (
	Marine                 Biome = "marine"
	Desert                 Biome = "desert"
	Savanna                Biome = "savanna"
	Polar                  Biome = "polar"
	Tundra                 Biome = "tundra"
	Taiga                  Biome = "taiga"
	Plains                 Biome = "plains"
	SeasonalForest         Biome = "seasonal_forest"
	TemperateRainforest    Biome = "temperate_rainforest"
	Swamp                  Biome = "swamp"
	Steppe                 Biome = "steppe"
	TropicalDesert         Biome = "tropical_desert"
	TropicalSeasonalForest Biome = "tropical_seasonal_forest"
	TropicalRainforest     Biome = "tropical_rainforest"
	Glacier                Biome = "glacier"
	Mountain               Biome = "mountain"
	SnowyMountain          Biome = "snowy_mountain"
)

var names = map[Biome]string{
	Marine:                 "Marine",
	Desert:                 "Desert",
	Savanna:                "Savanna",
	Polar:                  "Polar",
	Tundra:                 "Tundra",
	Taiga:                  "Taiga",
	Plains:                 "Plains",
	SeasonalForest:         "Seasonal forest",
	TemperateRainforest:    "Temperate rainforest",
	Swamp:                  "Swamp",
	Steppe:                 "Steppe",
	TropicalDesert:         "Tropical desert",
	TropicalSeasonalForest: "Tropical seasonal forest",
	TropicalRainforest:     "Tropical rainforest",
	Glacier:                "Glacier",
	Mountain:               "Mountain",
	SnowyMountain:          "Snowy Mountain",
}

// DisplayName：对外展示名；未知标签原样返回
func (b Biome) DisplayName() string {
	if n, ok := names[b]; ok {
		return n
	}
	return string(b)
}

// Known：标签是否在群系表中
func (b Biome) Known() bool {
	_, ok := names[b]
	return ok
}

// IsLand：非海洋、非冰川
func (b Biome) IsLand() bool { return b != Marine && b != Glacier }

const (
	TemperatureBins   = 20
	PrecipitationBins = 10
)

// 文档注释：群系表（原始数据）
// 约束：行自上而下为最湿到最干，列为最冷到最热；加载后行序反转，下标 0 为最干行。
const rawTable = `polar	tundra	tundra	tundra	taiga	taiga	taiga	temperate_rainforest	temperate_rainforest	temperate_rainforest	temperate_rainforest	temperate_rainforest	temperate_rainforest	swamp	swamp	swamp	swamp	tropical_rainforest	tropical_rainforest	tropical_rainforest
polar	tundra	tundra	tundra	taiga	taiga	taiga	temperate_rainforest	temperate_rainforest	temperate_rainforest	temperate_rainforest	temperate_rainforest	swamp	swamp	swamp	swamp	tropical_rainforest	tropical_rainforest	tropical_rainforest	tropical_rainforest
polar	tundra	tundra	tundra	taiga	taiga	taiga	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	tropical_seasonal_forest	tropical_seasonal_forest	tropical_seasonal_forest	tropical_seasonal_forest
polar	tundra	tundra	tundra	taiga	taiga	taiga	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	tropical_seasonal_forest	tropical_seasonal_forest	tropical_seasonal_forest	tropical_seasonal_forest	tropical_seasonal_forest
polar	tundra	tundra	tundra	taiga	taiga	taiga	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	seasonal_forest	plains	plains	plains	plains	savanna	savanna	savanna	savanna
polar	tundra	tundra	tundra	taiga	taiga	taiga	plains	plains	plains	plains	plains	plains	plains	plains	savanna	savanna	savanna	savanna	savanna
polar	tundra	tundra	tundra	taiga	taiga	taiga	plains	plains	plains	plains	plains	plains	plains	plains	savanna	savanna	savanna	desert	desert
polar	tundra	tundra	tundra	taiga	taiga	taiga	plains	plains	plains	plains	plains	steppe	steppe	steppe	desert	tropical_desert	tropical_desert	tropical_desert	tropical_desert
polar	tundra	tundra	tundra	taiga	taiga	plains	plains	steppe	steppe	steppe	steppe	desert	desert	desert	desert	tropical_desert	tropical_desert	tropical_desert	tropical_desert
polar	tundra	tundra	tundra	taiga	taiga	plains	steppe	steppe	steppe	steppe	steppe	desert	desert	desert	desert	tropical_desert	tropical_desert	tropical_desert	tropical_desert
`

// Table：[降水分箱][温度分箱]
type Table [PrecipitationBins][TemperatureBins]Biome

var table = mustParseTable(rawTable)

// ParseTable：解析制表符分隔的群系表并反转行序
// 约束：必须恰好 10 行 × 20 列且每个标签已知，否则视为表损坏
func ParseTable(raw string) (Table, error) {
	var t Table
	var rows [][]string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, "\t"))
	}
	if len(rows) != PrecipitationBins {
		return t, fmt.Errorf("biome table: expected %d rows, got %d", PrecipitationBins, len(rows))
	}
	for i, row := range rows {
		if len(row) != TemperatureBins {
			return t, fmt.Errorf("biome table: row %d has %d columns", i, len(row))
		}
		for j, cell := range row {
			b := Biome(strings.TrimSpace(cell))
			if !b.Known() {
				return t, fmt.Errorf("biome table: unknown biome %q at %d,%d", cell, i, j)
			}
			t[PrecipitationBins-1-i][j] = b
		}
	}
	return t, nil
}

func mustParseTable(raw string) Table {
	t, err := ParseTable(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTable：内置群系表副本
func DefaultTable() Table { return table }

// 文档注释：群系分类器
// 背景：判定顺序为 水下 → 山地 → 查表；冷阈值决定冰川/雪山。
// 约束：纯函数；同一组 (高程, 温度, 降水, 水位, 山地线) 恒返回同一标签；分箱越界截断。
type Classifier struct {
	Levels             params.Levels
	Cold               float64
	TemperatureRange   params.Range
	PrecipitationRange params.Range
	Table              Table
}

// NewClassifier：由参数与实际水位/山地线构建
func NewClassifier(b params.Biome, lv params.Levels) Classifier {
	return Classifier{
		Levels:             lv,
		Cold:               b.ColdThreshold,
		TemperatureRange:   b.TemperatureRange,
		PrecipitationRange: b.PrecipitationRange,
		Table:              table,
	}
}

func (c Classifier) Classify(height, temperature, precipitation float64) Biome {
	if height < c.Levels.Water {
		if temperature < c.Cold {
			return Glacier
		}
		return Marine
	}
	if height > c.Levels.Mountain {
		if temperature < c.Cold {
			return SnowyMountain
		}
		return Mountain
	}
	ti := bin(temperature, c.TemperatureRange, TemperatureBins)
	pi := bin(precipitation, c.PrecipitationRange, PrecipitationBins)
	return c.Table[pi][ti]
}

// TableIndex：查表下标（温度列, 降水行）
func (c Classifier) TableIndex(temperature, precipitation float64) (int, int) {
	return bin(temperature, c.TemperatureRange, TemperatureBins), bin(precipitation, c.PrecipitationRange, PrecipitationBins)
}

func bin(v float64, r params.Range, n int) int {
	width := (r.Max - r.Min) / float64(n)
	if width <= 0 || math.IsNaN(v) {
		return 0
	}
	i := int(math.Floor((v - r.Min) / width))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
