// 包 snapshot：世界持久化文档（点场为 (纬度, 经度, 值) 三元组列表 + 标量元数据）
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"neurosphere/internal/params"
)

// ErrCoverage：加载的点场之间点集不一致
var ErrCoverage = errors.New("snapshot: point fields do not cover the same point set")

// Document：顶层文档
type Document struct {
	Worlds     []World     `json:"worlds"`
	Characters []Character `json:"characters,omitempty"`
}

// 文档注释：单个世界记录
// 背景：ID 为空表示待生成；Maps 为空表示尚未生成点场，加载时走生成流程。
type World struct {
	ID         *int       `json:"id"`
	Type       string     `json:"type"`
	Generation Generation `json:"generation"`
	Maps       *Maps      `json:"maps,omitempty"`
}

// Generation：生成参数 + 回写的水位/山地线
type Generation struct {
	params.Generation
	WaterLevel    *float64 `json:"water_level,omitempty"`
	MountainLevel *float64 `json:"mountain_level,omitempty"`
}

// Levels：已回写时返回水位/山地线
func (g Generation) Levels() (params.Levels, bool) {
	if g.WaterLevel == nil || g.MountainLevel == nil {
		return params.Levels{}, false
	}
	return params.Levels{Water: *g.WaterLevel, Mountain: *g.MountainLevel}, true
}

// SetLevels：回写水位/山地线
func (g *Generation) SetLevels(lv params.Levels) {
	w, m := lv.Water, lv.Mountain
	g.WaterLevel = &w
	g.MountainLevel = &m
}

type Maps struct {
	Tectonic      []Value `json:"tectonic_map"`
	Height        []Value `json:"height_map"`
	Heat          []Value `json:"heat_map"`
	Precipitation []Value `json:"precipitation_map"`
	Biome         []Label `json:"biome_map"`
	Location      []Value `json:"location_map,omitempty"`
}

// Empty：无任何点场
func (m *Maps) Empty() bool {
	return m == nil || (len(m.Tectonic) == 0 && len(m.Height) == 0 && len(m.Heat) == 0 &&
		len(m.Precipitation) == 0 && len(m.Biome) == 0)
}

// Character：角色记录
type Character struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	WorldID    int    `json:"world_id"`
	LocationID *int   `json:"location_id"`
	AILevel    int    `json:"ai_level"`
}

// ReadFile：读取文档
func ReadFile(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}
	return &d, nil
}

// 文档注释：写出文档
// 约束：先写临时文件再原子重命名，失败时不破坏已有快照
func WriteFile(path string, d *Document) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
