// 包 planet：球面行星生成器（采样 → 板块 → 高程 → 气候 → 群系）与地点查询门面
package planet

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"neurosphere/internal/biome"
	"neurosphere/internal/geo"
	"neurosphere/internal/params"
	"neurosphere/internal/snapshot"
	"neurosphere/internal/world"
)

// Type：行星世界的类型标签
const Type = "planet"

var (
	// ErrNotReady：生成未完成前的查询
	ErrNotReady = errors.New("planet: world is not generated")
	// ErrUnknownLocation：地点 id 不属于该行星
	ErrUnknownLocation = world.ErrUnknownLocation
)

// Motion：板块运动矢量（方位角、速度，均为弧度）
type Motion struct {
	Bearing float64
	Speed   float64
}

// 文档注释：点场集合
// 背景：点按整数下标存放（arena），所有点场都是与 points 等长的稠密数组。
// 约束：只有全部阶段成功后才整体挂到 Planet 上；发布后只读。
type fields struct {
	points  []geo.Point
	index   *geo.Index
	plates  []int
	oceanic []bool
	motions []Motion
	height  []float64
	heat    []float64
	precip  []float64
	biomes  []biome.Biome
	levels  params.Levels
}

// 文档注释：行星
// 背景：构造时只持有参数；Generate 成功后发布点场，GenerateLocations 后才可按地点查询。
// 约束：字段访问由读写锁保护；生成中途失败或被取消时不发布任何部分结果。
type Planet struct {
	mu    sync.RWMutex
	id    int
	hasID bool
	gen   params.Generation

	f      *fields
	fp     string
	locIDs []int
	byLoc  map[int]int
}

var _ world.World = (*Planet)(nil)

// New：以参数构造待生成的行星
func New(g params.Generation) *Planet {
	return &Planet{gen: g.Clone()}
}

// Load：类型注册表使用的构造函数
func Load(doc snapshot.World) (world.World, error) {
	p, err := FromSnapshot(doc)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Planet) ID() (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.id, p.hasID
}

func (p *Planet) SetID(id int) {
	p.mu.Lock()
	p.id, p.hasID = id, true
	p.mu.Unlock()
}

func (p *Planet) Type() string { return Type }

// Params：补全种子后的参数副本
func (p *Planet) Params() params.Generation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gen.Clone()
}

// Levels：水位与山地线
func (p *Planet) Levels() (params.Levels, error) {
	f, err := p.ready()
	if err != nil {
		return params.Levels{}, err
	}
	return f.levels, nil
}

// Len：采样点数
func (p *Planet) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.f == nil {
		return 0
	}
	return len(p.f.points)
}

// Plates：板块 id 点场副本
func (p *Planet) Plates() ([]int, error) {
	f, err := p.ready()
	if err != nil {
		return nil, err
	}
	return append([]int(nil), f.plates...), nil
}

// Heights / Temperatures / Precipitation：数值点场副本
func (p *Planet) Heights() ([]float64, error) {
	return p.floatField(func(f *fields) []float64 { return f.height })
}

func (p *Planet) Temperatures() ([]float64, error) {
	return p.floatField(func(f *fields) []float64 { return f.heat })
}

func (p *Planet) Precipitation() ([]float64, error) {
	return p.floatField(func(f *fields) []float64 { return f.precip })
}

// Biomes：群系点场副本
func (p *Planet) Biomes() ([]biome.Biome, error) {
	f, err := p.ready()
	if err != nil {
		return nil, err
	}
	return append([]biome.Biome(nil), f.biomes...), nil
}

func (p *Planet) floatField(pick func(*fields) []float64) ([]float64, error) {
	f, err := p.ready()
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), pick(f)...), nil
}

// 文档注释：内容指纹
// 背景：点场由补全种子后的参数唯一决定，对参数（去掉并发度）做 xxhash 即可区分不同世界；
// 跨进程共享的描述缓存以它区分同 id 的不同世界。
// 约束：发布点场时计算一次；未生成时返回 ErrNotReady。
func (p *Planet) Fingerprint() (string, error) {
	if _, err := p.ready(); err != nil {
		return "", err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fp, nil
}

func fingerprint(g params.Generation) string {
	g = g.Clone()
	g.Workers = 0
	b, err := json.Marshal(g)
	if err != nil {
		// 参数只含数值与字符串，编码不会失败
		panic(fmt.Sprintf("planet: encode params: %v", err))
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

func (p *Planet) ready() (*fields, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.f == nil {
		return nil, ErrNotReady
	}
	return p.f, nil
}
