// 包 world：世界能力接口与按类型标签选择具体实现的注册表
package world

import (
	"context"
	"errors"
	"fmt"

	"neurosphere/internal/snapshot"
)

var (
	// ErrUnknownType：文档中的世界类型没有注册实现
	ErrUnknownType = errors.New("unknown world type")
	// ErrUnknownLocation：地点 id 未登记或不属于该世界
	ErrUnknownLocation = errors.New("unknown location")
)

// 文档注释：世界能力接口
// 背景：生命周期为 构造(空) → Generate 填充全部点场 → GenerateLocations 物化地点 → 只读查询。
// 约束：Generate 成功前所有查询返回未就绪错误；实现自行保证并发读安全。
type World interface {
	ID() (int, bool)
	SetID(id int)
	Type() string

	Generate(ctx context.Context) error
	GenerateLocations(h *Holder) error
	GenerateCharacter(c *Character) error

	Describe(locationID int) (string, error)
	Reachable(locationID int, distance float64) ([]int, error)
	Neighbours(locationID int, distance float64) ([]Neighbour, error)

	Snapshot() (snapshot.World, error)
}

// Neighbour：可达地点及其相对方位
type Neighbour struct {
	LocationID int     `json:"location_id"`
	Direction  string  `json:"direction"`
	Distance   float64 `json:"distance"`
}

// Factory：由持久化记录构造世界；记录无点场时返回待生成的空世界
type Factory func(doc snapshot.World) (World, error)

// Registry：类型标签 → 构造函数
type Registry map[string]Factory

// New：按 doc.Type 选择实现
func (r Registry) New(doc snapshot.World) (World, error) {
	f, ok := r[doc.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, doc.Type)
	}
	return f(doc)
}
