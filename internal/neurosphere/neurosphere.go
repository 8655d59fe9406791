// 包 neurosphere：世界容器，持有全部世界、共享地点空间与角色，并对外提供地点查询
package neurosphere

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"neurosphere/internal/logger"
	"neurosphere/internal/planet"
	"neurosphere/internal/snapshot"
	"neurosphere/internal/world"
)

// ErrUnknownWorld：世界 id 未登记
var ErrUnknownWorld = errors.New("unknown world")

// DefaultRegistry：内置世界类型
func DefaultRegistry() world.Registry {
	return world.Registry{planet.Type: planet.Load}
}

// 文档注释：容器
// 背景：已有 id 的世界从持久化点场加载，不重新生成；无 id 的世界生成后取 max(id)+1。
// 地点 id 由所有世界共享的持有器分配，查询时先由地点找到所属世界再委托给世界实现。
// 约束：世界与角色表由读写锁保护；世界内部的并发安全由世界自身保证。
type Sphere struct {
	mu     sync.RWMutex
	reg    world.Registry
	worlds map[int]world.World
	holder *world.Holder
	chars  map[int]*world.Character
}

func New(reg world.Registry) *Sphere {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Sphere{
		reg:    reg,
		worlds: make(map[int]world.World),
		holder: world.NewHolder(),
		chars:  make(map[int]*world.Character),
	}
}

// 文档注释：读入文档
// 背景：顺序为 已存世界（恢复地点 id）→ 待生成世界（新分配地点 id）→ 角色（缺少位置的按世界规则放置）。
// 约束：任一世界失败即返回错误，已成功的世界保留在容器中。
func (s *Sphere) Load(ctx context.Context, doc *snapshot.Document) error {
	var pending []world.World
	for i, wd := range doc.Worlds {
		w, err := s.reg.New(wd)
		if err != nil {
			return fmt.Errorf("world #%d: %w", i, err)
		}
		id, ok := w.ID()
		if !ok {
			pending = append(pending, w)
			continue
		}
		if err := s.attach(ctx, id, w); err != nil {
			return fmt.Errorf("world %d: %w", id, err)
		}
	}
	for _, w := range pending {
		if _, err := s.AddWorld(ctx, w); err != nil {
			return err
		}
	}
	for _, cd := range doc.Characters {
		c := world.Character{ID: cd.ID, Name: cd.Name, WorldID: cd.WorldID, AILevel: cd.AILevel, LocationID: -1}
		if cd.LocationID != nil {
			c.LocationID = *cd.LocationID
		}
		if err := s.AddCharacter(c); err != nil {
			return fmt.Errorf("character %d: %w", cd.ID, err)
		}
	}
	logger.L().Info("neurosphere_loaded", "worlds", len(s.WorldIDs()), "locations", s.holder.Len(), "characters", len(doc.Characters))
	return nil
}

// AddWorld：生成世界、分配 id 并物化地点
func (s *Sphere) AddWorld(ctx context.Context, w world.World) (int, error) {
	if err := w.Generate(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	id := s.nextWorldIDLocked()
	w.SetID(id)
	// 先占位，避免并发 AddWorld 拿到相同 id
	s.worlds[id] = w
	s.mu.Unlock()
	if err := w.GenerateLocations(s.holder); err != nil {
		s.mu.Lock()
		delete(s.worlds, id)
		s.mu.Unlock()
		return 0, err
	}
	logger.L().Info("world_added", "world_id", id, "type", w.Type())
	return id, nil
}

func (s *Sphere) attach(ctx context.Context, id int, w world.World) error {
	s.mu.Lock()
	if _, dup := s.worlds[id]; dup {
		s.mu.Unlock()
		return fmt.Errorf("duplicate world id %d", id)
	}
	s.worlds[id] = w
	s.mu.Unlock()
	err := w.Generate(ctx)
	if err == nil {
		err = w.GenerateLocations(s.holder)
	}
	if err != nil {
		s.mu.Lock()
		delete(s.worlds, id)
		s.mu.Unlock()
	}
	return err
}

func (s *Sphere) nextWorldIDLocked() int {
	next := 0
	for id := range s.worlds {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

// AddCharacter：登记角色；没有有效位置时由所属世界放置，并加入地点驻留列表
func (s *Sphere) AddCharacter(c world.Character) error {
	w, err := s.World(c.WorldID)
	if err != nil {
		return err
	}
	if l, ok := s.holder.Get(c.LocationID); !ok || l.WorldID != c.WorldID {
		if err := w.GenerateCharacter(&c); err != nil {
			return err
		}
	}
	loc, ok := s.holder.Get(c.LocationID)
	if !ok {
		return fmt.Errorf("%w: %d", world.ErrUnknownLocation, c.LocationID)
	}
	s.mu.Lock()
	if old, ok := s.chars[c.ID]; ok {
		if prev, ok := s.holder.Get(old.LocationID); ok {
			prev.RemoveCharacter(c.ID)
		}
	}
	cc := c
	s.chars[c.ID] = &cc
	s.mu.Unlock()
	loc.AddCharacter(c.ID)
	return nil
}

// MoveCharacter：把角色移到同一世界内的另一地点
func (s *Sphere) MoveCharacter(characterID, locationID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chars[characterID]
	if !ok {
		return fmt.Errorf("unknown character %d", characterID)
	}
	to, ok := s.holder.Get(locationID)
	if !ok || to.WorldID != c.WorldID {
		return fmt.Errorf("%w: %d", world.ErrUnknownLocation, locationID)
	}
	if from, ok := s.holder.Get(c.LocationID); ok {
		from.RemoveCharacter(characterID)
	}
	to.AddCharacter(characterID)
	c.LocationID = locationID
	return nil
}

// Character：角色副本
func (s *Sphere) Character(id int) (world.Character, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chars[id]
	if !ok {
		return world.Character{}, false
	}
	return *c, true
}

func (s *Sphere) World(id int) (world.World, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.worlds[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownWorld, id)
	}
	return w, nil
}

// WorldIDs：升序
func (s *Sphere) WorldIDs() []int {
	s.mu.RLock()
	ids := make([]int, 0, len(s.worlds))
	for id := range s.worlds {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Ints(ids)
	return ids
}

func (s *Sphere) Location(id int) (*world.Location, bool) { return s.holder.Get(id) }

// Holder：共享地点持有器
func (s *Sphere) Holder() *world.Holder { return s.holder }

// WorldOf：地点所属世界
func (s *Sphere) WorldOf(locationID int) (world.World, error) {
	loc, ok := s.holder.Get(locationID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", world.ErrUnknownLocation, locationID)
	}
	return s.World(loc.WorldID)
}

// Describe：地点描述
func (s *Sphere) Describe(locationID int) (string, error) {
	w, err := s.WorldOf(locationID)
	if err != nil {
		return "", err
	}
	return w.Describe(locationID)
}

// Reachable：给定角距离内可达的地点 id
func (s *Sphere) Reachable(locationID int, distance float64) ([]int, error) {
	w, err := s.WorldOf(locationID)
	if err != nil {
		return nil, err
	}
	return w.Reachable(locationID, distance)
}

// Neighbours：可达地点及方位
func (s *Sphere) Neighbours(locationID int, distance float64) ([]world.Neighbour, error) {
	w, err := s.WorldOf(locationID)
	if err != nil {
		return nil, err
	}
	return w.Neighbours(locationID, distance)
}

// Document：导出全部世界与角色
func (s *Sphere) Document() (*snapshot.Document, error) {
	doc := &snapshot.Document{}
	for _, id := range s.WorldIDs() {
		w, err := s.World(id)
		if err != nil {
			return nil, err
		}
		sw, err := w.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("world %d: %w", id, err)
		}
		doc.Worlds = append(doc.Worlds, sw)
	}
	s.mu.RLock()
	ids := make([]int, 0, len(s.chars))
	for id := range s.chars {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c := s.chars[id]
		loc := c.LocationID
		doc.Characters = append(doc.Characters, snapshot.Character{
			ID: c.ID, Name: c.Name, WorldID: c.WorldID, LocationID: &loc, AILevel: c.AILevel,
		})
	}
	s.mu.RUnlock()
	return doc, nil
}
