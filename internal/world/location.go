package world

import (
	"fmt"
	"sort"
	"sync"

	"neurosphere/internal/logger"
)

// 文档注释：地点
// 背景：每个采样点对应一个地点，携带群系标签与所属世界；生成后只有驻留角色列表可变。
// 约束：驻留列表由锁保护；重复加入与移除不存在的角色只记录日志，不报错。
type Location struct {
	ID      int    `json:"id"`
	WorldID int    `json:"world_id"`
	Biome   string `json:"biome"`

	mu        sync.Mutex
	occupants []int
}

// AddCharacter：角色进入地点
func (l *Location) AddCharacter(characterID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range l.occupants {
		if id == characterID {
			logger.L().Warn("location_occupant_duplicate", "location_id", l.ID, "character_id", characterID)
			return
		}
	}
	l.occupants = append(l.occupants, characterID)
}

// RemoveCharacter：角色离开地点
func (l *Location) RemoveCharacter(characterID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, id := range l.occupants {
		if id == characterID {
			l.occupants = append(l.occupants[:i], l.occupants[i+1:]...)
			return
		}
	}
	logger.L().Warn("location_occupant_missing", "location_id", l.ID, "character_id", characterID)
}

// Occupants：驻留角色副本
func (l *Location) Occupants() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.occupants...)
}

// 文档注释：地点持有器
// 背景：多个世界共享同一地点 id 空间，新 id 取当前最大 id + 1（空时为 0）。
// 约束：分配与登记在同一把锁内完成，并发生成地点不会拿到重复 id。
type Holder struct {
	mu   sync.RWMutex
	locs map[int]*Location
	max  int
}

func NewHolder() *Holder { return &Holder{locs: make(map[int]*Location), max: -1} }

// Create：分配新 id 并登记
func (h *Holder) Create(worldID int, biome string) *Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.max++
	l := &Location{ID: h.max, WorldID: worldID, Biome: biome}
	h.locs[l.ID] = l
	return l
}

// Put：登记已有 id 的地点（加载持久化世界时使用）
func (h *Holder) Put(l *Location) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.locs[l.ID]; ok {
		return fmt.Errorf("location %d already registered", l.ID)
	}
	h.locs[l.ID] = l
	if l.ID > h.max {
		h.max = l.ID
	}
	return nil
}

func (h *Holder) Get(id int) (*Location, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	l, ok := h.locs[id]
	return l, ok
}

// NextID：下一个将分配的 id
func (h *Holder) NextID() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.max + 1
}

func (h *Holder) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.locs)
}

// IDs：全部地点 id，升序
func (h *Holder) IDs() []int {
	h.mu.RLock()
	ids := make([]int, 0, len(h.locs))
	for id := range h.locs {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	sort.Ints(ids)
	return ids
}
