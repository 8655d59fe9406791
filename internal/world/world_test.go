package world

import (
	"errors"
	"sync"
	"testing"

	"neurosphere/internal/snapshot"
)

func TestHolderAllocatesMaxPlusOne(t *testing.T) {
	h := NewHolder()
	if h.NextID() != 0 {
		t.Fatalf("empty holder should start at 0, got %d", h.NextID())
	}
	a := h.Create(1, "plains")
	b := h.Create(1, "marine")
	if a.ID != 0 || b.ID != 1 {
		t.Fatalf("expected sequential ids, got %d %d", a.ID, b.ID)
	}
	if err := h.Put(&Location{ID: 10, WorldID: 2, Biome: "desert"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if c := h.Create(2, "taiga"); c.ID != 11 {
		t.Fatalf("expected id after max, got %d", c.ID)
	}
	if err := h.Put(&Location{ID: 10}); err == nil {
		t.Fatal("expected duplicate id to be rejected")
	}
	if got := h.IDs(); len(got) != 4 || got[3] != 11 {
		t.Fatalf("unexpected ids %v", got)
	}
}

func TestHolderConcurrentCreateIsUnique(t *testing.T) {
	h := NewHolder()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Create(0, "plains")
			}
		}()
	}
	wg.Wait()
	if h.Len() != 800 || h.NextID() != 800 {
		t.Fatalf("expected 800 unique locations, got len=%d next=%d", h.Len(), h.NextID())
	}
}

func TestLocationOccupants(t *testing.T) {
	l := &Location{ID: 3}
	l.AddCharacter(1)
	l.AddCharacter(2)
	l.AddCharacter(1)
	if got := l.Occupants(); len(got) != 2 {
		t.Fatalf("duplicate occupant should be ignored, got %v", got)
	}
	l.RemoveCharacter(1)
	l.RemoveCharacter(42)
	if got := l.Occupants(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("unexpected occupants %v", got)
	}
}

func TestRegistryUnknownType(t *testing.T) {
	r := Registry{}
	if _, err := r.New(snapshot.World{Type: "asteroid"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}
