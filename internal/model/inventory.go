package model

import (
	"maps"
	"sync"
)

// ItemAdena is the item ID of adena.
const ItemAdena int32 = 57

// Inventory holds stackable item counts keyed by item template ID.
// Quest items and rewards are always stackable, so individual item instances
// are not tracked. Thread-safe.
type Inventory struct {
	mu      sync.RWMutex
	ownerID int64
	items   map[int32]int64 // itemID → count
}

// NewInventory creates an empty inventory for a character.
func NewInventory(ownerID int64) *Inventory {
	return &Inventory{
		ownerID: ownerID,
		items:   make(map[int32]int64, 16),
	}
}

// OwnerID returns the owning character ID.
func (inv *Inventory) OwnerID() int64 {
	return inv.ownerID
}

// Count returns how many units of itemID are held.
func (inv *Inventory) Count(itemID int32) int64 {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.items[itemID]
}

// Add grants count units of itemID. Non-positive counts are ignored.
func (inv *Inventory) Add(itemID int32, count int64) {
	if count <= 0 {
		return
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.items[itemID] += count
}

// Destroy removes up to count units of itemID and returns the removed amount.
// A negative count removes the whole stack.
func (inv *Inventory) Destroy(itemID int32, count int64) int64 {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	held := inv.items[itemID]
	if count < 0 || count > held {
		count = held
	}
	if count == 0 {
		return 0
	}
	if held == count {
		delete(inv.items, itemID)
	} else {
		inv.items[itemID] = held - count
	}
	return count
}

// Adena returns the adena count.
func (inv *Inventory) Adena() int64 {
	return inv.Count(ItemAdena)
}

// Items returns a snapshot of all held stacks.
func (inv *Inventory) Items() map[int32]int64 {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return maps.Clone(inv.items)
}

// Len returns the number of distinct item stacks.
func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.items)
}
