package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrSlotEmpty is returned by Slot.Load when nothing has been persisted yet.
var ErrSlotEmpty = errors.New("cart slot empty")

// Slot is the durable key holding one session's serialized cart.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
	Backend() string
}

// MemorySlot keeps a snapshot in process memory.
type MemorySlot struct {
	mu      sync.RWMutex
	payload []byte
	set     bool
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Load implements Slot.
func (m *MemorySlot) Load(context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(m.payload))
	copy(out, m.payload)
	return out, nil
}

// Save implements Slot.
func (m *MemorySlot) Save(_ context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = append(m.payload[:0], payload...)
	m.set = true
	return nil
}

// Backend implements Slot.
func (m *MemorySlot) Backend() string {
	return "memory"
}

// MemorySlots hands out one MemorySlot per session id.
type MemorySlots struct {
	mu    sync.Mutex
	slots map[string]*MemorySlot
}

// NewMemorySlots returns an empty registry.
func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: make(map[string]*MemorySlot)}
}

// Slot returns the slot for sessionID, creating it on first use.
func (m *MemorySlots) Slot(sessionID string) Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[sessionID]
	if !ok {
		slot = NewMemorySlot()
		m.slots[sessionID] = slot
	}
	return slot
}
