package cart

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/zansmarket/storefront-backend/pkg/errors"
	"github.com/zansmarket/storefront-backend/pkg/logger"
	"github.com/zansmarket/storefront-backend/pkg/metrics"
)

const (
	opAdd      = "add"
	opRemove   = "remove"
	opIncrease = "increase"
	opDecrease = "decrease"
	opClear    = "clear"
)

// Options wires the collaborators of a Store.
type Options struct {
	Slot     Slot
	Notifier Notifier
	Logger   *logger.Logger
	Metrics  *metrics.CartMetrics
}

// Store holds the ordered line items of one cart session. The in-memory
// state is authoritative; every mutation writes a snapshot to the slot.
type Store struct {
	mu       sync.Mutex
	items    []LineItem
	slot     Slot
	notifier Notifier
	logg     *logger.Logger
	metrics  *metrics.CartMetrics
}

// Open builds a Store and rehydrates it from the slot. A missing snapshot
// yields an empty cart, and so does one that cannot be read or parsed.
func Open(ctx context.Context, opts Options) *Store {
	s := newStore(opts)
	s.items = s.rehydrate(ctx)
	return s
}

func newStore(opts Options) *Store {
	s := &Store{
		slot:     opts.Slot,
		notifier: opts.Notifier,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
		items:    []LineItem{},
	}
	if s.slot == nil {
		s.slot = NewMemorySlot()
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.logg == nil {
		s.logg = logger.New(logger.Options{ServiceName: "cart", Output: io.Discard})
	}
	return s
}

func (s *Store) rehydrate(ctx context.Context) []LineItem {
	payload, err := s.slot.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			s.logg.Error(s.withBackend(ctx), "cart snapshot load failed", err)
			s.metrics.IncRehydrateFailure()
		}
		return []LineItem{}
	}
	items, err := decodeSnapshot(payload)
	if err != nil {
		s.logg.Error(s.withBackend(ctx), "cart snapshot malformed, resetting", err)
		s.metrics.IncRehydrateFailure()
		return []LineItem{}
	}
	return items
}

// Add puts quantity units of the product in the cart. A product without
// any identifier is ignored whatever the quantity.
func (s *Store) Add(ctx context.Context, product Product, quantity int) error {
	id := product.ResolveID()
	if id == "" {
		return nil
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var notice Notice
	if idx := s.indexOf(id); idx >= 0 {
		s.items[idx].Quantity += quantity
		notice = quantityUpdatedNotice(s.items[idx])
	} else {
		item := product.lineItem(id, quantity)
		s.items = append(s.items, item)
		notice = addedNotice(item)
	}
	s.commit(ctx, opAdd)
	s.notifier.Notify(ctx, notice)
	return nil
}

// Remove deletes the line for productID. Absent ids are a no-op.
func (s *Store) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return
	}
	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.commit(ctx, opRemove)
	s.notifier.Notify(ctx, removedNotice(removed))
}

// Increase adds one unit to the line for productID. Stock is not checked here.
func (s *Store) Increase(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return
	}
	s.items[idx].Quantity++
	s.commit(ctx, opIncrease)
}

// Decrease removes one unit from the line for productID while it holds more
// than one.
func (s *Store) Decrease(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 || s.items[idx].Quantity <= 1 {
		return
	}
	s.items[idx].Quantity--
	s.commit(ctx, opDecrease)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []LineItem{}
	s.commit(ctx, opClear)
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Item returns the line for productID.
func (s *Store) Item(productID string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return LineItem{}, false
	}
	return s.items[idx], true
}

// Subtotal returns the sum of price * quantity over all lines.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Subtotal(s.items)
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

func (s *Store) indexOf(productID string) int {
	if productID == "" {
		return -1
	}
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// commit persists the snapshot. Write failures are logged and counted only.
func (s *Store) commit(ctx context.Context, op string) {
	s.metrics.IncMutation(op)

	payload, err := encodeSnapshot(s.items)
	if err != nil {
		s.logg.Error(s.withBackend(ctx), "encode cart snapshot", err)
		s.metrics.IncPersistFailure(s.slot.Backend())
		return
	}
	if err := s.slot.Save(ctx, payload); err != nil {
		s.logg.Error(s.logg.WithField(s.withBackend(ctx), "op", op), "persist cart snapshot", err)
		s.metrics.IncPersistFailure(s.slot.Backend())
	}
}

func (s *Store) withBackend(ctx context.Context) context.Context {
	return s.logg.WithField(ctx, "cart_slot", s.slot.Backend())
}
