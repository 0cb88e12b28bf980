// Package cart holds the line items of one shopping session, keeps derived
// totals and writes the collection back to its storage entry after every
// change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Store is the cart of a single session. Mutations are serialized and each
// one is persisted before the next is applied. Two stores opened on the same
// key do not coordinate: the last write wins.
type Store struct {
	mu      sync.Mutex
	storage Storage
	key     string
	items   []Item
}

// Open returns the cart stored under key. Missing or unreadable entries give
// an empty cart.
func Open(ctx context.Context, storage Storage, key string) *Store {
	s := &Store{storage: storage, key: key}
	s.items = s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) []Item {
	data, err := s.storage.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNoEntry) {
			log.Warn().Err(err).Str("cart_key", s.key).Msg("cart: failed to load stored cart, starting empty")
		}
		return nil
	}

	items, err := Decode(data)
	if err != nil {
		log.Debug().Err(err).Str("cart_key", s.key).Msg("cart: discarding malformed stored cart")
		return nil
	}
	return items
}

// Key is the storage key the store persists to.
func (s *Store) Key() string {
	return s.key
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// AddItem increments the quantity of an existing line with the same id or
// appends a new line with quantity 1. item.Qty is ignored.
func (s *Store) AddItem(ctx context.Context, item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i].Qty++
			s.persist(ctx)
			return
		}
	}

	item.Qty = 1
	s.items = append(s.items, item)
	s.persist(ctx)
}

// RemoveItem drops the line with id. Unknown ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, it := range s.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.persist(ctx)
}

// UpdateQty sets the quantity of the line with id as given. Callers keep
// qty >= 1; the store does not check it.
func (s *Store) UpdateQty(ctx context.Context, id string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Qty = qty
		}
	}
	s.persist(ctx)
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

func (s *Store) TotalQty() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalQty(s.items)
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalPrice(s.items)
}

// persist writes the whole collection. Failures are logged only: the stored
// copy is a cache of the session, not the source of truth.
func (s *Store) persist(ctx context.Context) {
	data, err := Encode(s.items)
	if err != nil {
		log.Error().Err(err).Str("cart_key", s.key).Msg("cart: failed to encode cart")
		return
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		log.Warn().Err(err).Str("cart_key", s.key).Msg("cart: failed to persist cart")
	}
}

// Encode serializes items as a JSON array. A nil slice encodes as [].
func Encode(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}

// Decode parses a JSON array of items.
func Decode(data []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
