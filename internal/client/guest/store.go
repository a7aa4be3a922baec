// Package guest keeps the cart and wishlist of a visitor who has not signed
// in. State lives in the device-local key-value store, so it survives
// restarts, and is only ever cleared by the merge on sign-in or by the
// visitor.
//
// The store never fails its callers: a storage error is logged and reads
// degrade to empty collections while writes are dropped.
package guest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/shopspring/decimal"
)

// Store is safe for concurrent use within one process. Writes from another
// process sharing the same database are atomic per call; the last writer
// wins.
type Store struct {
	mu   sync.Mutex
	repo kv.Repository
	log  logging.Logger
}

func NewStore(repo kv.Repository, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{repo: repo, log: log.With("component", "guest")}
}

func decode[T any](ctx context.Context, log logging.Logger, key string, raw []byte) []T {
	if len(raw) == 0 {
		return []T{}
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn(ctx, "discarding unreadable guest data", "key", key, "err", err)
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

func encode[T any](items []T) ([]byte, error) {
	if len(items) == 0 {
		// an empty collection is stored as absent
		return nil, nil
	}
	return json.Marshal(items)
}

func readList[T any](ctx context.Context, s *Store, key string) []T {
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		s.log.Warn(ctx, "guest storage read failed", "key", key, "err", err)
		return []T{}
	}
	return decode[T](ctx, s.log, key, raw)
}

// updateList applies fn to the stored collection in one atomic step.
func updateList[T any](ctx context.Context, s *Store, key string, fn func([]T) []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.Update(ctx, key, func(current []byte) ([]byte, error) {
		return encode(fn(decode[T](ctx, s.log, key, current)))
	})
	if err != nil {
		s.log.Warn(ctx, "guest storage write failed", "key", key, "err", err)
	}
}

func (s *Store) GetCart(ctx context.Context) []models.CartEntry {
	return readList[models.CartEntry](ctx, s, common.GuestCartKey)
}

// SetCart overwrites the guest cart.
func (s *Store) SetCart(ctx context.Context, entries []models.CartEntry) {
	updateList(ctx, s, common.GuestCartKey, func([]models.CartEntry) []models.CartEntry {
		return entries
	})
}

// AddToCart adds quantity of product, merging into an existing line for the
// same product. A product without an identifier is ignored; quantities
// below 1 count as 1.
func (s *Store) AddToCart(ctx context.Context, product models.Product, quantity int) {
	id := product.ProductID()
	if id == "" {
		s.log.Warn(ctx, "ignoring guest cart add for product without id", "name", product.Name)
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	updateList(ctx, s, common.GuestCartKey, func(entries []models.CartEntry) []models.CartEntry {
		for i := range entries {
			if entries[i].Product.ProductID() == id {
				entries[i].Quantity += quantity
				return entries
			}
		}
		return append(entries, models.CartEntry{Product: product, Quantity: quantity})
	})
}

// UpdateCartQuantity sets the quantity of the line for productID, never
// below 1. Unknown products are ignored.
func (s *Store) UpdateCartQuantity(ctx context.Context, productID string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	updateList(ctx, s, common.GuestCartKey, func(entries []models.CartEntry) []models.CartEntry {
		for i := range entries {
			if entries[i].Product.ProductID() == productID {
				entries[i].Quantity = quantity
			}
		}
		return entries
	})
}

func (s *Store) RemoveFromCart(ctx context.Context, productID string) {
	updateList(ctx, s, common.GuestCartKey, func(entries []models.CartEntry) []models.CartEntry {
		out := entries[:0]
		for _, e := range entries {
			if e.Product.ProductID() != productID {
				out = append(out, e)
			}
		}
		return out
	})
}

// ClearCart removes the guest cart entirely.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Delete(ctx, common.GuestCartKey); err != nil {
		s.log.Warn(ctx, "guest storage clear failed", "key", common.GuestCartKey, "err", err)
	}
}

// CartSubtotal is the display total of the guest cart.
func (s *Store) CartSubtotal(ctx context.Context) decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.GetCart(ctx) {
		total = total.Add(e.LineTotal())
	}
	return total
}

// CartCount is the number of items, summing quantities.
func (s *Store) CartCount(ctx context.Context) int {
	n := 0
	for _, e := range s.GetCart(ctx) {
		n += e.Quantity
	}
	return n
}
