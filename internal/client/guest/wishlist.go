package guest

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

func (s *Store) GetWishlist(ctx context.Context) []models.Product {
	return readList[models.Product](ctx, s, common.GuestWishlistKey)
}

func (s *Store) SetWishlist(ctx context.Context, products []models.Product) {
	updateList(ctx, s, common.GuestWishlistKey, func([]models.Product) []models.Product {
		return products
	})
}

// AddToWishlist appends product unless it is already there or has no id.
func (s *Store) AddToWishlist(ctx context.Context, product models.Product) {
	id := product.ProductID()
	if id == "" {
		return
	}
	updateList(ctx, s, common.GuestWishlistKey, func(list []models.Product) []models.Product {
		if indexOf(list, id) >= 0 {
			return list
		}
		return append(list, product)
	})
}

func (s *Store) RemoveFromWishlist(ctx context.Context, productID string) {
	updateList(ctx, s, common.GuestWishlistKey, func(list []models.Product) []models.Product {
		if i := indexOf(list, productID); i >= 0 {
			return append(list[:i], list[i+1:]...)
		}
		return list
	})
}

func (s *Store) ClearWishlist(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Delete(ctx, common.GuestWishlistKey); err != nil {
		s.log.Warn(ctx, "guest storage clear failed", "key", common.GuestWishlistKey, "err", err)
	}
}

// ToggleWishlist adds product when absent and removes it when present. It
// reports whether the product is on the wishlist afterwards.
func (s *Store) ToggleWishlist(ctx context.Context, product models.Product) bool {
	id := product.ProductID()
	if id == "" {
		return false
	}
	present := false
	updateList(ctx, s, common.GuestWishlistKey, func(list []models.Product) []models.Product {
		if i := indexOf(list, id); i >= 0 {
			present = false
			return append(list[:i], list[i+1:]...)
		}
		present = true
		return append(list, product)
	})
	return present && s.InWishlist(ctx, id)
}

func (s *Store) InWishlist(ctx context.Context, productID string) bool {
	return indexOf(s.GetWishlist(ctx), productID) >= 0
}

func indexOf(list []models.Product, id string) int {
	for i, p := range list {
		if p.ProductID() == id {
			return i
		}
	}
	return -1
}
