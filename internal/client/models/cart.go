package models

import "github.com/shopspring/decimal"

// CartEntry is one line of the guest cart kept on the device.
type CartEntry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal is unit price times quantity.
func (e CartEntry) LineTotal() decimal.Decimal {
	return e.Product.UnitPrice().Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// CartItem is one line of the account cart held by the backend.
type CartItem struct {
	ID        string  `json:"id"`
	MongoID   string  `json:"_id,omitempty"`
	ProductID string  `json:"productId"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
}

// ItemID returns the cart item identifier under either spelling.
func (i CartItem) ItemID() string {
	if i.ID != "" {
		return i.ID
	}
	return i.MongoID
}

// ResolvedProductID prefers the explicit productId over the embedded product.
func (i CartItem) ResolvedProductID() string {
	if i.ProductID != "" {
		return i.ProductID
	}
	return i.Product.ProductID()
}

// Cart is the account cart. The backend sends the lines as "items" or as
// "cart"; Lines hides the difference.
type Cart struct {
	Items []CartItem      `json:"items,omitempty"`
	Cart  []CartItem      `json:"cart,omitempty"`
	Total decimal.Decimal `json:"total"`
}

func (c Cart) Lines() []CartItem {
	if len(c.Items) > 0 {
		return c.Items
	}
	return c.Cart
}

// AddToCartRequest is the body of POST /cart/add.
type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// WishlistRequest is the body of POST /customers/wishlist.
type WishlistRequest struct {
	ProductID string `json:"productId"`
}
