package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	Category  string          `json:"category,omitempty"`
}

type Order struct {
	MongoID          string          `json:"_id,omitempty"`
	ID               string          `json:"id,omitempty"`
	OrderNumber      string          `json:"orderNumber"`
	Items            []OrderItem     `json:"items"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Status           OrderStatus     `json:"status"`
	UserID           string          `json:"userId"`
	ShippingAddress  string          `json:"shippingAddress,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	PaymentStatus    string          `json:"paymentStatus,omitempty"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	PlacedAt         time.Time       `json:"placedAt"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// OrderID returns "_id", then "id".
func (o Order) OrderID() string {
	if o.MongoID != "" {
		return o.MongoID
	}
	return o.ID
}

type CreateOrderRequest struct {
	CartItemIDs []string `json:"cartItemIds"`
	Notes       string   `json:"notes,omitempty"`
}

type OrderFilter struct {
	Limit  int
	Page   int
	Status OrderStatus
	Search string
}

type OrderPage struct {
	TotalCount int     `json:"totalCount"`
	Data       []Order `json:"data"`
}

// PaymentInit is what the payment provider hands back for redirecting the
// customer.
type PaymentInit struct {
	AuthorizationURL string `json:"authorizationUrl"`
	Reference        string `json:"reference"`
}
