package client

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
)

// Client is the backend API as seen by the services. Methods taking a token
// require an authenticated customer.
type Client interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResult, error)

	GetCart(ctx context.Context, token string) (*models.Cart, error)
	AddToCart(ctx context.Context, token, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, token, cartItemID string) error
	ClearCart(ctx context.Context, token string) error

	GetProfile(ctx context.Context, token string) (*models.Customer, error)
	UpdateProfile(ctx context.Context, token string, req models.UpdateProfileRequest) (*models.Customer, error)
	ChangePassword(ctx context.Context, token string, req models.ChangePasswordRequest) error

	GetWishlist(ctx context.Context, token string) ([]models.Product, error)
	AddToWishlist(ctx context.Context, token, productID string) error
	RemoveFromWishlist(ctx context.Context, token, productID string) error

	ListProducts(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)

	CreateOrder(ctx context.Context, token string, req models.CreateOrderRequest) (*models.Order, error)
	ListOrders(ctx context.Context, token string, filter models.OrderFilter) (*models.OrderPage, error)
	GetOrder(ctx context.Context, token, id string) (*models.Order, error)
	InitializePayment(ctx context.Context, token, orderID string) (*models.PaymentInit, error)
}
