package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/gate"
	"github.com/dmitrijs2005/shopkeeper/internal/client/guest"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/shopspring/decimal"
)

// Destination tells where a cart or wishlist operation was applied.
type Destination string

const (
	ToAccount Destination = "account"
	ToGuest   Destination = "guest"
)

// CartLine is one row of a cart as displayed. CartItemID is empty for guest
// lines.
type CartLine struct {
	ProductID  string
	CartItemID string
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	LineTotal  decimal.Decimal
}

type CartView struct {
	Source   Destination
	Lines    []CartLine
	Subtotal decimal.Decimal
	Count    int
}

// PaymentHandoff is what the customer needs to complete payment with the
// provider.
type PaymentHandoff struct {
	OrderID          string
	OrderNumber      string
	AuthorizationURL string
	Reference        string
	Total            decimal.Decimal
}

// ShopService routes storefront operations to the account when the session
// is authenticated and to the guest store otherwise. An account call
// rejected as unauthorized demotes the session and, for cart and wishlist
// writes, is replayed against the guest store so nothing is lost.
type ShopService interface {
	Products(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error)
	Product(ctx context.Context, id string) (*models.Product, error)

	AddToCart(ctx context.Context, product models.Product, quantity int) (Destination, error)
	Cart(ctx context.Context) (CartView, error)
	UpdateCartQuantity(ctx context.Context, productID string, quantity int) (Destination, error)
	RemoveFromCart(ctx context.Context, productID string) (Destination, error)

	AddToWishlist(ctx context.Context, product models.Product) (Destination, error)
	RemoveFromWishlist(ctx context.Context, productID string) (Destination, error)
	Wishlist(ctx context.Context) ([]models.Product, Destination, error)

	Checkout(ctx context.Context, notes string, onDone func(*PaymentHandoff, error)) *gate.Pending
	Orders(ctx context.Context, onDone func([]models.Order, error)) *gate.Pending
	Order(ctx context.Context, id string) (*models.Order, error)
}

type shopService struct {
	client client.Client
	guest  *guest.Store
	auth   AuthService
	log    logging.Logger
}

func NewShopService(c client.Client, g *guest.Store, auth AuthService, log logging.Logger) ShopService {
	if log == nil {
		log = logging.Nop()
	}
	return &shopService{client: c, guest: g, auth: auth, log: log.With("component", "shop")}
}

// account runs fn with the credential when authenticated. It reports false
// when the call should go to the guest store instead: the session was
// anonymous, or the backend rejected the credential.
func (s *shopService) account(ctx context.Context, fn func(token string) error) (bool, error) {
	token := s.auth.Token()
	if token == "" {
		return false, nil
	}
	err := fn(token)
	if errors.Is(err, client.ErrUnauthorized) {
		s.log.Warn(ctx, "account call rejected, continuing as guest", "err", err)
		s.auth.Demote(ctx)
		return false, nil
	}
	return true, err
}

func (s *shopService) Products(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error) {
	return s.client.ListProducts(ctx, filter)
}

func (s *shopService) Product(ctx context.Context, id string) (*models.Product, error) {
	if id == "" {
		return nil, &InputError{Field: "id", Message: "Please enter a product id."}
	}
	return s.client.GetProduct(ctx, id)
}

func (s *shopService) AddToCart(ctx context.Context, product models.Product, quantity int) (Destination, error) {
	id := product.ProductID()
	if id == "" {
		return "", &InputError{Field: "product", Message: "That product cannot be added to the cart."}
	}
	quantity = max(quantity, 1)

	ok, err := s.account(ctx, func(token string) error {
		return s.client.AddToCart(ctx, token, id, quantity)
	})
	if ok {
		return ToAccount, err
	}
	s.guest.AddToCart(ctx, product, quantity)
	return ToGuest, nil
}

func (s *shopService) Cart(ctx context.Context) (CartView, error) {
	var cart *models.Cart
	ok, err := s.account(ctx, func(token string) error {
		var err error
		cart, err = s.client.GetCart(ctx, token)
		return err
	})
	if ok {
		if err != nil {
			return CartView{Source: ToAccount}, err
		}
		return accountView(cart), nil
	}
	return s.guestView(ctx), nil
}

func accountView(cart *models.Cart) CartView {
	view := CartView{Source: ToAccount, Subtotal: decimal.Zero}
	for _, it := range cart.Lines() {
		line := CartLine{
			ProductID:  it.ResolvedProductID(),
			CartItemID: it.ItemID(),
			Name:       it.Product.Name,
			UnitPrice:  it.Product.UnitPrice(),
			Quantity:   it.Quantity,
		}
		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		view.Lines = append(view.Lines, line)
		view.Subtotal = view.Subtotal.Add(line.LineTotal)
		view.Count += it.Quantity
	}
	if !cart.Total.IsZero() {
		view.Subtotal = cart.Total
	}
	return view
}

func (s *shopService) guestView(ctx context.Context) CartView {
	view := CartView{Source: ToGuest, Subtotal: decimal.Zero}
	for _, e := range s.guest.GetCart(ctx) {
		line := CartLine{
			ProductID: e.Product.ProductID(),
			Name:      e.Product.Name,
			UnitPrice: e.Product.UnitPrice(),
			Quantity:  e.Quantity,
			LineTotal: e.LineTotal(),
		}
		view.Lines = append(view.Lines, line)
		view.Subtotal = view.Subtotal.Add(line.LineTotal)
		view.Count += e.Quantity
	}
	return view
}

func (s *shopService) UpdateCartQuantity(ctx context.Context, productID string, quantity int) (Destination, error) {
	quantity = max(quantity, 1)

	ok, err := s.account(ctx, func(token string) error {
		item, err := s.accountLine(ctx, token, productID)
		if err != nil {
			return err
		}
		switch {
		case quantity > item.Quantity:
			return s.client.AddToCart(ctx, token, productID, quantity-item.Quantity)
		case quantity < item.Quantity:
			// the backend only adds, so shrinking a line means replacing it
			if err := s.client.RemoveFromCart(ctx, token, item.ItemID()); err != nil {
				return err
			}
			return s.client.AddToCart(ctx, token, productID, quantity)
		}
		return nil
	})
	if ok {
		return ToAccount, err
	}
	if !s.inGuestCart(ctx, productID) {
		return ToGuest, ErrNotInCart
	}
	s.guest.UpdateCartQuantity(ctx, productID, quantity)
	return ToGuest, nil
}

func (s *shopService) RemoveFromCart(ctx context.Context, productID string) (Destination, error) {
	ok, err := s.account(ctx, func(token string) error {
		item, err := s.accountLine(ctx, token, productID)
		if err != nil {
			return err
		}
		return s.client.RemoveFromCart(ctx, token, item.ItemID())
	})
	if ok {
		return ToAccount, err
	}
	if !s.inGuestCart(ctx, productID) {
		return ToGuest, ErrNotInCart
	}
	s.guest.RemoveFromCart(ctx, productID)
	return ToGuest, nil
}

func (s *shopService) accountLine(ctx context.Context, token, productID string) (models.CartItem, error) {
	cart, err := s.client.GetCart(ctx, token)
	if err != nil {
		return models.CartItem{}, err
	}
	for _, it := range cart.Lines() {
		if it.ResolvedProductID() == productID {
			return it, nil
		}
	}
	return models.CartItem{}, ErrNotInCart
}

func (s *shopService) inGuestCart(ctx context.Context, productID string) bool {
	for _, e := range s.guest.GetCart(ctx) {
		if e.Product.ProductID() == productID {
			return true
		}
	}
	return false
}

func (s *shopService) AddToWishlist(ctx context.Context, product models.Product) (Destination, error) {
	id := product.ProductID()
	if id == "" {
		return "", &InputError{Field: "product", Message: "That product cannot be added to the wishlist."}
	}
	ok, err := s.account(ctx, func(token string) error {
		return s.client.AddToWishlist(ctx, token, id)
	})
	if ok {
		return ToAccount, err
	}
	s.guest.AddToWishlist(ctx, product)
	return ToGuest, nil
}

func (s *shopService) RemoveFromWishlist(ctx context.Context, productID string) (Destination, error) {
	ok, err := s.account(ctx, func(token string) error {
		return s.client.RemoveFromWishlist(ctx, token, productID)
	})
	if ok {
		return ToAccount, err
	}
	s.guest.RemoveFromWishlist(ctx, productID)
	return ToGuest, nil
}

func (s *shopService) Wishlist(ctx context.Context) ([]models.Product, Destination, error) {
	var products []models.Product
	ok, err := s.account(ctx, func(token string) error {
		var err error
		products, err = s.client.GetWishlist(ctx, token)
		return err
	})
	if ok {
		return products, ToAccount, err
	}
	return s.guest.GetWishlist(ctx), ToGuest, nil
}

// Checkout orders the whole account cart and starts payment. It waits for
// sign-in when anonymous, and again if the backend rejects the credential;
// onDone, if set, receives the final outcome.
func (s *shopService) Checkout(ctx context.Context, notes string, onDone func(*PaymentHandoff, error)) *gate.Pending {
	return s.auth.RequireAuth(ctx, func(ctx context.Context) error {
		handoff, err := s.checkout(ctx, notes)
		if regate(ctx, s.auth, err) {
			return gate.Reauth(err)
		}
		if onDone != nil {
			onDone(handoff, err)
		}
		return err
	})
}

func (s *shopService) checkout(ctx context.Context, notes string) (*PaymentHandoff, error) {
	token := s.auth.Token()

	cart, err := s.client.GetCart(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	var ids []string
	for _, it := range cart.Lines() {
		if id := it.ItemID(); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, ErrEmptyCart
	}

	order, err := s.client.CreateOrder(ctx, token, models.CreateOrderRequest{CartItemIDs: ids, Notes: notes})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.log.Info(ctx, "order created", "order", order.OrderID(), "items", len(ids))

	pay, err := s.client.InitializePayment(ctx, token, order.OrderID())
	if err != nil {
		return nil, fmt.Errorf("initialize payment: %w", err)
	}
	return &PaymentHandoff{
		OrderID:          order.OrderID(),
		OrderNumber:      order.OrderNumber,
		AuthorizationURL: pay.AuthorizationURL,
		Reference:        pay.Reference,
		Total:            order.TotalAmount,
	}, nil
}

func (s *shopService) Orders(ctx context.Context, onDone func([]models.Order, error)) *gate.Pending {
	return s.auth.RequireAuth(ctx, func(ctx context.Context) error {
		page, err := s.client.ListOrders(ctx, s.auth.Token(), models.OrderFilter{})
		if regate(ctx, s.auth, err) {
			return gate.Reauth(err)
		}
		var orders []models.Order
		if page != nil {
			orders = page.Data
		}
		if onDone != nil {
			onDone(orders, err)
		}
		return err
	})
}

// regate demotes the session when err says the credential was rejected and
// reports whether the action should wait for the next sign-in.
func regate(ctx context.Context, auth AuthService, err error) bool {
	if !errors.Is(err, client.ErrUnauthorized) {
		return false
	}
	auth.Demote(ctx)
	return !auth.IsAuthenticated()
}

func (s *shopService) Order(ctx context.Context, id string) (*models.Order, error) {
	token := s.auth.Token()
	if token == "" {
		return nil, client.ErrUnauthorized
	}
	order, err := s.client.GetOrder(ctx, token, id)
	if errors.Is(err, client.ErrUnauthorized) {
		s.auth.Demote(ctx)
	}
	return order, err
}
