package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/gate"
	"github.com/dmitrijs2005/shopkeeper/internal/client/guest"
	"github.com/dmitrijs2005/shopkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/shopkeeper/internal/client/session"
	"github.com/dmitrijs2005/shopkeeper/internal/testutil/fakeapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newRepo(t *testing.T) kv.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return kv.NewSQLiteRepository(db)
}

func product(id, name, price string) models.Product {
	return models.Product{MongoID: id, Name: name, Price: decimal.NewNullDecimal(decimal.RequireFromString(price))}
}

var (
	adanna = product("p-adanna", "Adanna Dress", "25000")
	ifeoma = product("p-ifeoma", "Ifeoma Top", "12000.50")
)

// ---- fake client ----

type addCall struct {
	Token     string
	ProductID string
	Quantity  int
}

// fakeClient implements client.Client for unit tests of the merge routine.
// Only the cart and wishlist writes record calls.
type fakeClient struct {
	mu sync.Mutex

	AddErr      map[string]error
	WishlistErr map[string]error
	// OnAdd runs after each AddToCart call is recorded.
	OnAdd func(productID string)

	Adds         []addCall
	WishlistAdds []string
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Login(context.Context, models.LoginRequest) (*models.AuthResult, error) {
	return nil, client.ErrUnavailable
}

func (f *fakeClient) Signup(context.Context, models.SignupRequest) (*models.AuthResult, error) {
	return nil, client.ErrUnavailable
}

func (f *fakeClient) GetCart(context.Context, string) (*models.Cart, error) {
	return &models.Cart{}, nil
}

func (f *fakeClient) AddToCart(_ context.Context, token, productID string, quantity int) error {
	f.mu.Lock()
	f.Adds = append(f.Adds, addCall{Token: token, ProductID: productID, Quantity: quantity})
	err := f.AddErr[productID]
	hook := f.OnAdd
	f.mu.Unlock()
	if hook != nil {
		hook(productID)
	}
	return err
}

func (f *fakeClient) RemoveFromCart(context.Context, string, string) error { return nil }

func (f *fakeClient) ClearCart(context.Context, string) error { return nil }

func (f *fakeClient) GetProfile(context.Context, string) (*models.Customer, error) {
	return nil, client.ErrUnavailable
}

func (f *fakeClient) UpdateProfile(context.Context, string, models.UpdateProfileRequest) (*models.Customer, error) {
	return nil, client.ErrUnavailable
}

func (f *fakeClient) ChangePassword(context.Context, string, models.ChangePasswordRequest) error {
	return client.ErrUnavailable
}

func (f *fakeClient) GetWishlist(context.Context, string) ([]models.Product, error) {
	return nil, nil
}

func (f *fakeClient) AddToWishlist(_ context.Context, _ string, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WishlistAdds = append(f.WishlistAdds, productID)
	return f.WishlistErr[productID]
}

func (f *fakeClient) RemoveFromWishlist(context.Context, string, string) error { return nil }

func (f *fakeClient) ListProducts(context.Context, models.ProductFilter) (*models.ProductPage, error) {
	return &models.ProductPage{}, nil
}

func (f *fakeClient) GetProduct(context.Context, string) (*models.Product, error) {
	return nil, client.ErrUnavailable
}

func (f *fakeClient) CreateOrder(context.Context, string, models.CreateOrderRequest) (*models.Order, error) {
	return nil, client.ErrUnavailable
}

func (f *fakeClient) ListOrders(context.Context, string, models.OrderFilter) (*models.OrderPage, error) {
	return nil, client.ErrUnavailable
}

func (f *fakeClient) GetOrder(context.Context, string, string) (*models.Order, error) {
	return nil, client.ErrUnavailable
}

func (f *fakeClient) InitializePayment(context.Context, string, string) (*models.PaymentInit, error) {
	return nil, client.ErrUnavailable
}

// ---- end to end harness ----

type harness struct {
	api     *fakeapi.Server
	repo    kv.Repository
	guest   *guest.Store
	session *session.Session
	gate    *gate.Gate
	auth    AuthService
	shop    ShopService
	profile ProfileService
}

func newHarness(t *testing.T, opts ...MergeOption) *harness {
	t.Helper()
	api := fakeapi.New(t)
	api.AddProduct(adanna)
	api.AddProduct(ifeoma)

	c := client.NewHTTPClient(api.BaseURL())
	repo := newRepo(t)
	g := guest.NewStore(repo, nil)
	s := session.New(session.NewCredentialStore(repo), nil)
	gt := gate.New(s, nil, gate.WithPollInterval(0))
	auth := NewAuthService(c, s, gt, NewMergeService(c, g, nil, opts...), nil)
	t.Cleanup(auth.Close)

	return &harness{
		api:     api,
		repo:    repo,
		guest:   g,
		session: s,
		gate:    gt,
		auth:    auth,
		shop:    NewShopService(c, g, auth, nil),
		profile: NewProfileService(c, auth, nil),
	}
}

// quantities maps product id to quantity for an account cart.
func quantities(items []models.CartItem) map[string]int {
	out := map[string]int{}
	for _, it := range items {
		out[it.ResolvedProductID()] = it.Quantity
	}
	return out
}
