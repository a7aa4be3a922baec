// Package fakeapi is an in-memory stand-in for the storefront REST backend,
// used by tests to drive the real HTTP client end to end.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// CartAdd records one POST /cart/add as received.
type CartAdd struct {
	CustomerID string
	ProductID  string
	Quantity   int
	Status     int
}

type account struct {
	customer models.Customer
	hash     []byte
}

// Server is safe for concurrent use.
type Server struct {
	mu sync.Mutex

	secret    []byte
	tokenTTL  time.Duration
	byEmail   map[string]*account
	products  []models.Product
	carts     map[string][]models.CartItem
	wishlists map[string][]string
	orders    map[string][]models.Order

	adds       []CartAdd
	failAdd    map[string]int
	requestIDs []string

	signupWithoutToken bool
	failLogin          int

	ts *httptest.Server
}

// New starts a server and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		secret:    []byte("fakeapi-" + uuid.NewString()),
		tokenTTL:  time.Hour,
		byEmail:   map[string]*account{},
		carts:     map[string][]models.CartItem{},
		wishlists: map[string][]string{},
		orders:    map[string][]models.Order{},
		failAdd:   map[string]int{},
	}
	s.ts = httptest.NewServer(s.routes())
	t.Cleanup(s.ts.Close)
	return s
}

// BaseURL is the API root to hand to the client.
func (s *Server) BaseURL() string { return s.ts.URL + "/api" }

// Close stops the listener early, e.g. to simulate an unreachable backend.
func (s *Server) Close() { s.ts.Close() }

// AddProduct puts p in the catalog; an empty _id gets a fresh one.
func (s *Server) AddProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ProductID() == "" {
		p.MongoID = uuid.NewString()
	}
	s.products = append(s.products, p)
	return p
}

// RegisterCustomer creates an account directly.
func (s *Server) RegisterCustomer(name, email, password string) models.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.createAccount(models.SignupRequest{Name: name, Email: email, Password: password})
	return acc.customer
}

// TokenFor mints a credential for an existing customer; ttl may be negative.
func (s *Server) TokenFor(email string, ttl time.Duration) string {
	s.mu.Lock()
	acc := s.byEmail[strings.ToLower(email)]
	s.mu.Unlock()
	if acc == nil {
		return ""
	}
	tok, _ := GenerateToken(acc.customer.ID, s.secret, ttl)
	return tok
}

// FailAddToCart makes every add of productID answer with status.
func (s *Server) FailAddToCart(productID string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAdd[productID] = status
}

// SetSignupWithoutToken makes POST /customers answer with the bare customer,
// without a credential.
func (s *Server) SetSignupWithoutToken(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signupWithoutToken = v
}

// SetFailLogin makes POST /auth/login answer with status; 0 restores normal
// behavior.
func (s *Server) SetFailLogin(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLogin = status
}

func (s *Server) CartAdds() []CartAdd {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CartAdd(nil), s.adds...)
}

// CartOf returns the account cart of the customer with email.
func (s *Server) CartOf(email string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.byEmail[strings.ToLower(email)]
	if acc == nil {
		return nil
	}
	return append([]models.CartItem(nil), s.carts[acc.customer.ID]...)
}

// WishlistOf returns the product ids on the account wishlist.
func (s *Server) WishlistOf(email string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.byEmail[strings.ToLower(email)]
	if acc == nil {
		return nil
	}
	return append([]string(nil), s.wishlists[acc.customer.ID]...)
}

// RequestIDs lists the X-Request-ID of every request received.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recordRequestID)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/customers", s.handleSignup)

		r.Get("/product", s.handleListProducts)
		r.Get("/product/{id}", s.handleGetProduct)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/cart", s.handleGetCart)
			r.Post("/cart/add", s.handleAddToCart)
			r.Delete("/cart/remove/{id}", s.handleRemoveFromCart)
			r.Delete("/cart/clear/all", s.handleClearCart)

			r.Get("/customers/me", s.handleGetProfile)
			r.Patch("/customers/me", s.handleUpdateProfile)
			r.Patch("/customers/change-password", s.handleChangePassword)

			r.Get("/customers/wishlist", s.handleGetWishlist)
			r.Post("/customers/wishlist", s.handleAddToWishlist)
			r.Delete("/customers/wishlist/{productId}", s.handleRemoveFromWishlist)

			r.Post("/orders", s.handleCreateOrder)
			r.Get("/orders", s.handleListOrders)
			r.Get("/orders/{id}", s.handleGetOrder)
			r.Post("/orders/{id}/paystack/initialize", s.handleInitializePayment)
		})
	})
	return r
}

// createAccount must be called with mu held.
func (s *Server) createAccount(req models.SignupRequest) *account {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	acc := &account{
		customer: models.Customer{
			ID:      uuid.NewString(),
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
		},
		hash: hash,
	}
	s.byEmail[strings.ToLower(req.Email)] = acc
	return acc
}

// accountByID must be called with mu held.
func (s *Server) accountByID(id string) *account {
	for _, acc := range s.byEmail {
		if acc.customer.ID == id {
			return acc
		}
	}
	return nil
}

// findProduct must be called with mu held.
func (s *Server) findProduct(id string) (models.Product, bool) {
	for _, p := range s.products {
		if p.ProductID() == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func writeJSON(w http.ResponseWriter, status int, data any, extra ...func(*models.Envelope[any])) {
	env := models.Envelope[any]{
		Success: status >= 200 && status < 300,
		Code:    status,
		Message: http.StatusText(status),
		Data:    data,
	}
	for _, fn := range extra {
		fn(&env)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, nil, func(e *models.Envelope[any]) { e.Message = msg })
}

func intParam(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}

func decimalOf(p models.Product, qty int) decimal.Decimal {
	return p.UnitPrice().Mul(decimal.NewFromInt(int64(qty)))
}

func bearer(r *http.Request) string {
	h := r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(h, common.BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(h, common.BearerPrefix)
}
