package fakeapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	fail := s.failLogin
	var (
		found    bool
		hash     []byte
		customer models.Customer
	)
	if acc := s.byEmail[strings.ToLower(req.Email)]; acc != nil {
		found, hash, customer = true, acc.hash, acc.customer
	}
	s.mu.Unlock()

	if fail != 0 {
		writeError(w, fail, "Login unavailable")
		return
	}
	if !found || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	tok, err := GenerateToken(customer.ID, s.secret, s.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResult{Token: tok, Customer: customer})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	if _, exists := s.byEmail[strings.ToLower(req.Email)]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "Customer with this email already exists")
		return
	}
	acc := s.createAccount(req)
	withoutToken := s.signupWithoutToken
	s.mu.Unlock()

	if withoutToken {
		writeJSON(w, http.StatusCreated, acc.customer)
		return
	}
	tok, err := GenerateToken(acc.customer.ID, s.secret, s.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, models.AuthResult{Token: tok, Customer: acc.customer})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))
	category := r.URL.Query().Get("category")
	limit, page := intParam(r, "limit"), intParam(r, "page")
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	var matched []models.Product
	for _, p := range s.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.Unlock()

	total := len(matched)
	if limit > 0 {
		start := min((page-1)*limit, total)
		end := min(start+limit, total)
		matched = matched[start:end]
	}
	if matched == nil {
		matched = []models.Product{}
	}
	writeJSON(w, http.StatusOK, models.ProductPage{TotalCount: total, Data: matched})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.findProduct(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// cartView must be called with mu held.
func (s *Server) cartView(cid string) models.Cart {
	items := append([]models.CartItem{}, s.carts[cid]...)
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimalOf(it.Product, it.Quantity))
	}
	return models.Cart{Cart: items, Total: total}
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	view := s.cartView(customerID(r.Context()))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r.Context())
	var req models.AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := CartAdd{CustomerID: cid, ProductID: req.ProductID, Quantity: req.Quantity}
	reject := func(status int, msg string) {
		record.Status = status
		s.adds = append(s.adds, record)
		writeError(w, status, msg)
	}

	if status, ok := s.failAdd[req.ProductID]; ok {
		reject(status, "Could not add item to cart")
		return
	}
	if req.Quantity < 1 {
		reject(http.StatusBadRequest, "Quantity must be at least 1")
		return
	}
	p, ok := s.findProduct(req.ProductID)
	if !ok {
		reject(http.StatusNotFound, "Product not found")
		return
	}

	items := s.carts[cid]
	merged := false
	for i := range items {
		if items[i].ProductID == req.ProductID {
			items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, models.CartItem{ID: uuid.NewString(), ProductID: req.ProductID, Product: p, Quantity: req.Quantity})
	}
	s.carts[cid] = items

	record.Status = http.StatusOK
	s.adds = append(s.adds, record)
	writeJSON(w, http.StatusOK, s.cartView(cid))
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r.Context())
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[cid]
	for i := range items {
		if items[i].ID == id {
			s.carts[cid] = append(items[:i:i], items[i+1:]...)
			writeJSON(w, http.StatusOK, s.cartView(cid))
			return
		}
	}
	writeError(w, http.StatusNotFound, "Cart item not found")
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.carts, customerID(r.Context()))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByID(customerID(r.Context()))
	if acc == nil {
		writeError(w, http.StatusNotFound, "Customer not found")
		return
	}
	writeJSON(w, http.StatusOK, acc.customer)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByID(customerID(r.Context()))
	if acc == nil {
		writeError(w, http.StatusNotFound, "Customer not found")
		return
	}
	if req.Name != "" {
		acc.customer.Name = req.Name
	}
	if req.Phone != "" {
		acc.customer.Phone = req.Phone
	}
	if req.Address != "" {
		acc.customer.Address = req.Address
	}
	if req.AvatarURL != "" {
		acc.customer.AvatarURL = req.AvatarURL
	}
	writeJSON(w, http.StatusOK, acc.customer)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "newPassword is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByID(customerID(r.Context()))
	if acc == nil {
		writeError(w, http.StatusNotFound, "Customer not found")
		return
	}
	if bcrypt.CompareHashAndPassword(acc.hash, []byte(req.CurrentPassword)) != nil {
		writeError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	acc.hash = hash
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r.Context())
	s.mu.Lock()
	products := []models.Product{}
	for _, id := range s.wishlists[cid] {
		if p, ok := s.findProduct(id); ok {
			products = append(products, p)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r.Context())
	var req models.WishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findProduct(req.ProductID); !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	for _, id := range s.wishlists[cid] {
		if id == req.ProductID {
			writeJSON(w, http.StatusOK, nil)
			return
		}
	}
	s.wishlists[cid] = append(s.wishlists[cid], req.ProductID)
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r.Context())
	pid := chi.URLParam(r, "productId")

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.wishlists[cid]
	for i, id := range list {
		if id == pid {
			s.wishlists[cid] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r.Context())
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.CartItemIDs) == 0 {
		writeError(w, http.StatusBadRequest, "cartItemIds must not be empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := map[string]bool{}
	for _, id := range req.CartItemIDs {
		wanted[id] = true
	}
	var (
		items []models.OrderItem
		rest  []models.CartItem
		total = decimal.Zero
	)
	for _, it := range s.carts[cid] {
		if !wanted[it.ID] {
			rest = append(rest, it)
			continue
		}
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Product.Name,
			Price:     it.Product.UnitPrice(),
			Quantity:  it.Quantity,
			ImageURL:  it.Product.ImageRef(),
			Category:  it.Product.Category,
		})
		total = total.Add(decimalOf(it.Product, it.Quantity))
	}
	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, "No matching cart items")
		return
	}
	s.carts[cid] = rest

	now := time.Now().UTC()
	order := models.Order{
		MongoID:       uuid.NewString(),
		OrderNumber:   "ORD-" + strings.ToUpper(uuid.NewString()[:8]),
		Items:         items,
		TotalAmount:   total,
		Status:        models.OrderPending,
		UserID:        cid,
		Notes:         req.Notes,
		PaymentStatus: "pending",
		PlacedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.orders[cid] = append(s.orders[cid], order)
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r.Context())
	status := models.OrderStatus(r.URL.Query().Get("status"))

	s.mu.Lock()
	orders := []models.Order{}
	for _, o := range s.orders[cid] {
		if status != "" && o.Status != status {
			continue
		}
		orders = append(orders, o)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.OrderPage{TotalCount: len(orders), Data: orders})
}

// findOrder must be called with mu held.
func (s *Server) findOrder(cid, id string) (int, bool) {
	for i, o := range s.orders[cid] {
		if o.OrderID() == id {
			return i, true
		}
	}
	return 0, false
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.findOrder(cid, chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, s.orders[cid][i])
}

func (s *Server) handleInitializePayment(w http.ResponseWriter, r *http.Request) {
	cid := customerID(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.findOrder(cid, chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	ref := "ref_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	s.orders[cid][i].PaymentReference = ref
	writeJSON(w, http.StatusOK, models.PaymentInit{
		AuthorizationURL: "https://checkout.paystack.test/" + ref,
		Reference:        ref,
	})
}
