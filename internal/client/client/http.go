package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/google/uuid"
)

const defaultTimeout = 15 * time.Second

// HTTPClient implements Client over the storefront REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithTimeout bounds every request. Ignored when not positive.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.log = l
		}
	}
}

// NewHTTPClient returns a client for the API rooted at baseURL, e.g.
// "https://api.example.com/api".
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends one request and decodes the envelope's data into out (which may
// be nil). body, when non-nil, is sent as JSON.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, token string, body any, out any) (*models.Envelope[json.RawMessage], error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "api request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "api request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(started))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	var env models.Envelope[json.RawMessage]
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// the message is only trusted when the body parsed
		msg := ""
		if decodeErr == nil {
			msg = env.Message
		}
		return nil, statusError(resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode %s %s response: %w", method, path, decodeErr)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return &env, nil
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	var res models.AuthResult
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", nil, "", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Signup creates the account. The backend may answer without a token, and
// sometimes with the bare customer as data.
func (c *HTTPClient) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/customers", nil, "", req, nil)
	if err != nil {
		return nil, err
	}

	var res models.AuthResult
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &res, nil
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		return nil, fmt.Errorf("decode signup data: %w", err)
	}
	if res.Token == "" && res.Customer.ID == "" {
		var cust models.Customer
		if err := json.Unmarshal(env.Data, &cust); err == nil {
			res.Customer = cust
		}
	}
	return &res, nil
}

func (c *HTTPClient) GetCart(ctx context.Context, token string) (*models.Cart, error) {
	var cart models.Cart
	if _, err := c.do(ctx, http.MethodGet, "/cart", nil, token, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *HTTPClient) AddToCart(ctx context.Context, token, productID string, quantity int) error {
	body := models.AddToCartRequest{ProductID: productID, Quantity: quantity}
	_, err := c.do(ctx, http.MethodPost, "/cart/add", nil, token, body, nil)
	return err
}

func (c *HTTPClient) RemoveFromCart(ctx context.Context, token, cartItemID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(cartItemID), nil, token, nil, nil)
	return err
}

func (c *HTTPClient) ClearCart(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodDelete, "/cart/clear/all", nil, token, nil, nil)
	return err
}

func (c *HTTPClient) GetProfile(ctx context.Context, token string) (*models.Customer, error) {
	var cust models.Customer
	if _, err := c.do(ctx, http.MethodGet, "/customers/me", nil, token, nil, &cust); err != nil {
		return nil, err
	}
	return &cust, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, token string, req models.UpdateProfileRequest) (*models.Customer, error) {
	var cust models.Customer
	if _, err := c.do(ctx, http.MethodPatch, "/customers/me", nil, token, req, &cust); err != nil {
		return nil, err
	}
	return &cust, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, token string, req models.ChangePasswordRequest) error {
	_, err := c.do(ctx, http.MethodPatch, "/customers/change-password", nil, token, req, nil)
	return err
}

func (c *HTTPClient) GetWishlist(ctx context.Context, token string) ([]models.Product, error) {
	var products []models.Product
	if _, err := c.do(ctx, http.MethodGet, "/customers/wishlist", nil, token, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *HTTPClient) AddToWishlist(ctx context.Context, token, productID string) error {
	_, err := c.do(ctx, http.MethodPost, "/customers/wishlist", nil, token, models.WishlistRequest{ProductID: productID}, nil)
	return err
}

func (c *HTTPClient) RemoveFromWishlist(ctx context.Context, token, productID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/customers/wishlist/"+url.PathEscape(productID), nil, token, nil, nil)
	return err
}

func (c *HTTPClient) ListProducts(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error) {
	q := url.Values{}
	setInt(q, "limit", filter.Limit)
	setInt(q, "page", filter.Page)
	setString(q, "search", filter.Search)
	setString(q, "category", filter.Category)

	env, err := c.do(ctx, http.MethodGet, "/product", q, "", nil, nil)
	if err != nil {
		return nil, err
	}
	var page models.ProductPage
	if err := decodePage(env, &page.Data, &page); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if page.TotalCount == 0 {
		page.TotalCount = env.TotalCount
	}
	return &page, nil
}

func (c *HTTPClient) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if _, err := c.do(ctx, http.MethodGet, "/product/"+url.PathEscape(id), nil, "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CreateOrder(ctx context.Context, token string, req models.CreateOrderRequest) (*models.Order, error) {
	var o models.Order
	if _, err := c.do(ctx, http.MethodPost, "/orders", nil, token, req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *HTTPClient) ListOrders(ctx context.Context, token string, filter models.OrderFilter) (*models.OrderPage, error) {
	q := url.Values{}
	setInt(q, "limit", filter.Limit)
	setInt(q, "page", filter.Page)
	setString(q, "status", string(filter.Status))
	setString(q, "search", filter.Search)

	env, err := c.do(ctx, http.MethodGet, "/orders", q, token, nil, nil)
	if err != nil {
		return nil, err
	}
	var page models.OrderPage
	if err := decodePage(env, &page.Data, &page); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	if page.TotalCount == 0 {
		page.TotalCount = env.TotalCount
	}
	return &page, nil
}

func (c *HTTPClient) GetOrder(ctx context.Context, token, id string) (*models.Order, error) {
	var o models.Order
	if _, err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, token, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *HTTPClient) InitializePayment(ctx context.Context, token, orderID string) (*models.PaymentInit, error) {
	var p models.PaymentInit
	path := "/orders/" + url.PathEscape(orderID) + "/paystack/initialize"
	if _, err := c.do(ctx, http.MethodPost, path, nil, token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// decodePage accepts data either as a bare array (into items) or as an
// object holding totalCount and data (into page).
func decodePage(env *models.Envelope[json.RawMessage], items any, page any) error {
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '[' {
		return json.Unmarshal(data, items)
	}
	return json.Unmarshal(data, page)
}

func setInt(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}
