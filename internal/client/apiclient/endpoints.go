package apiclient

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"kicks/internal/domain"
	"kicks/internal/pricing"
)

var anon = Credentials{}

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type AdminAuth struct {
	Token string        `json:"token"`
	Admin *domain.Admin `json:"admin"`
}

type AdminSignup struct {
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Password         string           `json:"password"`
	Role             domain.AdminRole `json:"role"`
	VerificationCode string           `json:"verificationCode"`
}

// OrderLine identifies what to buy; the server supplies the price.
type OrderLine struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type OrderRequest struct {
	Items           []OrderLine     `json:"items"`
	ShippingAddress *domain.Address `json:"shippingAddress,omitempty"`
	AddressID       string          `json:"addressId,omitempty"`
}

type Quote struct {
	Items   []domain.OrderItem `json:"items"`
	Pricing pricing.Summary    `json:"pricing"`
}

type StockRow struct {
	ProductID  string `json:"productId"`
	Product    string `json:"product"`
	VariantID  string `json:"variantId"`
	Variant    string `json:"variant"`
	SKU        string `json:"sku"`
	Stock      int    `json:"stock"`
	SalesCount int    `json:"salesCount"`
}

type Dashboard struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	MonthlySales  decimal.Decimal `json:"monthlySales"`
	OrdersToday   int             `json:"ordersToday"`
	TotalProducts int             `json:"totalProducts"`
	TotalUsers    int             `json:"totalUsers"`
	LowStock      []StockRow      `json:"lowStock"`
	BestSelling   []StockRow      `json:"bestSelling"`
	SlowMoving    []StockRow      `json:"slowMoving"`
	RecentOrders  []domain.Order  `json:"recentOrders"`
}

// SettingsUpdate is partial; nil fields are left alone.
type SettingsUpdate struct {
	GSTPercentage     *decimal.Decimal `json:"gstPercentage,omitempty"`
	DeliveryCharge    *decimal.Decimal `json:"deliveryCharge,omitempty"`
	LowStockThreshold *int             `json:"lowStockThreshold,omitempty"`
}

// ---------- storefront auth ----------

func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	var out struct {
		Email string `json:"email"`
	}
	err := c.do(ctx, "POST", "auth/register", anon, map[string]string{"name": name, "email": email, "password": password}, &out)
	return out.Email, err
}

func (c *Client) VerifyOTP(ctx context.Context, email, code string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, "POST", "auth/verify-otp", anon, map[string]string{"email": email, "otp": code}, &out)
	return out, err
}

func (c *Client) ResendOTP(ctx context.Context, email string) error {
	return c.do(ctx, "POST", "auth/resend-otp", anon, map[string]string{"email": email}, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, "POST", "auth/login", anon, map[string]string{"email": email, "password": password}, &out)
	return out, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, "POST", "auth/forgot-password", anon, map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return c.do(ctx, "POST", "auth/reset-password", anon, map[string]string{"email": email, "otp": code, "newPassword": newPassword}, nil)
}

// ---------- profile ----------

type userEnvelope struct {
	User *domain.User `json:"user"`
}

func (c *Client) Profile(ctx context.Context, cred Credentials) (*domain.User, error) {
	var out userEnvelope
	err := c.do(ctx, "GET", "users/profile", cred, nil, &out)
	return out.User, err
}

func (c *Client) UpdateProfile(ctx context.Context, cred Credentials, name string) (*domain.User, error) {
	var out userEnvelope
	err := c.do(ctx, "PUT", "users/profile", cred, map[string]string{"name": name}, &out)
	return out.User, err
}

func (c *Client) AddAddress(ctx context.Context, cred Credentials, a domain.Address) (*domain.User, error) {
	var out userEnvelope
	err := c.do(ctx, "POST", "users/addresses", cred, a, &out)
	return out.User, err
}

// ---------- catalogue ----------

func (c *Client) Products(ctx context.Context, category, q string) ([]domain.Product, error) {
	v := url.Values{}
	if category != "" {
		v.Set("category", category)
	}
	if q != "" {
		v.Set("q", q)
	}
	path := "products"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out struct {
		Products []domain.Product `json:"products"`
	}
	err := c.do(ctx, "GET", path, anon, nil, &out)
	return out.Products, err
}

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	var out struct {
		Product domain.Product `json:"product"`
	}
	err := c.do(ctx, "GET", "products/"+url.PathEscape(id), anon, nil, &out)
	return out.Product, err
}

func (c *Client) HeroSlides(ctx context.Context) ([]domain.HeroSlide, error) {
	var out struct {
		Slides []domain.HeroSlide `json:"slides"`
	}
	err := c.do(ctx, "GET", "hero", anon, nil, &out)
	return out.Slides, err
}

func (c *Client) Fragrances(ctx context.Context) ([]domain.Fragrance, error) {
	var out struct {
		Fragrances []domain.Fragrance `json:"fragrances"`
	}
	err := c.do(ctx, "GET", "fragrances", anon, nil, &out)
	return out.Fragrances, err
}

// StoreSettings reads the public rates used for the cart preview.
func (c *Client) StoreSettings(ctx context.Context) (domain.Settings, error) {
	var out settingsEnvelope
	err := c.do(ctx, "GET", "settings", anon, nil, &out)
	return out.Settings, err
}

// ---------- orders ----------

type orderEnvelope struct {
	Order *domain.Order `json:"order"`
}

type ordersEnvelope struct {
	Orders []domain.Order `json:"orders"`
}

func (c *Client) PreviewOrder(ctx context.Context, items []OrderLine) (Quote, error) {
	var out Quote
	err := c.do(ctx, "POST", "orders/preview", anon, map[string]any{"items": items}, &out)
	return out, err
}

func (c *Client) CreateOrder(ctx context.Context, cred Credentials, req OrderRequest) (*domain.Order, error) {
	var out orderEnvelope
	err := c.do(ctx, "POST", "orders", cred, req, &out)
	return out.Order, err
}

func (c *Client) Orders(ctx context.Context, cred Credentials) ([]domain.Order, error) {
	var out ordersEnvelope
	err := c.do(ctx, "GET", "orders", cred, nil, &out)
	return out.Orders, err
}

func (c *Client) Order(ctx context.Context, cred Credentials, id string) (*domain.Order, error) {
	var out orderEnvelope
	err := c.do(ctx, "GET", "orders/"+url.PathEscape(id), cred, nil, &out)
	return out.Order, err
}

// ---------- back office ----------

func (c *Client) AdminLogin(ctx context.Context, email, password string) (AdminAuth, error) {
	var out AdminAuth
	err := c.do(ctx, "POST", "admin/auth/login", anon, map[string]string{"email": email, "password": password}, &out)
	return out, err
}

func (c *Client) AdminRegister(ctx context.Context, in AdminSignup) (AdminAuth, error) {
	var out AdminAuth
	err := c.do(ctx, "POST", "admin/auth/register", anon, in, &out)
	return out, err
}

func (c *Client) Dashboard(ctx context.Context, cred Credentials) (Dashboard, error) {
	var out struct {
		Dashboard Dashboard `json:"dashboard"`
	}
	err := c.do(ctx, "GET", "admin/dashboard", cred, nil, &out)
	return out.Dashboard, err
}

type settingsEnvelope struct {
	Settings domain.Settings `json:"settings"`
}

func (c *Client) Settings(ctx context.Context, cred Credentials) (domain.Settings, error) {
	var out settingsEnvelope
	err := c.do(ctx, "GET", "admin/settings", cred, nil, &out)
	return out.Settings, err
}

func (c *Client) UpdateSettings(ctx context.Context, cred Credentials, in SettingsUpdate) (domain.Settings, error) {
	var out settingsEnvelope
	err := c.do(ctx, "PUT", "admin/settings", cred, in, &out)
	return out.Settings, err
}

func (c *Client) AdminOrders(ctx context.Context, cred Credentials) ([]domain.Order, error) {
	var out ordersEnvelope
	err := c.do(ctx, "GET", "orders/admin/all", cred, nil, &out)
	return out.Orders, err
}

// UpdateOrderStatus sends note only when non-blank so the server stores it
// as absent.
func (c *Client) UpdateOrderStatus(ctx context.Context, cred Credentials, id string, status domain.OrderStatus, note string) (*domain.Order, error) {
	body := map[string]string{"status": string(status)}
	if note != "" {
		body["note"] = note
	}
	var out orderEnvelope
	err := c.do(ctx, "PUT", "orders/"+url.PathEscape(id)+"/status", cred, body, &out)
	return out.Order, err
}

func (c *Client) UpdatePayment(ctx context.Context, cred Credentials, id string, status domain.PaymentStatus) (*domain.Order, error) {
	var out orderEnvelope
	err := c.do(ctx, "PUT", "orders/"+url.PathEscape(id)+"/payment", cred, map[string]string{"status": string(status)}, &out)
	return out.Order, err
}

func (c *Client) AdminUsers(ctx context.Context, cred Credentials) ([]domain.User, error) {
	var out struct {
		Users []domain.User `json:"users"`
	}
	err := c.do(ctx, "GET", "admin/users", cred, nil, &out)
	return out.Users, err
}
