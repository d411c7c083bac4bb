package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kicks/internal/domain"
	applog "kicks/internal/log"
	"kicks/internal/mailer"
	"kicks/internal/orderstatus"
	"kicks/internal/pricing"
	"kicks/internal/repos"
	"kicks/internal/validate"
)

type OrderService struct {
	Orders   *repos.OrderRepo
	Prods    *repos.ProductRepo
	Users    *repos.UserRepo
	Settings *repos.SettingsRepo
	Mail     *mailer.Notifier
	Policy   orderstatus.Policy
	Now      func() time.Time
}

func NewOrderService(orders *repos.OrderRepo, prods *repos.ProductRepo, users *repos.UserRepo, settings *repos.SettingsRepo, mail *mailer.Notifier, policy orderstatus.Policy) *OrderService {
	return &OrderService{Orders: orders, Prods: prods, Users: users, Settings: settings, Mail: mail, Policy: policy, Now: time.Now}
}

// OrderLine is what the storefront sends: identifiers and quantities only.
type OrderLine struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type PlaceOrderInput struct {
	Items           []OrderLine     `json:"items"`
	ShippingAddress *domain.Address `json:"shippingAddress"`
	AddressID       string          `json:"addressId"`
}

// Quote is a priced basket that has not been placed.
type Quote struct {
	Items   []domain.OrderItem `json:"items"`
	Pricing pricing.Summary    `json:"pricing"`
}

func VariantDetails(v domain.Variant) string {
	return fmt.Sprintf("%s / %s / %s", v.Type, v.Size, v.Fragrance)
}

// priceLines resolves each line against the live catalogue. Repeated
// product/variant pairs are merged.
func (s *OrderService) priceLines(lines []OrderLine) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, invalid("order has no items")
	}
	merged := make([]OrderLine, 0, len(lines))
	pos := map[[2]string]int{}
	for _, l := range lines {
		if l.Quantity < 1 {
			return Quote{}, invalid("quantity must be at least 1")
		}
		k := [2]string{l.ProductID, l.VariantID}
		if i, ok := pos[k]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		pos[k] = len(merged)
		merged = append(merged, l)
	}

	products := map[string]domain.Product{}
	q := Quote{Items: make([]domain.OrderItem, 0, len(merged))}
	subtotal := decimal.Zero
	for _, l := range merged {
		p, ok := products[l.ProductID]
		if !ok {
			var err error
			p, err = s.Prods.Get(l.ProductID)
			if errors.Is(err, sql.ErrNoRows) {
				return Quote{}, invalid("product %s is no longer available", l.ProductID)
			}
			if err != nil {
				return Quote{}, err
			}
			products[l.ProductID] = p
		}
		v, ok := p.Variant(l.VariantID)
		if !ok {
			return Quote{}, invalid("%s: that option is no longer available", p.Name)
		}
		if v.Stock < l.Quantity {
			return Quote{}, fmt.Errorf("%w: only %d left of %s (%s)", ErrOutOfStock, v.Stock, p.Name, VariantDetails(v))
		}
		price := p.EffectivePrice(v)
		q.Items = append(q.Items, domain.OrderItem{
			ProductID:      p.ID,
			VariantID:      v.ID,
			ProductName:    p.Name,
			VariantDetails: VariantDetails(v),
			Quantity:       l.Quantity,
			Price:          price,
		})
		subtotal = subtotal.Add(pricing.LineTotal(price, l.Quantity))
	}

	st, err := s.Settings.Get()
	if err != nil {
		return Quote{}, err
	}
	q.Pricing = pricing.Compute(subtotal, st.Rates())
	return q, nil
}

func (s *OrderService) Preview(lines []OrderLine) (Quote, error) {
	return s.priceLines(lines)
}

func (s *OrderService) shippingAddress(u *domain.User, in PlaceOrderInput) (domain.Address, error) {
	if in.AddressID != "" {
		for _, a := range u.Addresses {
			if a.ID == in.AddressID {
				return a, nil
			}
		}
		return domain.Address{}, invalid("address not found")
	}
	if in.ShippingAddress == nil {
		return domain.Address{}, invalid("shippingAddress is required")
	}
	a := *in.ShippingAddress
	if err := cleanAddress(&a); err != nil {
		return domain.Address{}, err
	}
	return a, nil
}

func (s *OrderService) orderNumber(at time.Time) string {
	return "KDS-" + at.UTC().Format("20060102") + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

// Place re-prices the basket server side, reserves stock and records the
// order as Pending. The confirmation e-mail is best effort.
func (s *OrderService) Place(ctx context.Context, userID string, in PlaceOrderInput) (*domain.Order, error) {
	u, err := s.Users.ByID(userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	addr, err := s.shippingAddress(u, in)
	if err != nil {
		return nil, err
	}
	q, err := s.priceLines(in.Items)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	o := &domain.Order{
		ID:              uuid.NewString(),
		User:            domain.OrderUser{ID: u.ID, Name: u.Name, Email: u.Email},
		Items:           q.Items,
		Pricing:         q.Pricing,
		PaymentInfo:     domain.PaymentInfo{Status: domain.PaymentPending},
		OrderStatus:     domain.StatusPending,
		ShippingAddress: addr,
		StatusHistory:   []domain.StatusEntry{orderstatus.Entry(domain.StatusPending, "Order placed", now)},
		CreatedAt:       now.Format(time.RFC3339),
	}

	for attempt := 0; ; attempt++ {
		o.OrderNumber = s.orderNumber(now)
		err = s.Orders.Create(o)
		if !errors.Is(err, repos.ErrDuplicate) || attempt == 2 {
			break
		}
	}
	if errors.Is(err, repos.ErrInsufficientStock) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfStock, Reason(err, repos.ErrInsufficientStock))
	}
	if err != nil {
		return nil, err
	}

	if s.Mail != nil {
		if err := s.Mail.SendOrderConfirmation(ctx, o); err != nil {
			applog.Error(nil, "mail.order.fail", err, map[string]any{"order": o.OrderNumber})
		}
		if err := s.Mail.SendAdminAlert(ctx, o); err != nil {
			applog.Error(nil, "mail.admin_alert.fail", err, map[string]any{"order": o.OrderNumber})
		}
	}
	return o, nil
}

func (s *OrderService) ListForUser(userID string) ([]domain.Order, error) {
	return s.Orders.ListByUser(userID)
}

// GetForUser hides other shoppers' orders behind ErrNotFound.
func (s *OrderService) GetForUser(userID, id string) (*domain.Order, error) {
	o, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if o.User.ID != userID {
		return nil, ErrNotOwner
	}
	return o, nil
}

func (s *OrderService) Get(id string) (*domain.Order, error) {
	if _, ok := validate.ID(id); !ok {
		return nil, ErrNotFound
	}
	o, err := s.Orders.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (s *OrderService) ListAll() ([]domain.Order, error) {
	return s.Orders.ListLatest(0)
}

// UpdateStatus moves an order to status under the configured policy and
// appends one history entry.
func (s *OrderService) UpdateStatus(id string, status domain.OrderStatus, note string) (*domain.Order, error) {
	o, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.Policy.Check(o.OrderStatus, status); err != nil {
		return nil, err
	}
	if err := s.Orders.AppendStatus(id, o.OrderStatus, orderstatus.Entry(status, note, s.Now())); err != nil {
		switch {
		case errors.Is(err, repos.ErrStaleStatus):
			return nil, ErrStaleOrder
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(id)
}

func (s *OrderService) UpdatePayment(id string, status domain.PaymentStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, invalid("payment status must be Pending, Completed, Failed or Refunded")
	}
	if err := s.Orders.UpdatePayment(id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(id)
}
