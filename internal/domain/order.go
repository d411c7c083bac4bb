package domain

import (
	"github.com/shopspring/decimal"

	"kicks/internal/pricing"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusConfirmed  OrderStatus = "Confirmed"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every order status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
	PaymentRefunded  PaymentStatus = "Refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// OrderUser is the customer as they were when the order was placed.
type OrderUser struct {
	ID    string `db:"user_id" json:"id"`
	Name  string `db:"user_name" json:"name"`
	Email string `db:"user_email" json:"email"`
}

type OrderItem struct {
	ProductID      string          `db:"product_id" json:"productId"`
	VariantID      string          `db:"variant_id" json:"variantId"`
	ProductName    string          `db:"product_name" json:"productName"`
	VariantDetails string          `db:"variant_details" json:"variantDetails"`
	Quantity       int             `db:"qty" json:"quantity"`
	Price          decimal.Decimal `db:"price" json:"price"`
}

type PaymentInfo struct {
	Status PaymentStatus `json:"status"`
}

// StatusEntry is one row of an order's append-only status history. Note is
// nil when the admin supplied none.
type StatusEntry struct {
	Status    OrderStatus `db:"status" json:"status"`
	Timestamp string      `db:"created_at" json:"timestamp"`
	Note      *string     `db:"note" json:"note,omitempty"`
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	User            OrderUser       `json:"user"`
	Items           []OrderItem     `json:"items"`
	Pricing         pricing.Summary `json:"pricing"`
	PaymentInfo     PaymentInfo     `json:"paymentInfo"`
	OrderStatus     OrderStatus     `json:"orderStatus"`
	ShippingAddress Address         `json:"shippingAddress"`
	StatusHistory   []StatusEntry   `json:"statusHistory"`
	CreatedAt       string          `json:"createdAt"`
}
