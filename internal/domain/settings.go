package domain

import (
	"github.com/shopspring/decimal"

	"kicks/internal/pricing"
)

const DefaultLowStockThreshold = 10

// Settings is the store-wide singleton.
type Settings struct {
	GSTPercentage     decimal.Decimal `db:"gst_percentage" json:"gstPercentage"`
	DeliveryCharge    decimal.Decimal `db:"delivery_charge" json:"deliveryCharge"`
	LowStockThreshold int             `db:"low_stock_threshold" json:"lowStockThreshold"`
	UpdatedAt         string          `db:"updated_at" json:"updatedAt,omitempty"`
}

func (s Settings) Rates() pricing.Rates {
	return pricing.Rates{GSTPercentage: s.GSTPercentage, DeliveryCharge: s.DeliveryCharge}
}

func DefaultSettings() Settings {
	return Settings{
		GSTPercentage:     pricing.DefaultGSTPercentage,
		DeliveryCharge:    pricing.DefaultDeliveryCharge,
		LowStockThreshold: DefaultLowStockThreshold,
	}
}
