// Package pricing computes the checkout summary shown to shoppers and stored
// on every order. The server and the client preview both call Compute so the
// two figures cannot drift apart.
package pricing

import "github.com/shopspring/decimal"

var (
	DefaultGSTPercentage  = decimal.NewFromInt(18)
	DefaultDeliveryCharge = decimal.NewFromInt(50)
)

// Summary is the priced breakdown of a basket.
type Summary struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	GSTPercentage  decimal.Decimal `json:"gstPercentage"`
	GST            decimal.Decimal `json:"gst"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	Total          decimal.Decimal `json:"total"`
}

// Rates are the store-wide inputs to Compute. Zero values mean "not
// configured" and fall back to the defaults.
type Rates struct {
	GSTPercentage  decimal.Decimal
	DeliveryCharge decimal.Decimal
}

// Defaults fills unset rates.
func (r Rates) Defaults() Rates {
	if r.GSTPercentage.IsZero() {
		r.GSTPercentage = DefaultGSTPercentage
	}
	if r.DeliveryCharge.IsZero() {
		r.DeliveryCharge = DefaultDeliveryCharge
	}
	return r
}

// Compute returns gst = subtotal * G/100 and total = subtotal + gst + D,
// rounded to two decimal places.
func Compute(subtotal decimal.Decimal, r Rates) Summary {
	r = r.Defaults()
	gst := subtotal.Mul(r.GSTPercentage).Div(decimal.NewFromInt(100)).Round(2)
	return Summary{
		Subtotal:       subtotal.Round(2),
		GSTPercentage:  r.GSTPercentage,
		GST:            gst,
		DeliveryCharge: r.DeliveryCharge.Round(2),
		Total:          subtotal.Add(gst).Add(r.DeliveryCharge).Round(2),
	}
}

// LineTotal is unit price times quantity.
func LineTotal(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}
