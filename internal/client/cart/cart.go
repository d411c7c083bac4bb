// Package cart is the shopper's basket on the client. Lines are keyed by
// (product, variant) and carry a snapshot of what the shopper saw when they
// added the item; the snapshot is never re-derived from the live catalogue.
package cart

import (
	"github.com/shopspring/decimal"

	"kicks/internal/client/apiclient"
	"kicks/internal/client/clientstore"
	"kicks/internal/domain"
	"kicks/internal/pricing"
)

type VariantDetails struct {
	Type      domain.VariantType `json:"type"`
	Size      domain.VariantSize `json:"size"`
	Fragrance string             `json:"fragrance"`
	SKU       string             `json:"sku"`
}

type Line struct {
	ProductID      string          `json:"productId"`
	ProductName    string          `json:"productName"`
	VariantID      string          `json:"variantId"`
	VariantDetails VariantDetails  `json:"variantDetails"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Quantity       int             `json:"quantity"`
	Image          string          `json:"image,omitempty"`
}

func (l Line) Subtotal() decimal.Decimal { return pricing.LineTotal(l.UnitPrice, l.Quantity) }

type Cart struct {
	store clientstore.Store
	lines []Line
}

// New restores the cart from store. Missing or malformed data gives an
// empty cart.
func New(store clientstore.Store) *Cart {
	c := &Cart{store: store}
	var lines []Line
	if err := clientstore.GetJSON(store, clientstore.KeyCart, &lines); err == nil {
		for _, l := range lines {
			if l.ProductID != "" && l.VariantID != "" && l.Quantity > 0 {
				c.lines = append(c.lines, l)
			}
		}
	}
	return c
}

func (c *Cart) index(productID, variantID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID && l.VariantID == variantID {
			return i
		}
	}
	return -1
}

// Add merges into an existing line or appends a new one priced at the
// variant's effective price right now.
func (c *Cart) Add(p domain.Product, v domain.Variant, qty int) error {
	if qty < 1 {
		qty = 1
	}
	lines := c.Lines()
	if i := c.index(p.ID, v.ID); i >= 0 {
		lines[i].Quantity += qty
		return c.save(lines)
	}
	lines = append(lines, Line{
		ProductID:   p.ID,
		ProductName: p.Name,
		VariantID:   v.ID,
		VariantDetails: VariantDetails{
			Type:      v.Type,
			Size:      v.Size,
			Fragrance: v.Fragrance,
			SKU:       v.SKU,
		},
		UnitPrice: p.EffectivePrice(v),
		Quantity:  qty,
		Image:     p.PrimaryImageURL(),
	})
	return c.save(lines)
}

func (c *Cart) Remove(productID, variantID string) error {
	i := c.index(productID, variantID)
	if i < 0 {
		return nil
	}
	lines := c.Lines()
	return c.save(append(lines[:i], lines[i+1:]...))
}

// SetQuantity removes the line when qty <= 0. Unknown keys are ignored.
func (c *Cart) SetQuantity(productID, variantID string, qty int) error {
	if qty <= 0 {
		return c.Remove(productID, variantID)
	}
	i := c.index(productID, variantID)
	if i < 0 {
		return nil
	}
	lines := c.Lines()
	lines[i].Quantity = qty
	return c.save(lines)
}

func (c *Cart) Clear() error {
	return c.save(nil)
}

func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Lines() []Line { return append([]Line(nil), c.lines...) }

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// Preview is the checkout summary as the client shows it. The server prices
// the order again when it is placed.
func (c *Cart) Preview(s domain.Settings) pricing.Summary {
	return pricing.Compute(c.Total(), s.Rates())
}

// OrderRequest turns the cart into a placement request. Prices are left out;
// the server looks them up.
func (c *Cart) OrderRequest(addr domain.Address) apiclient.OrderRequest {
	req := apiclient.OrderRequest{Items: make([]apiclient.OrderLine, 0, len(c.lines))}
	for _, l := range c.lines {
		req.Items = append(req.Items, apiclient.OrderLine{ProductID: l.ProductID, VariantID: l.VariantID, Quantity: l.Quantity})
	}
	if addr.ID != "" {
		req.AddressID = addr.ID
	} else {
		req.ShippingAddress = &addr
	}
	return req
}

// save writes lines to the store and only then adopts them, so a failed
// write leaves the cart as it was.
func (c *Cart) save(lines []Line) error {
	out := lines
	if out == nil {
		out = []Line{}
	}
	if err := clientstore.SetJSON(c.store, clientstore.KeyCart, out); err != nil {
		return err
	}
	if len(lines) == 0 {
		lines = nil
	}
	c.lines = lines
	return nil
}
