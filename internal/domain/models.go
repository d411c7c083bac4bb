package domain

import "github.com/shopspring/decimal"

func init() {
	// Frontends expect money as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type VariantType string

const (
	TypeStandard VariantType = "Standard"
	TypePremium  VariantType = "Premium"
	TypeDeluxe   VariantType = "Deluxe"
)

func (t VariantType) Valid() bool {
	switch t {
	case TypeStandard, TypePremium, TypeDeluxe:
		return true
	}
	return false
}

type VariantSize string

const (
	SizeSmall  VariantSize = "Small"
	SizeMedium VariantSize = "Medium"
	SizeLarge  VariantSize = "Large"
)

func (s VariantSize) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

type Image struct {
	ID         string `db:"id" json:"id"`
	ProductID  string `db:"product_id" json:"-"`
	URL        string `db:"url" json:"url"`
	StorageKey string `db:"storage_key" json:"-"`
	IsPrimary  bool   `db:"is_primary" json:"isPrimary"`
	Position   int    `db:"position" json:"-"`
}

type Variant struct {
	ID              string          `db:"id" json:"id"`
	ProductID       string          `db:"product_id" json:"-"`
	Type            VariantType     `db:"type" json:"type"`
	Size            VariantSize     `db:"size" json:"size"`
	Fragrance       string          `db:"fragrance" json:"fragrance"`
	PriceAdjustment decimal.Decimal `db:"price_adjustment" json:"priceAdjustment"`
	Stock           int             `db:"stock" json:"stock"`
	SKU             string          `db:"sku" json:"sku"`
}

type Product struct {
	ID            string          `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Description   string          `db:"description" json:"description"`
	Category      string          `db:"category" json:"category"`
	BasePrice     decimal.Decimal `db:"base_price" json:"basePrice"`
	AverageRating float64         `db:"average_rating" json:"averageRating"`
	TotalReviews  int             `db:"total_reviews" json:"totalReviews"`
	CreatedAt     string          `db:"created_at" json:"createdAt"`
	UpdatedAt     string          `db:"updated_at" json:"updatedAt,omitempty"`
	Images        []Image         `db:"-" json:"images"`
	Variants      []Variant       `db:"-" json:"variants"`
}

// EffectivePrice is the product base price plus the variant adjustment.
func (p Product) EffectivePrice(v Variant) decimal.Decimal {
	return p.BasePrice.Add(v.PriceAdjustment)
}

func (p Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// PrimaryImageURL returns the image flagged primary, else the first one.
func (p Product) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// TotalStock sums stock over all variants.
func (p Product) TotalStock() int {
	n := 0
	for _, v := range p.Variants {
		n += v.Stock
	}
	return n
}

type Fragrance struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	IsActive    bool   `db:"is_active" json:"isActive"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

type HeroSlide struct {
	ID        string `db:"id" json:"id"`
	Title     string `db:"title" json:"title"`
	Subtitle  string `db:"subtitle" json:"subtitle"`
	CTAText   string `db:"cta_text" json:"ctaText"`
	CTALink   string `db:"cta_link" json:"ctaLink"`
	BgColor   string `db:"bg_color" json:"bgColor"`
	Order     int    `db:"sort_order" json:"order"`
	IsActive  bool   `db:"is_active" json:"isActive"`
	Image     string `db:"image" json:"image,omitempty"`
	ImageKey  string `db:"image_key" json:"-"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}
