package repos

import (
	"github.com/jmoiron/sqlx"
)

// InventoryRepo reads and adjusts variant stock.
type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// StockRow is one variant with enough product context for admin lists.
type StockRow struct {
	ProductID   string `db:"product_id" json:"productId"`
	ProductName string `db:"product_name" json:"product"`
	VariantID   string `db:"variant_id" json:"variantId"`
	Variant     string `db:"variant" json:"variant"`
	SKU         string `db:"sku" json:"sku"`
	Stock       int    `db:"stock" json:"stock"`
	SalesCount  int    `db:"sales_count" json:"salesCount"`
}

// Qty returns current stock for a variant of a product.
// A missing variant yields sql.ErrNoRows.
func (r *InventoryRepo) Qty(productID, variantID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `
		SELECT stock FROM variants
		WHERE product_id = ? AND id = ?
	`, productID, variantID)
	if err != nil {
		return 0, err
	}
	return qty, nil
}

const stockRowSelect = `
	SELECT v.product_id, p.name AS product_name, v.id AS variant_id,
	       v.type || ' / ' || v.size || ' / ' || v.fragrance AS variant,
	       v.sku, v.stock,
	       COALESCE((SELECT SUM(oi.qty) FROM order_items oi
	                 JOIN orders o ON o.id = oi.order_id
	                 WHERE oi.variant_id = v.id AND o.order_status <> 'Cancelled'), 0) AS sales_count
	FROM variants v
	JOIN products p ON p.id = v.product_id`

// LowStock lists variants at or below threshold, emptiest first.
func (r *InventoryRepo) LowStock(threshold int) ([]StockRow, error) {
	out := []StockRow{}
	err := r.db.Select(&out, stockRowSelect+`
		WHERE v.stock <= ?
		ORDER BY v.stock, p.name, v.sku
	`, threshold)
	return out, err
}

// BestSelling lists the variants with the most units sold.
func (r *InventoryRepo) BestSelling(limit int) ([]StockRow, error) {
	out := []StockRow{}
	err := r.db.Select(&out, `SELECT * FROM (`+stockRowSelect+`) WHERE sales_count > 0
		ORDER BY sales_count DESC, sku LIMIT ?`, limit)
	return out, err
}

// SlowMoving lists stocked variants with the fewest units sold.
func (r *InventoryRepo) SlowMoving(limit int) ([]StockRow, error) {
	out := []StockRow{}
	err := r.db.Select(&out, `SELECT * FROM (`+stockRowSelect+`) WHERE stock > 0
		ORDER BY sales_count, stock DESC, sku LIMIT ?`, limit)
	return out, err
}
