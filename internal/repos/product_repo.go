package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"kicks/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, description, category, base_price, average_rating, total_reviews, created_at, updated_at`

// Search lists products newest first. q matches name or description, category
// matches exactly; empty values disable the filter.
func (r *ProductRepo) Search(q, category string) ([]domain.Product, error) {
	where := `1 = 1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?))`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}

	out := []domain.Product{}
	if err := r.db.Select(&out, `SELECT `+productCols+` FROM products WHERE `+where+` ORDER BY created_at DESC, id`, args...); err != nil {
		return nil, err
	}
	if err := r.hydrate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	if err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id); err != nil {
		return domain.Product{}, err
	}
	ps := []domain.Product{p}
	if err := r.hydrate(ps); err != nil {
		return domain.Product{}, err
	}
	return ps[0], nil
}

// hydrate loads images and variants for a page of products in two queries.
func (r *ProductRepo) hydrate(ps []domain.Product) error {
	if len(ps) == 0 {
		return nil
	}
	ids := make([]string, len(ps))
	idx := make(map[string]int, len(ps))
	for i := range ps {
		ids[i] = ps[i].ID
		idx[ps[i].ID] = i
		ps[i].Images = []domain.Image{}
		ps[i].Variants = []domain.Variant{}
	}

	q, args, err := sqlx.In(`
		SELECT id, product_id, url, storage_key, is_primary, position
		FROM product_images WHERE product_id IN (?)
		ORDER BY position, id`, ids)
	if err != nil {
		return err
	}
	var imgs []domain.Image
	if err := r.db.Select(&imgs, r.db.Rebind(q), args...); err != nil {
		return err
	}
	for _, img := range imgs {
		p := &ps[idx[img.ProductID]]
		p.Images = append(p.Images, img)
	}

	q, args, err = sqlx.In(`
		SELECT id, product_id, type, size, fragrance, price_adjustment, stock, sku
		FROM variants WHERE product_id IN (?)
		ORDER BY rowid`, ids)
	if err != nil {
		return err
	}
	var vars []domain.Variant
	if err := r.db.Select(&vars, r.db.Rebind(q), args...); err != nil {
		return err
	}
	for _, v := range vars {
		p := &ps[idx[v.ProductID]]
		p.Variants = append(p.Variants, v)
	}
	return nil
}

func (r *ProductRepo) Create(p *domain.Product) error {
	_, err := r.db.Exec(`
		INSERT INTO products(id, name, description, category, base_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.Category, p.BasePrice, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *ProductRepo) Update(p *domain.Product) error {
	res, err := r.db.Exec(`
		UPDATE products SET name = ?, description = ?, category = ?, base_price = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Description, p.Category, p.BasePrice, now(), p.ID)
	return oneRow(res, err)
}

// Delete removes a product with its images and variants. Orders keep their
// own snapshots so history survives.
func (r *ProductRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	return oneRow(res, err)
}

func (r *ProductRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products`)
	return n, err
}

// AddImages appends images after the current last position. The first image
// of a product becomes primary.
func (r *ProductRepo) AddImages(productID string, imgs []domain.Image) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var next, primaries int
	if err := tx.Get(&next, `SELECT COALESCE(MAX(position) + 1, 0) FROM product_images WHERE product_id = ?`, productID); err != nil {
		return err
	}
	if err := tx.Get(&primaries, `SELECT COUNT(*) FROM product_images WHERE product_id = ? AND is_primary = 1`, productID); err != nil {
		return err
	}
	for i := range imgs {
		imgs[i].ProductID = productID
		imgs[i].Position = next + i
		imgs[i].IsPrimary = primaries == 0 && i == 0
		if _, err := tx.Exec(`
			INSERT INTO product_images(id, product_id, url, storage_key, is_primary, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, imgs[i].ID, productID, imgs[i].URL, imgs[i].StorageKey, imgs[i].IsPrimary, imgs[i].Position); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteImage removes one image and promotes the next one when the primary
// was removed.
func (r *ProductRepo) DeleteImage(productID, imageID string) (domain.Image, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return domain.Image{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var img domain.Image
	if err := tx.Get(&img, `
		SELECT id, product_id, url, storage_key, is_primary, position
		FROM product_images WHERE id = ? AND product_id = ?
	`, imageID, productID); err != nil {
		return domain.Image{}, err
	}
	if _, err := tx.Exec(`DELETE FROM product_images WHERE id = ?`, imageID); err != nil {
		return domain.Image{}, err
	}
	if img.IsPrimary {
		if _, err := tx.Exec(`
			UPDATE product_images SET is_primary = 1
			WHERE id = (SELECT id FROM product_images WHERE product_id = ? ORDER BY position, id LIMIT 1)
		`, productID); err != nil {
			return domain.Image{}, err
		}
	}
	return img, tx.Commit()
}

func (r *ProductRepo) GetVariant(productID, variantID string) (domain.Variant, error) {
	var v domain.Variant
	err := r.db.Get(&v, `
		SELECT id, product_id, type, size, fragrance, price_adjustment, stock, sku
		FROM variants WHERE id = ? AND product_id = ?
	`, variantID, productID)
	return v, err
}

func (r *ProductRepo) AddVariant(v *domain.Variant) error {
	_, err := r.db.Exec(`
		INSERT INTO variants(id, product_id, type, size, fragrance, price_adjustment, stock, sku)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.ProductID, v.Type, v.Size, v.Fragrance, v.PriceAdjustment, v.Stock, v.SKU)
	return dupOr(err)
}

func (r *ProductRepo) UpdateVariant(v *domain.Variant) error {
	res, err := r.db.Exec(`
		UPDATE variants SET type = ?, size = ?, fragrance = ?, price_adjustment = ?, stock = ?, sku = ?
		WHERE id = ? AND product_id = ?
	`, v.Type, v.Size, v.Fragrance, v.PriceAdjustment, v.Stock, v.SKU, v.ID, v.ProductID)
	return oneRow(res, dupOr(err))
}

func oneRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
