package repos

import "github.com/jmoiron/sqlx"

// CategoryRepo reads the category facet off the catalogue; categories are
// free text on each product rather than rows of their own.
type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List() ([]string, error) {
	out := []string{}
	err := r.db.Select(&out, `
		SELECT DISTINCT category FROM products
		WHERE category <> ''
		ORDER BY LOWER(category)
	`)
	return out, err
}
