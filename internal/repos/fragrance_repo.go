package repos

import (
	"github.com/jmoiron/sqlx"

	"kicks/internal/domain"
)

type FragranceRepo struct{ db *sqlx.DB }

func NewFragranceRepo(db *sqlx.DB) *FragranceRepo { return &FragranceRepo{db: db} }

// List returns fragrances by name; activeOnly hides deactivated ones.
func (r *FragranceRepo) List(activeOnly bool) ([]domain.Fragrance, error) {
	q := `SELECT id, name, description, is_active, created_at FROM fragrances`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	out := []domain.Fragrance{}
	err := r.db.Select(&out, q+` ORDER BY LOWER(name)`)
	return out, err
}

func (r *FragranceRepo) Get(id string) (domain.Fragrance, error) {
	var f domain.Fragrance
	err := r.db.Get(&f, `SELECT id, name, description, is_active, created_at FROM fragrances WHERE id = ?`, id)
	return f, err
}

func (r *FragranceRepo) ByName(name string) (domain.Fragrance, error) {
	var f domain.Fragrance
	err := r.db.Get(&f, `SELECT id, name, description, is_active, created_at FROM fragrances WHERE LOWER(name) = LOWER(?)`, name)
	return f, err
}

func (r *FragranceRepo) Create(f *domain.Fragrance) error {
	_, err := r.db.Exec(`
		INSERT INTO fragrances(id, name, description, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, f.ID, f.Name, f.Description, f.IsActive, f.CreatedAt)
	return dupOr(err)
}

func (r *FragranceRepo) Update(f *domain.Fragrance) error {
	res, err := r.db.Exec(`
		UPDATE fragrances SET name = ?, description = ?, is_active = ? WHERE id = ?
	`, f.Name, f.Description, f.IsActive, f.ID)
	return oneRow(res, dupOr(err))
}

// Delete removes the fragrance row only; variants keep the name they were
// created with.
func (r *FragranceRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM fragrances WHERE id = ?`, id)
	return oneRow(res, err)
}
