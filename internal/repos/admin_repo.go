package repos

import (
	"github.com/jmoiron/sqlx"

	"kicks/internal/domain"
)

type AdminRepo struct{ db *sqlx.DB }

func NewAdminRepo(db *sqlx.DB) *AdminRepo { return &AdminRepo{db: db} }

func (r *AdminRepo) ByEmail(email string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.Get(&a, `SELECT id, email, name, password_hash, role, created_at FROM admins WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepo) ByID(id string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.Get(&a, `SELECT id, email, name, password_hash, role, created_at FROM admins WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepo) Create(a *domain.Admin) error {
	_, err := r.db.Exec(`
		INSERT INTO admins(id, email, name, password_hash, role, created_at)
		VALUES (?, LOWER(?), ?, ?, ?, ?)
	`, a.ID, a.Email, a.Name, a.Hash, a.Role, a.CreatedAt)
	return dupOr(err)
}
