package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"kicks/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, email, name, password_hash, is_verified, created_at`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ByID loads the user with their saved addresses.
func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	if u.Addresses, err = r.Addresses(id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(u *domain.User) error {
	_, err := r.DB.Exec(`
		INSERT INTO users(id, email, name, password_hash, is_verified, created_at)
		VALUES (?, LOWER(?), ?, ?, ?, ?)
	`, u.ID, u.Email, u.Name, u.Hash, u.IsVerified, u.CreatedAt)
	return dupOr(err)
}

func (r *UserRepo) MarkVerified(id string) error {
	res, err := r.DB.Exec(`UPDATE users SET is_verified = 1, updated_at = ? WHERE id = ?`, now(), id)
	return oneRow(res, err)
}

func (r *UserRepo) SetPassword(id, hash string) error {
	res, err := r.DB.Exec(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, now(), id)
	return oneRow(res, err)
}

func (r *UserRepo) UpdateName(id, name string) error {
	res, err := r.DB.Exec(`UPDATE users SET name = ?, updated_at = ? WHERE id = ?`, name, now(), id)
	return oneRow(res, err)
}

// List returns every storefront user, newest first, without addresses.
func (r *UserRepo) List() ([]domain.User, error) {
	out := []domain.User{}
	err := r.DB.Select(&out, `SELECT `+userCols+` FROM users ORDER BY created_at DESC, email`)
	return out, err
}

func (r *UserRepo) Count() (int, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users`)
	return n, err
}

const addressCols = `id, user_id, label, line1, line2, city, state, postal_code, phone, is_default`

func (r *UserRepo) Addresses(userID string) ([]domain.Address, error) {
	out := []domain.Address{}
	err := r.DB.Select(&out, `SELECT `+addressCols+` FROM addresses WHERE user_id = ? ORDER BY is_default DESC, created_at`, userID)
	return out, err
}

// SaveAddress inserts or updates an address. When it is marked default every
// other address of the user loses the flag; a user's first address is
// always default.
func (r *UserRepo) SaveAddress(a *domain.Address, insert bool) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM addresses WHERE user_id = ? AND id <> ?`, a.UserID, a.ID); err != nil {
		return err
	}
	if n == 0 {
		a.IsDefault = true
	}
	if a.IsDefault {
		if _, err := tx.Exec(`UPDATE addresses SET is_default = 0 WHERE user_id = ?`, a.UserID); err != nil {
			return err
		}
	}

	if insert {
		_, err = tx.Exec(`
			INSERT INTO addresses(`+addressCols+`, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, a.UserID, a.Label, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Phone, a.IsDefault, now())
	} else {
		var res sql.Result
		res, err = tx.Exec(`
			UPDATE addresses SET label = ?, line1 = ?, line2 = ?, city = ?, state = ?, postal_code = ?, phone = ?, is_default = ?
			WHERE id = ? AND user_id = ?
		`, a.Label, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Phone, a.IsDefault, a.ID, a.UserID)
		if err == nil {
			if k, _ := res.RowsAffected(); k == 0 {
				return sql.ErrNoRows
			}
		}
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *UserRepo) DeleteAddress(userID, id string) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var wasDefault bool
	if err := tx.Get(&wasDefault, `SELECT is_default FROM addresses WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM addresses WHERE id = ?`, id); err != nil {
		return err
	}
	if wasDefault {
		if _, err := tx.Exec(`
			UPDATE addresses SET is_default = 1
			WHERE id = (SELECT id FROM addresses WHERE user_id = ? ORDER BY created_at LIMIT 1)
		`, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
