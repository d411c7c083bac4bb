package repos

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type OTPRepo struct{ db *sqlx.DB }

func NewOTPRepo(db *sqlx.DB) *OTPRepo { return &OTPRepo{db: db} }

type OTPRow struct {
	Email     string `db:"email"`
	Purpose   string `db:"purpose"`
	CodeHash  string `db:"code_hash"`
	ExpiresAt string `db:"expires_at"`
	CreatedAt string `db:"created_at"`
}

func (o OTPRow) Expired(at time.Time) bool {
	exp, err := time.Parse(time.RFC3339, o.ExpiresAt)
	return err != nil || !at.Before(exp)
}

func (o OTPRow) IssuedAt() time.Time {
	t, _ := time.Parse(time.RFC3339, o.CreatedAt)
	return t
}

// Put stores a fresh code, replacing any earlier one for the same email and
// purpose.
func (r *OTPRepo) Put(email, purpose, hash string, issued time.Time, ttl time.Duration) error {
	_, err := r.db.Exec(`
		INSERT INTO otp_codes(email, purpose, code_hash, expires_at, created_at)
		VALUES (LOWER(?), ?, ?, ?, ?)
		ON CONFLICT(email, purpose) DO UPDATE SET
		  code_hash = excluded.code_hash,
		  expires_at = excluded.expires_at,
		  created_at = excluded.created_at
	`, email, purpose, hash, issued.UTC().Add(ttl).Format(time.RFC3339), issued.UTC().Format(time.RFC3339))
	return err
}

func (r *OTPRepo) Get(email, purpose string) (OTPRow, error) {
	var o OTPRow
	err := r.db.Get(&o, `
		SELECT email, purpose, code_hash, expires_at, created_at
		FROM otp_codes WHERE email = LOWER(?) AND purpose = ?
	`, email, purpose)
	return o, err
}

func (r *OTPRepo) Delete(email, purpose string) error {
	_, err := r.db.Exec(`DELETE FROM otp_codes WHERE email = LOWER(?) AND purpose = ?`, email, purpose)
	return err
}
