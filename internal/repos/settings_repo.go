package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"kicks/internal/domain"
)

type SettingsRepo struct{ db *sqlx.DB }

func NewSettingsRepo(db *sqlx.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get returns the singleton, or the defaults if the row is missing.
func (r *SettingsRepo) Get() (domain.Settings, error) {
	var s domain.Settings
	err := r.db.Get(&s, `
		SELECT gst_percentage, delivery_charge, low_stock_threshold, COALESCE(updated_at,'') AS updated_at
		FROM settings WHERE id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	return s, err
}

func (r *SettingsRepo) Save(s domain.Settings) (domain.Settings, error) {
	s.UpdatedAt = now()
	_, err := r.db.Exec(`
		INSERT INTO settings(id, gst_percentage, delivery_charge, low_stock_threshold, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  gst_percentage = excluded.gst_percentage,
		  delivery_charge = excluded.delivery_charge,
		  low_stock_threshold = excluded.low_stock_threshold,
		  updated_at = excluded.updated_at
	`, s.GSTPercentage, s.DeliveryCharge, s.LowStockThreshold, s.UpdatedAt)
	return s, err
}
