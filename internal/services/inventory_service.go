package services

import (
	"database/sql"
	"errors"

	"kicks/internal/domain"
	"kicks/internal/repos"
)

const (
	InStock    = "IN_STOCK"
	LowStock   = "LOW_STOCK"
	OutOfStock = "OUT_OF_STOCK"
)

type InventoryService struct {
	Inv      *repos.InventoryRepo
	Settings *repos.SettingsRepo
}

func NewInventoryService(inv *repos.InventoryRepo, settings *repos.SettingsRepo) *InventoryService {
	return &InventoryService{Inv: inv, Settings: settings}
}

// Classify maps a stock count to IN_STOCK / LOW_STOCK / OUT_OF_STOCK; stock at
// or below threshold is low.
func Classify(qty, threshold int) string {
	switch {
	case qty <= 0:
		return OutOfStock
	case qty <= threshold:
		return LowStock
	default:
		return InStock
	}
}

// CheckAvailability reports a variant's stock band against the store's
// low-stock threshold.
func (s *InventoryService) CheckAvailability(productID, variantID string) (domain.Availability, error) {
	qty, err := s.Inv.Qty(productID, variantID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Availability{}, ErrNotFound
	}
	if err != nil {
		return domain.Availability{}, err
	}
	st, err := s.Settings.Get()
	if err != nil {
		return domain.Availability{}, err
	}
	return domain.Availability{Status: Classify(qty, st.LowStockThreshold), Qty: qty}, nil
}

func (s *InventoryService) LowStock() ([]repos.StockRow, error) {
	st, err := s.Settings.Get()
	if err != nil {
		return nil, err
	}
	return s.Inv.LowStock(st.LowStockThreshold)
}
