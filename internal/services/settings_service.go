package services

import (
	"github.com/shopspring/decimal"

	"kicks/internal/domain"
	"kicks/internal/repos"
)

type SettingsService struct {
	Repo *repos.SettingsRepo
}

func NewSettingsService(repo *repos.SettingsRepo) *SettingsService {
	return &SettingsService{Repo: repo}
}

func (s *SettingsService) Get() (domain.Settings, error) { return s.Repo.Get() }

// SettingsInput is a partial update; nil fields keep their stored value.
// Zero rates are refused because pricing reads zero as "use the default".
type SettingsInput struct {
	GSTPercentage     *decimal.Decimal `json:"gstPercentage"`
	DeliveryCharge    *decimal.Decimal `json:"deliveryCharge"`
	LowStockThreshold *int             `json:"lowStockThreshold"`
}

var hundred = decimal.NewFromInt(100)

func (s *SettingsService) Update(in SettingsInput) (domain.Settings, error) {
	cur, err := s.Repo.Get()
	if err != nil {
		return domain.Settings{}, err
	}
	if in.GSTPercentage != nil {
		if !in.GSTPercentage.IsPositive() || in.GSTPercentage.GreaterThan(hundred) {
			return domain.Settings{}, invalid("gstPercentage must be greater than 0 and at most 100")
		}
		cur.GSTPercentage = *in.GSTPercentage
	}
	if in.DeliveryCharge != nil {
		if !in.DeliveryCharge.IsPositive() {
			return domain.Settings{}, invalid("deliveryCharge must be greater than 0")
		}
		cur.DeliveryCharge = *in.DeliveryCharge
	}
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold < 0 {
			return domain.Settings{}, invalid("lowStockThreshold must not be negative")
		}
		cur.LowStockThreshold = *in.LowStockThreshold
	}
	return s.Repo.Save(cur)
}
