package services

import (
	"time"

	"github.com/shopspring/decimal"

	"kicks/internal/domain"
	"kicks/internal/repos"
)

type Dashboard struct {
	TotalRevenue  decimal.Decimal  `json:"totalRevenue"`
	MonthlySales  decimal.Decimal  `json:"monthlySales"`
	OrdersToday   int              `json:"ordersToday"`
	TotalProducts int              `json:"totalProducts"`
	TotalUsers    int              `json:"totalUsers"`
	LowStock      []repos.StockRow `json:"lowStock"`
	BestSelling   []repos.StockRow `json:"bestSelling"`
	SlowMoving    []repos.StockRow `json:"slowMoving"`
	RecentOrders  []domain.Order   `json:"recentOrders"`
}

type DashboardService struct {
	Orders *repos.OrderRepo
	Prods  *repos.ProductRepo
	Users  *repos.UserRepo
	Inv    *InventoryService
	Now    func() time.Time
}

func NewDashboardService(orders *repos.OrderRepo, prods *repos.ProductRepo, users *repos.UserRepo, inv *InventoryService) *DashboardService {
	return &DashboardService{Orders: orders, Prods: prods, Users: users, Inv: inv, Now: time.Now}
}

// Build gathers the admin overview. Revenue counts every order that was not
// cancelled; month and day boundaries are UTC.
func (s *DashboardService) Build() (Dashboard, error) {
	var d Dashboard
	now := s.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var err error
	if d.TotalRevenue, d.MonthlySales, d.OrdersToday, err = s.Orders.Sales(month.Format(time.RFC3339), day.Format(time.RFC3339)); err != nil {
		return d, err
	}
	if d.TotalProducts, err = s.Prods.Count(); err != nil {
		return d, err
	}
	if d.TotalUsers, err = s.Users.Count(); err != nil {
		return d, err
	}
	if d.LowStock, err = s.Inv.LowStock(); err != nil {
		return d, err
	}
	if d.BestSelling, err = s.Inv.Inv.BestSelling(5); err != nil {
		return d, err
	}
	if d.SlowMoving, err = s.Inv.Inv.SlowMoving(5); err != nil {
		return d, err
	}
	if d.RecentOrders, err = s.Orders.ListLatest(5); err != nil {
		return d, err
	}
	return d, nil
}
