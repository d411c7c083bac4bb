package repos_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kicks/internal/domain"
	"kicks/internal/orderstatus"
	"kicks/internal/pricing"
	"kicks/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenDBSeedsIdempotently(t *testing.T) {
	db := memdb(t)

	s, err := repos.NewSettingsRepo(db).Get()
	require.NoError(t, err)
	assert.True(t, s.GSTPercentage.Equal(decimal.NewFromInt(18)))
	assert.True(t, s.DeliveryCharge.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 10, s.LowStockThreshold)

	n, err := repos.NewProductRepo(db).Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestProductHydration(t *testing.T) {
	db := memdb(t)
	r := repos.NewProductRepo(db)

	p, err := r.Get("kds-classic")
	require.NoError(t, err)
	assert.True(t, p.BasePrice.Equal(decimal.NewFromInt(299)))
	require.Len(t, p.Variants, 3)
	assert.Equal(t, "/uploads/seed-classic.jpg", p.PrimaryImageURL())

	list, err := r.Search("spray", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "kds-spray", list[0].ID)

	list, err = r.Search("", "Deodorisers")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestImagesPrimaryPromotion(t *testing.T) {
	db := memdb(t)
	r := repos.NewProductRepo(db)

	require.NoError(t, r.AddImages("kds-spray", []domain.Image{{ID: "i2", URL: "/uploads/2.png"}}))
	p, _ := r.Get("kds-spray")
	require.Len(t, p.Images, 2)
	assert.False(t, p.Images[1].IsPrimary)

	_, err := r.DeleteImage("kds-spray", "img-spray-1")
	require.NoError(t, err)
	p, _ = r.Get("kds-spray")
	require.Len(t, p.Images, 1)
	assert.True(t, p.Images[0].IsPrimary)
}

func TestVariantSKUIsUnique(t *testing.T) {
	db := memdb(t)
	r := repos.NewProductRepo(db)
	err := r.AddVariant(&domain.Variant{
		ID: "v-dup", ProductID: "kds-spray", Type: domain.TypeStandard, Size: domain.SizeSmall,
		Fragrance: "Lavender", SKU: "KDS-SP-STD-M-CIT",
	})
	assert.ErrorIs(t, err, repos.ErrDuplicate)
}

func newOrder(qty int) *domain.Order {
	ts := time.Now().UTC()
	return &domain.Order{
		ID:          "o-" + ts.Format("150405.000000000"),
		OrderNumber: "KDS-" + ts.Format("20060102") + "-" + ts.Format("150405.000"),
		User:        domain.OrderUser{ID: "u-asha", Name: "Asha", Email: "asha@kicks.test"},
		Items: []domain.OrderItem{{
			ProductID: "kds-classic", VariantID: "var-classic-prm-m-cit",
			ProductName: "Classic", VariantDetails: "Premium / Medium / Citrus Burst",
			Quantity: qty, Price: decimal.NewFromInt(399),
		}},
		Pricing:         pricing.Compute(decimal.NewFromInt(int64(399*qty)), pricing.Rates{}),
		PaymentInfo:     domain.PaymentInfo{Status: domain.PaymentPending},
		OrderStatus:     domain.StatusPending,
		ShippingAddress: domain.Address{Line1: "1 MG Road", City: "Pune", State: "MH", PostalCode: "411001"},
		StatusHistory:   []domain.StatusEntry{orderstatus.Entry(domain.StatusPending, "Order placed", ts)},
		CreatedAt:       ts.Format(time.RFC3339),
	}
}

func TestOrderCreateReservesStock(t *testing.T) {
	db := memdb(t)
	orders := repos.NewOrderRepo(db)
	inv := repos.NewInventoryRepo(db)

	o := newOrder(3)
	require.NoError(t, orders.Create(o))

	qty, err := inv.Qty("kds-classic", "var-classic-prm-m-cit")
	require.NoError(t, err)
	assert.Equal(t, 5, qty)

	got, err := orders.Get(o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, got.OrderNumber)
	assert.Equal(t, "Pune", got.ShippingAddress.City)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Pricing.Total.Equal(o.Pricing.Total))
	require.Len(t, got.StatusHistory, 1)

	// 5 left, asking for 6 leaves stock untouched
	err = orders.Create(newOrder(6))
	assert.ErrorIs(t, err, repos.ErrInsufficientStock)
	qty, _ = inv.Qty("kds-classic", "var-classic-prm-m-cit")
	assert.Equal(t, 5, qty)
}

func TestAppendStatusStoresBlankNoteAsNull(t *testing.T) {
	db := memdb(t)
	orders := repos.NewOrderRepo(db)
	o := newOrder(1)
	require.NoError(t, orders.Create(o))

	require.NoError(t, orders.AppendStatus(o.ID, domain.StatusPending, orderstatus.Entry(domain.StatusShipped, "   ", time.Now())))

	var nulls int
	require.NoError(t, db.Get(&nulls, `SELECT COUNT(*) FROM order_status_history WHERE order_id = ? AND note IS NULL`, o.ID))
	assert.Equal(t, 1, nulls)

	got, _ := orders.Get(o.ID)
	assert.Equal(t, domain.StatusShipped, got.OrderStatus)
	require.Len(t, got.StatusHistory, 2)
	assert.Nil(t, got.StatusHistory[1].Note)

	assert.ErrorIs(t, orders.AppendStatus("missing", domain.StatusPending, orderstatus.Entry(domain.StatusShipped, "", time.Now())), sql.ErrNoRows)
}

func TestAppendStatusRejectsStaleFrom(t *testing.T) {
	db := memdb(t)
	orders := repos.NewOrderRepo(db)
	o := newOrder(1)
	require.NoError(t, orders.Create(o))
	require.NoError(t, orders.AppendStatus(o.ID, domain.StatusPending, orderstatus.Entry(domain.StatusCancelled, "", time.Now())))

	// a second writer still believes the order is Pending
	err := orders.AppendStatus(o.ID, domain.StatusPending, orderstatus.Entry(domain.StatusShipped, "", time.Now()))
	assert.ErrorIs(t, err, repos.ErrStaleStatus)

	got, _ := orders.Get(o.ID)
	assert.Equal(t, domain.StatusCancelled, got.OrderStatus)
	assert.Len(t, got.StatusHistory, 2, "a rejected move records no history")
}

func TestAddressDefaults(t *testing.T) {
	db := memdb(t)
	users := repos.NewUserRepo(db)

	a1 := &domain.Address{ID: "a1", UserID: "u-asha", Line1: "1", City: "Pune", State: "MH", PostalCode: "411001"}
	require.NoError(t, users.SaveAddress(a1, true))
	assert.True(t, a1.IsDefault)

	a2 := &domain.Address{ID: "a2", UserID: "u-asha", Line1: "2", City: "Pune", State: "MH", PostalCode: "411002", IsDefault: true}
	require.NoError(t, users.SaveAddress(a2, true))

	list, err := users.Addresses("u-asha")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].ID)
	assert.False(t, list[1].IsDefault)

	require.NoError(t, users.DeleteAddress("u-asha", "a2"))
	list, _ = users.Addresses("u-asha")
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDefault)
}

func TestSalesAndLowStock(t *testing.T) {
	db := memdb(t)
	orders := repos.NewOrderRepo(db)
	inv := repos.NewInventoryRepo(db)
	require.NoError(t, orders.Create(newOrder(2)))

	total, month, today, err := orders.Sales("0000", "0000")
	require.NoError(t, err)
	assert.True(t, total.Equal(month))
	assert.Equal(t, 1, today)

	low, err := inv.LowStock(10)
	require.NoError(t, err)
	require.NotEmpty(t, low)
	assert.Equal(t, 0, low[0].Stock)

	best, err := inv.BestSelling(5)
	require.NoError(t, err)
	require.Len(t, best, 1)
	assert.Equal(t, 2, best[0].SalesCount)
}
