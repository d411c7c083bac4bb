package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kicks/internal/repos"
	"kicks/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestClassify(t *testing.T) {
	assert.Equal(t, services.OutOfStock, services.Classify(0, 10))
	assert.Equal(t, services.LowStock, services.Classify(10, 10))
	assert.Equal(t, services.LowStock, services.Classify(1, 10))
	assert.Equal(t, services.InStock, services.Classify(11, 10))
}

func TestInventoryService_CheckAvailability(t *testing.T) {
	db := memdb(t)
	settings := repos.NewSettingsRepo(db)
	svc := services.NewInventoryService(repos.NewInventoryRepo(db), settings)

	a, err := svc.CheckAvailability("kds-classic", "var-classic-std-s-lav")
	require.NoError(t, err)
	if a.Status != services.InStock || a.Qty != 40 {
		t.Fatalf("want IN_STOCK(40), got %+v", a)
	}

	a, err = svc.CheckAvailability("kds-classic", "var-classic-prm-m-cit")
	require.NoError(t, err)
	assert.Equal(t, services.LowStock, a.Status)

	a, err = svc.CheckAvailability("kds-classic", "var-classic-dlx-l-mnt")
	require.NoError(t, err)
	assert.Equal(t, services.OutOfStock, a.Status)

	_, err = svc.CheckAvailability("kds-classic", "nope")
	assert.ErrorIs(t, err, services.ErrNotFound)

	// threshold follows settings
	five := 5
	_, err = services.NewSettingsService(settings).Update(services.SettingsInput{LowStockThreshold: &five})
	require.NoError(t, err)
	a, _ = svc.CheckAvailability("kds-classic", "var-classic-prm-m-cit")
	assert.Equal(t, services.InStock, a.Status)
}

func TestSettingsUpdateRejectsZeroRates(t *testing.T) {
	svc := services.NewSettingsService(repos.NewSettingsRepo(memdb(t)))

	zero := decimal.Zero
	_, err := svc.Update(services.SettingsInput{GSTPercentage: &zero})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	g := decimal.NewFromFloat(12.5)
	st, err := svc.Update(services.SettingsInput{GSTPercentage: &g})
	require.NoError(t, err)
	assert.True(t, st.GSTPercentage.Equal(g))
	assert.True(t, st.DeliveryCharge.Equal(decimal.NewFromInt(50)))
}
