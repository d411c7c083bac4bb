package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kicks/internal/domain"
	"kicks/internal/repos"
	"kicks/internal/services"
	"kicks/internal/storage"
)

func newCatalog(t *testing.T) *services.CatalogService {
	t.Helper()
	db := memdb(t)
	return services.NewCatalogService(repos.NewCategoryRepo(db), repos.NewProductRepo(db), repos.NewFragranceRepo(db),
		storage.NewLocal(t.TempDir(), "/uploads"))
}

func TestCatalog_ProductAndVariants(t *testing.T) {
	svc := newCatalog(t)

	_, err := svc.CreateProduct(services.ProductInput{Name: " ", BasePrice: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	_, err = svc.CreateProduct(services.ProductInput{Name: "Bad", BasePrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	p, err := svc.CreateProduct(services.ProductInput{Name: "Travel Pouch", Category: "Deodorisers", BasePrice: decimal.NewFromInt(199)})
	require.NoError(t, err)
	assert.Empty(t, p.Variants)

	in := services.VariantInput{
		Type: domain.TypeStandard, Size: domain.SizeSmall, Fragrance: "lavender",
		PriceAdjustment: decimal.NewFromInt(-20), Stock: 12, SKU: "kds-tp-s-lav",
	}
	p, err = svc.AddVariant(p.ID, in)
	require.NoError(t, err)
	require.Len(t, p.Variants, 1)
	assert.Equal(t, "Lavender", p.Variants[0].Fragrance)
	assert.Equal(t, "KDS-TP-S-LAV", p.Variants[0].SKU)
	assert.Equal(t, "179", p.EffectivePrice(p.Variants[0]).String())

	_, err = svc.AddVariant(p.ID, in)
	assert.ErrorIs(t, err, services.ErrConflict)

	in.SKU, in.Fragrance = "KDS-TP-S-CED", "Cedarwood"
	_, err = svc.AddVariant(p.ID, in)
	assert.ErrorIs(t, err, services.ErrInvalidInput, "inactive fragrance")

	in.Fragrance, in.Size = "Lavender", "Huge"
	_, err = svc.AddVariant(p.ID, in)
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	cats, err := svc.ListCategories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Deodorisers", "Sprays"}, cats)
}

func TestCatalog_DeactivatedFragranceKeepsVariants(t *testing.T) {
	svc := newCatalog(t)

	off := false
	f, err := svc.UpdateFragrance("frag-citrus", services.FragranceInput{Name: "Citrus Burst", IsActive: &off})
	require.NoError(t, err)
	assert.False(t, f.IsActive)

	p, err := svc.GetProduct("kds-spray")
	require.NoError(t, err)
	assert.Equal(t, "Citrus Burst", p.Variants[0].Fragrance)

	// editing stock on a variant whose fragrance is now inactive still works
	v := p.Variants[0]
	_, err = svc.UpdateVariant("kds-spray", v.ID, services.VariantInput{
		Type: v.Type, Size: v.Size, Fragrance: v.Fragrance, PriceAdjustment: v.PriceAdjustment, Stock: 3, SKU: v.SKU,
	})
	require.NoError(t, err)

	active, err := svc.ListFragrances(true)
	require.NoError(t, err)
	for _, f := range active {
		assert.True(t, f.IsActive)
	}

	_, err = svc.CreateFragrance(services.FragranceInput{Name: "lavender"})
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestCatalog_UploadImages(t *testing.T) {
	svc := newCatalog(t)
	ctx := context.Background()
	img := func(name string) services.ImageUpload {
		return services.ImageUpload{Filename: name, ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
	}

	p, err := svc.UploadImages(ctx, "kds-spray", []services.ImageUpload{img("a.png"), img("b.webp")})
	require.NoError(t, err)
	require.Len(t, p.Images, 3)
	assert.True(t, strings.HasPrefix(p.Images[1].URL, "/uploads/"))

	six := []services.ImageUpload{img("1.png"), img("2.png"), img("3.png"), img("4.png"), img("5.png"), img("6.png")}
	_, err = svc.UploadImages(ctx, "kds-spray", six)
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = svc.UploadImages(ctx, "kds-spray", []services.ImageUpload{img("x.gif")})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	big := img("big.jpg")
	big.Size = services.MaxImageBytes + 1
	_, err = svc.UploadImages(ctx, "kds-spray", []services.ImageUpload{big})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	p, err = svc.DeleteImage(ctx, "kds-spray", p.Images[1].ID)
	require.NoError(t, err)
	assert.Len(t, p.Images, 2)

	_, err = svc.DeleteImage(ctx, "kds-spray", "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, "kds-spray"))
	_, err = svc.GetProduct("kds-spray")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestHero_DefaultsAndOrdering(t *testing.T) {
	db := memdb(t)
	svc := services.NewHeroService(repos.NewHeroRepo(db), storage.NewLocal(t.TempDir(), "/uploads"))
	ctx := context.Background()

	off := false
	h, err := svc.Create(ctx, services.HeroInput{Title: "Hidden", Order: -1, IsActive: &off}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Shop Now", h.CTAText)
	assert.Equal(t, "/#products", h.CTALink)
	assert.Equal(t, "#f5f0eb", h.BgColor)

	_, err = svc.Create(ctx, services.HeroInput{Title: "First", Order: -5}, &services.ImageUpload{
		Filename: "hero.jpg", Size: 4, Body: strings.NewReader("jpeg"),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, services.HeroInput{Title: "Bad", BgColor: "blue"}, nil)
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	active, err := svc.List(true)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "First", active[0].Title)
	assert.NotEmpty(t, active[0].Image)

	all, err := svc.List(false)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.NoError(t, svc.Delete(ctx, h.ID))
	assert.ErrorIs(t, svc.Delete(ctx, h.ID), services.ErrNotFound)
}
