package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kicks/internal/domain"
	applog "kicks/internal/log"
	"kicks/internal/repos"
	"kicks/internal/storage"
	"kicks/internal/validate"
)

const (
	MaxImagesPerUpload = 5
	MaxImageBytes      = 5 << 20
)

type CatalogService struct {
	Cats       *repos.CategoryRepo
	Prods      *repos.ProductRepo
	Fragrances *repos.FragranceRepo
	Store      storage.Storage
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, frags *repos.FragranceRepo, store storage.Storage) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Fragrances: frags, Store: store}
}

type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=120"`
	Description string          `json:"description" validate:"max=4000"`
	Category    string          `json:"category" validate:"max=60"`
	BasePrice   decimal.Decimal `json:"basePrice"`
}

func (in *ProductInput) check() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := validate.Struct(in); err != nil {
		return invalid("%s", err.Error())
	}
	if in.BasePrice.IsNegative() {
		return invalid("basePrice must not be negative")
	}
	return nil
}

type VariantInput struct {
	Type            domain.VariantType `json:"type"`
	Size            domain.VariantSize `json:"size"`
	Fragrance       string             `json:"fragrance" validate:"required"`
	PriceAdjustment decimal.Decimal    `json:"priceAdjustment"`
	Stock           int                `json:"stock" validate:"min=0"`
	SKU             string             `json:"sku" validate:"required,max=64"`
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (s *CatalogService) ListCategories() ([]string, error) {
	return s.Cats.List()
}

func (s *CatalogService) Search(q, category string) ([]domain.Product, error) {
	if q != "" {
		var ok bool
		if q, ok = validate.Q(q); !ok {
			return nil, invalid("search query contains unsupported characters")
		}
	}
	return s.Prods.Search(q, strings.TrimSpace(category))
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	return p, err
}

func (s *CatalogService) CreateProduct(in ProductInput) (domain.Product, error) {
	if err := in.check(); err != nil {
		return domain.Product{}, err
	}
	ts := time.Now().UTC().Format(time.RFC3339)
	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		BasePrice:   in.BasePrice,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.Prods.Create(&p); err != nil {
		return domain.Product{}, err
	}
	return s.GetProduct(p.ID)
}

func (s *CatalogService) UpdateProduct(id string, in ProductInput) (domain.Product, error) {
	if err := in.check(); err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{ID: id, Name: in.Name, Description: in.Description, Category: in.Category, BasePrice: in.BasePrice}
	if err := s.Prods.Update(&p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, ErrNotFound
		}
		return domain.Product{}, err
	}
	return s.GetProduct(id)
}

// DeleteProduct removes the product and, best effort, its stored images.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	p, err := s.GetProduct(id)
	if err != nil {
		return err
	}
	if err := s.Prods.Delete(id); err != nil {
		return err
	}
	for _, img := range p.Images {
		s.dropObject(ctx, img.StorageKey)
	}
	return nil
}

func (s *CatalogService) dropObject(ctx context.Context, key string) {
	if key == "" || s.Store == nil {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil {
		applog.Error(nil, "storage.delete.fail", err, map[string]any{"key": key})
	}
}

// UploadImages stores up to MaxImagesPerUpload images and attaches them to
// the product. The batch is validated up front; if storage fails midway the
// images already stored are kept and attached.
func (s *CatalogService) UploadImages(ctx context.Context, productID string, files []ImageUpload) (domain.Product, error) {
	if _, err := s.GetProduct(productID); err != nil {
		return domain.Product{}, err
	}
	if len(files) == 0 {
		return domain.Product{}, invalid("no images uploaded")
	}
	if len(files) > MaxImagesPerUpload {
		return domain.Product{}, invalid("at most %d images per upload", MaxImagesPerUpload)
	}
	for _, f := range files {
		if _, err := storage.ImageExt(f.Filename); err != nil {
			return domain.Product{}, invalid("only jpg, jpeg, png and webp images are allowed")
		}
		if f.Size > MaxImageBytes {
			return domain.Product{}, invalid("%s is larger than 5MB", f.Filename)
		}
	}

	var imgs []domain.Image
	var putErr error
	for _, f := range files {
		res, err := s.Store.Put(ctx, f.Body, storage.PutInput{Filename: f.Filename, ContentType: f.ContentType, Size: f.Size})
		if err != nil {
			putErr = fmt.Errorf("store %s: %w", f.Filename, err)
			break
		}
		imgs = append(imgs, domain.Image{ID: uuid.NewString(), URL: res.URL, StorageKey: res.Key})
	}
	if len(imgs) > 0 {
		if err := s.Prods.AddImages(productID, imgs); err != nil {
			return domain.Product{}, err
		}
	}
	if putErr != nil {
		return domain.Product{}, putErr
	}
	return s.GetProduct(productID)
}

func (s *CatalogService) DeleteImage(ctx context.Context, productID, imageID string) (domain.Product, error) {
	img, err := s.Prods.DeleteImage(productID, imageID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	s.dropObject(ctx, img.StorageKey)
	return s.GetProduct(productID)
}

func (s *CatalogService) checkVariant(in *VariantInput) error {
	in.Fragrance = strings.TrimSpace(in.Fragrance)
	in.SKU = strings.ToUpper(strings.TrimSpace(in.SKU))
	if err := validate.Struct(in); err != nil {
		return invalid("%s", err.Error())
	}
	if !in.Type.Valid() {
		return invalid("type must be Standard, Premium or Deluxe")
	}
	if !in.Size.Valid() {
		return invalid("size must be Small, Medium or Large")
	}
	return nil
}

// activeFragrance resolves name to its canonical spelling; inactive or
// unknown fragrances are rejected.
func (s *CatalogService) activeFragrance(name string) (string, error) {
	f, err := s.Fragrances.ByName(name)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !f.IsActive) {
		return "", invalid("fragrance %q is not available", name)
	}
	if err != nil {
		return "", err
	}
	return f.Name, nil
}

func (s *CatalogService) AddVariant(productID string, in VariantInput) (domain.Product, error) {
	if _, err := s.GetProduct(productID); err != nil {
		return domain.Product{}, err
	}
	if err := s.checkVariant(&in); err != nil {
		return domain.Product{}, err
	}
	frag, err := s.activeFragrance(in.Fragrance)
	if err != nil {
		return domain.Product{}, err
	}
	v := domain.Variant{
		ID:              uuid.NewString(),
		ProductID:       productID,
		Type:            in.Type,
		Size:            in.Size,
		Fragrance:       frag,
		PriceAdjustment: in.PriceAdjustment,
		Stock:           in.Stock,
		SKU:             in.SKU,
	}
	if err := s.Prods.AddVariant(&v); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return domain.Product{}, fmt.Errorf("%w: sku %s", ErrConflict, v.SKU)
		}
		return domain.Product{}, err
	}
	return s.GetProduct(productID)
}

// UpdateVariant replaces a variant's fields. Keeping its current fragrance is
// allowed even after that fragrance was deactivated; switching to another
// fragrance requires it to be active.
func (s *CatalogService) UpdateVariant(productID, variantID string, in VariantInput) (domain.Product, error) {
	cur, err := s.Prods.GetVariant(productID, variantID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.checkVariant(&in); err != nil {
		return domain.Product{}, err
	}
	frag := cur.Fragrance
	if !strings.EqualFold(in.Fragrance, cur.Fragrance) {
		if frag, err = s.activeFragrance(in.Fragrance); err != nil {
			return domain.Product{}, err
		}
	}
	v := domain.Variant{
		ID:              variantID,
		ProductID:       productID,
		Type:            in.Type,
		Size:            in.Size,
		Fragrance:       frag,
		PriceAdjustment: in.PriceAdjustment,
		Stock:           in.Stock,
		SKU:             in.SKU,
	}
	if err := s.Prods.UpdateVariant(&v); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return domain.Product{}, fmt.Errorf("%w: sku %s", ErrConflict, v.SKU)
		}
		return domain.Product{}, err
	}
	return s.GetProduct(productID)
}

type FragranceInput struct {
	Name        string `json:"name" validate:"required,max=60"`
	Description string `json:"description" validate:"max=500"`
	IsActive    *bool  `json:"isActive"`
}

func (s *CatalogService) Fragrance(id string) (domain.Fragrance, error) {
	f, err := s.Fragrances.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Fragrance{}, ErrNotFound
	}
	return f, err
}

func (s *CatalogService) ListFragrances(activeOnly bool) ([]domain.Fragrance, error) {
	return s.Fragrances.List(activeOnly)
}

func (s *CatalogService) CreateFragrance(in FragranceInput) (domain.Fragrance, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return domain.Fragrance{}, invalid("%s", err.Error())
	}
	f := domain.Fragrance{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		IsActive:    in.IsActive == nil || *in.IsActive,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Fragrances.Create(&f); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return domain.Fragrance{}, fmt.Errorf("%w: fragrance %s", ErrConflict, f.Name)
		}
		return domain.Fragrance{}, err
	}
	return f, nil
}

// UpdateFragrance edits a fragrance. Variants created with it keep their
// fragrance name untouched.
func (s *CatalogService) UpdateFragrance(id string, in FragranceInput) (domain.Fragrance, error) {
	f, err := s.Fragrance(id)
	if err != nil {
		return domain.Fragrance{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return domain.Fragrance{}, invalid("%s", err.Error())
	}
	f.Name = in.Name
	f.Description = strings.TrimSpace(in.Description)
	if in.IsActive != nil {
		f.IsActive = *in.IsActive
	}
	if err := s.Fragrances.Update(&f); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return domain.Fragrance{}, fmt.Errorf("%w: fragrance %s", ErrConflict, f.Name)
		}
		return domain.Fragrance{}, err
	}
	return f, nil
}

func (s *CatalogService) DeleteFragrance(id string) error {
	err := s.Fragrances.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
