package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"kicks/internal/domain"
	applog "kicks/internal/log"
	"kicks/internal/repos"
	"kicks/internal/storage"
	"kicks/internal/validate"
)

type HeroService struct {
	Hero  *repos.HeroRepo
	Store storage.Storage
}

func NewHeroService(hero *repos.HeroRepo, store storage.Storage) *HeroService {
	return &HeroService{Hero: hero, Store: store}
}

// HeroInput arrives as multipart form fields alongside an optional image.
type HeroInput struct {
	Title    string `form:"title" json:"title" validate:"required,max=120"`
	Subtitle string `form:"subtitle" json:"subtitle" validate:"max=240"`
	CTAText  string `form:"ctaText" json:"ctaText" validate:"max=40"`
	CTALink  string `form:"ctaLink" json:"ctaLink" validate:"max=200"`
	BgColor  string `form:"bgColor" json:"bgColor"`
	Order    int    `form:"order" json:"order"`
	IsActive *bool  `form:"isActive" json:"isActive"`
}

func (in *HeroInput) check() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.CTAText = strings.TrimSpace(in.CTAText); in.CTAText == "" {
		in.CTAText = "Shop Now"
	}
	if in.CTALink = strings.TrimSpace(in.CTALink); in.CTALink == "" {
		in.CTALink = "/#products"
	}
	if in.BgColor = strings.TrimSpace(in.BgColor); in.BgColor == "" {
		in.BgColor = "#f5f0eb"
	}
	if err := validate.Struct(in); err != nil {
		return invalid("%s", err.Error())
	}
	if !validate.Color(in.BgColor) {
		return invalid("bgColor must be a hex colour like #f5f0eb")
	}
	return nil
}

// List returns slides ordered for display. Storefront callers pass
// activeOnly.
func (s *HeroService) List(activeOnly bool) ([]domain.HeroSlide, error) {
	return s.Hero.List(activeOnly)
}

func (s *HeroService) putImage(ctx context.Context, img *ImageUpload) (storage.PutResult, error) {
	if _, err := storage.ImageExt(img.Filename); err != nil {
		return storage.PutResult{}, invalid("only jpg, jpeg, png and webp images are allowed")
	}
	if img.Size > MaxImageBytes {
		return storage.PutResult{}, invalid("image is larger than 5MB")
	}
	return s.Store.Put(ctx, img.Body, storage.PutInput{Filename: img.Filename, ContentType: img.ContentType, Size: img.Size})
}

func (s *HeroService) Create(ctx context.Context, in HeroInput, img *ImageUpload) (domain.HeroSlide, error) {
	if err := in.check(); err != nil {
		return domain.HeroSlide{}, err
	}
	h := domain.HeroSlide{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Subtitle:  strings.TrimSpace(in.Subtitle),
		CTAText:   in.CTAText,
		CTALink:   in.CTALink,
		BgColor:   in.BgColor,
		Order:     in.Order,
		IsActive:  in.IsActive == nil || *in.IsActive,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if img != nil {
		res, err := s.putImage(ctx, img)
		if err != nil {
			return domain.HeroSlide{}, err
		}
		h.Image, h.ImageKey = res.URL, res.Key
	}
	if err := s.Hero.Create(&h); err != nil {
		return domain.HeroSlide{}, err
	}
	return h, nil
}

// Update edits a slide; a new image replaces the old one, which is removed
// from storage best effort.
func (s *HeroService) Update(ctx context.Context, id string, in HeroInput, img *ImageUpload) (domain.HeroSlide, error) {
	h, err := s.Hero.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HeroSlide{}, ErrNotFound
	}
	if err != nil {
		return domain.HeroSlide{}, err
	}
	if err := in.check(); err != nil {
		return domain.HeroSlide{}, err
	}
	h.Title, h.Subtitle = in.Title, strings.TrimSpace(in.Subtitle)
	h.CTAText, h.CTALink, h.BgColor = in.CTAText, in.CTALink, in.BgColor
	h.Order = in.Order
	if in.IsActive != nil {
		h.IsActive = *in.IsActive
	}

	oldKey := ""
	if img != nil {
		res, err := s.putImage(ctx, img)
		if err != nil {
			return domain.HeroSlide{}, err
		}
		oldKey = h.ImageKey
		h.Image, h.ImageKey = res.URL, res.Key
	}
	if err := s.Hero.Update(&h); err != nil {
		return domain.HeroSlide{}, err
	}
	s.dropObject(ctx, oldKey)
	return h, nil
}

func (s *HeroService) Delete(ctx context.Context, id string) error {
	h, err := s.Hero.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.Hero.Delete(id); err != nil {
		return err
	}
	s.dropObject(ctx, h.ImageKey)
	return nil
}

func (s *HeroService) dropObject(ctx context.Context, key string) {
	if key == "" || s.Store == nil {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil {
		applog.Error(nil, "storage.delete.fail", err, map[string]any{"key": key})
	}
}
