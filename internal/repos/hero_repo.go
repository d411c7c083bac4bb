package repos

import (
	"github.com/jmoiron/sqlx"

	"kicks/internal/domain"
)

type HeroRepo struct{ db *sqlx.DB }

func NewHeroRepo(db *sqlx.DB) *HeroRepo { return &HeroRepo{db: db} }

const heroCols = `id, title, subtitle, cta_text, cta_link, bg_color, sort_order, is_active, image, image_key, created_at`

// List returns slides by display order; activeOnly is the storefront view.
func (r *HeroRepo) List(activeOnly bool) ([]domain.HeroSlide, error) {
	q := `SELECT ` + heroCols + ` FROM hero_slides`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	out := []domain.HeroSlide{}
	err := r.db.Select(&out, q+` ORDER BY sort_order, created_at`)
	return out, err
}

func (r *HeroRepo) Get(id string) (domain.HeroSlide, error) {
	var h domain.HeroSlide
	err := r.db.Get(&h, `SELECT `+heroCols+` FROM hero_slides WHERE id = ?`, id)
	return h, err
}

func (r *HeroRepo) Create(h *domain.HeroSlide) error {
	_, err := r.db.NamedExec(`
		INSERT INTO hero_slides(`+heroCols+`)
		VALUES (:id, :title, :subtitle, :cta_text, :cta_link, :bg_color, :sort_order, :is_active, :image, :image_key, :created_at)
	`, h)
	return err
}

func (r *HeroRepo) Update(h *domain.HeroSlide) error {
	res, err := r.db.NamedExec(`
		UPDATE hero_slides SET title = :title, subtitle = :subtitle, cta_text = :cta_text, cta_link = :cta_link,
		  bg_color = :bg_color, sort_order = :sort_order, is_active = :is_active, image = :image, image_key = :image_key
		WHERE id = :id
	`, h)
	return oneRow(res, err)
}

func (r *HeroRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM hero_slides WHERE id = ?`, id)
	return oneRow(res, err)
}
