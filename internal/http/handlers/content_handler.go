package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"kicks/internal/log"
	"kicks/internal/services"
)

// FragranceHandler serves the fragrance catalogue that variants pick from.
type FragranceHandler struct {
	Catalog *services.CatalogService
}

// GET /api/fragrances
func (h *FragranceHandler) Active(c *fiber.Ctx) error { return h.list(c, true) }

// GET /api/fragrances/all
func (h *FragranceHandler) All(c *fiber.Ctx) error { return h.list(c, false) }

func (h *FragranceHandler) list(c *fiber.Ctx, activeOnly bool) error {
	items, err := h.Catalog.ListFragrances(activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"fragrances": items})
}

// POST /api/fragrances
func (h *FragranceHandler) Create(c *fiber.Ctx) error {
	var in services.FragranceInput
	if !bind(c, &in) {
		return nil
	}
	f, err := h.Catalog.CreateFragrance(in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.fragrance.create", map[string]any{"fragrance": f.Name})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"fragrance": f})
}

// PUT /api/fragrances/:id
func (h *FragranceHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	var in services.FragranceInput
	if !bind(c, &in) {
		return nil
	}
	f, err := h.Catalog.UpdateFragrance(id, in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.fragrance.update", map[string]any{"fragrance": f.Name, "active": f.IsActive})
	return c.JSON(fiber.Map{"fragrance": f})
}

// DELETE /api/fragrances/:id
func (h *FragranceHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Catalog.DeleteFragrance(id); err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.fragrance.delete", map[string]any{"id": id})
	return c.JSON(fiber.Map{"message": "Fragrance deleted"})
}

type HeroHandler struct {
	Hero *services.HeroService
}

// GET /api/hero
func (h *HeroHandler) Active(c *fiber.Ctx) error { return h.list(c, true) }

// GET /api/hero/all
func (h *HeroHandler) All(c *fiber.Ctx) error { return h.list(c, false) }

func (h *HeroHandler) list(c *fiber.Ctx, activeOnly bool) error {
	slides, err := h.Hero.List(activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"slides": slides})
}

// heroForm reads the slide fields and the optional "image" file. The
// returned func closes the file.
func heroForm(c *fiber.Ctx) (services.HeroInput, *services.ImageUpload, func(), error) {
	var in services.HeroInput
	if err := c.BodyParser(&in); err != nil {
		return in, nil, func() {}, err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return in, nil, func() {}, nil
	}
	files, closeAll, err := openUploads([]*multipart.FileHeader{fh})
	if err != nil {
		return in, nil, closeAll, err
	}
	return in, &files[0], closeAll, nil
}

// POST /api/hero
func (h *HeroHandler) Create(c *fiber.Ctx) error {
	in, img, done, err := heroForm(c)
	defer done()
	if err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}
	s, err := h.Hero.Create(c.UserContext(), in, img)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.hero.create", map[string]any{"slide": s.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"slide": s})
}

// PUT /api/hero/:id
func (h *HeroHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	in, img, done, err := heroForm(c)
	defer done()
	if err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}
	s, err := h.Hero.Update(c.UserContext(), id, in, img)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.hero.update", map[string]any{"slide": id})
	return c.JSON(fiber.Map{"slide": s})
}

// DELETE /api/hero/:id
func (h *HeroHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Hero.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.hero.delete", map[string]any{"slide": id})
	return c.JSON(fiber.Map{"message": "Slide deleted"})
}
