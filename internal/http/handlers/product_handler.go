package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"kicks/internal/log"
	"kicks/internal/services"
	"kicks/internal/validate"
)

type ProductHandler struct {
	Catalog   *services.CatalogService
	Inventory *services.InventoryService
}

// openUploads opens every multipart file; the returned func closes them.
func openUploads(fhs []*multipart.FileHeader) ([]services.ImageUpload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	out := make([]services.ImageUpload, 0, len(fhs))
	for _, fh := range fhs {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		out = append(out, services.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return out, closeAll, nil
}

func pathID(c *fiber.Ctx, name string) (string, bool) {
	id, ok := validate.ID(c.Params(name))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": name})
		_ = message(c, fiber.StatusNotFound, "Not found")
	}
	return id, ok
}

// GET /api/products?category=&q=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	items, err := h.Catalog.Search(c.Query("q"), c.Query("category"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"products": items})
}

// GET /api/products/categories
func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"categories": cats})
}

// GET /api/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"product": p})
}

// GET /api/products/:id/variants/:variantId/availability
func (h *ProductHandler) Availability(c *fiber.Ctx) error {
	pid, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	vid, ok := pathID(c, "variantId")
	if !ok {
		return nil
	}
	a, err := h.Inventory.CheckAvailability(pid, vid)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(a)
}

// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if !bind(c, &in) {
		return nil
	}
	p, err := h.Catalog.CreateProduct(in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.product.create", map[string]any{"product": p.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"product": p})
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	var in services.ProductInput
	if !bind(c, &in) {
		return nil
	}
	p, err := h.Catalog.UpdateProduct(id, in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.product.update", map[string]any{"product": id})
	return c.JSON(fiber.Map{"product": p})
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.product.delete", map[string]any{"product": id})
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// POST /api/products/:id/images (multipart field "images")
func (h *ProductHandler) UploadImages(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return message(c, fiber.StatusBadRequest, "Expected a multipart upload")
	}
	files, closeAll, err := openUploads(form.File["images"])
	if err != nil {
		return err
	}
	defer closeAll()

	p, err := h.Catalog.UploadImages(c.UserContext(), id, files)
	if err != nil {
		log.Error(c, "admin.product.images.fail", err, map[string]any{"product": id, "count": len(files)})
		return fail(c, err)
	}
	log.Audit(c, "admin.product.images", map[string]any{"product": id, "count": len(files)})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"product": p})
}

// DELETE /api/products/:id/images/:imageId
func (h *ProductHandler) DeleteImage(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	imageID, ok := pathID(c, "imageId")
	if !ok {
		return nil
	}
	p, err := h.Catalog.DeleteImage(c.UserContext(), id, imageID)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.product.image.delete", map[string]any{"product": id, "image": imageID})
	return c.JSON(fiber.Map{"product": p})
}

// POST /api/products/:id/variants
func (h *ProductHandler) AddVariant(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	var in services.VariantInput
	if !bind(c, &in) {
		return nil
	}
	p, err := h.Catalog.AddVariant(id, in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.variant.create", map[string]any{"product": id, "sku": in.SKU})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"product": p})
}

// PUT /api/products/:id/variants/:variantId
func (h *ProductHandler) UpdateVariant(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	vid, ok := pathID(c, "variantId")
	if !ok {
		return nil
	}
	var in services.VariantInput
	if !bind(c, &in) {
		return nil
	}
	p, err := h.Catalog.UpdateVariant(id, vid, in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.variant.update", map[string]any{"product": id, "variant": vid, "stock": in.Stock})
	return c.JSON(fiber.Map{"product": p})
}

// GET /api/admin/inventory/low-stock
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	rows, err := h.Inventory.LowStock()
	if err != nil {
		log.Error(c, "admin.inventory.list.fail", err, nil)
		return err
	}
	return c.JSON(fiber.Map{"items": rows})
}
