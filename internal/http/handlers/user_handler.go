package handlers

import (
	"github.com/gofiber/fiber/v2"

	"kicks/internal/domain"
	applog "kicks/internal/log"
	"kicks/internal/services"
	"kicks/internal/validate"
)

type UserHandler struct {
	Users *services.UserService
}

// GET /api/users/profile
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	u, err := h.Users.Profile(currentUser(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": u})
}

// PUT /api/users/profile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var in struct {
		Name string `json:"name"`
	}
	if !bind(c, &in) {
		return nil
	}
	u, err := h.Users.UpdateProfile(currentUser(c).ID, in.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": u})
}

// POST /api/users/addresses
func (h *UserHandler) AddAddress(c *fiber.Ctx) error {
	var a domain.Address
	if !bind(c, &a) {
		return nil
	}
	u, err := h.Users.AddAddress(currentUser(c).ID, a)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u})
}

// PUT /api/users/addresses/:id
func (h *UserHandler) UpdateAddress(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return message(c, fiber.StatusNotFound, "Not found")
	}
	var a domain.Address
	if !bind(c, &a) {
		return nil
	}
	u, err := h.Users.UpdateAddress(currentUser(c).ID, id, a)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": u})
}

// DELETE /api/users/addresses/:id
func (h *UserHandler) DeleteAddress(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return message(c, fiber.StatusNotFound, "Not found")
	}
	u, err := h.Users.DeleteAddress(currentUser(c).ID, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": u})
}

// GET /api/admin/users
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.Users.List()
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return err
	}
	return c.JSON(fiber.Map{"users": users})
}
