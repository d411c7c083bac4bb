package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"kicks/internal/domain"
	applog "kicks/internal/log"
	"kicks/internal/services"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// POST /api/orders/preview
func (h *OrderHandler) Preview(c *fiber.Ctx) error {
	var in struct {
		Items []services.OrderLine `json:"items"`
	}
	if !bind(c, &in) {
		return nil
	}
	q, err := h.Orders.Preview(in.Items)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(q)
}

// POST /api/orders
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in services.PlaceOrderInput
	if !bind(c, &in) {
		return nil
	}
	o, err := h.Orders.Place(c.UserContext(), currentUser(c).ID, in)
	if err != nil {
		if errors.Is(err, services.ErrOutOfStock) {
			applog.Info(c, "order.place.stock", map[string]any{"reason": err.Error()})
		}
		return fail(c, err)
	}
	applog.Info(c, "order.place", map[string]any{"order": o.OrderNumber, "total": o.Pricing.Total.StringFixed(2)})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order": o})
}

// GET /api/orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Orders.ListForUser(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "orders.list.fail", err, nil)
		return err
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// GET /api/orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	o, err := h.Orders.GetForUser(currentUser(c).ID, c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotOwner) {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": c.Params("id")})
		}
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"order": o})
}

// GET /api/orders/admin/all
func (h *OrderHandler) All(c *fiber.Ctx) error {
	orders, err := h.Orders.ListAll()
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return err
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// PUT /api/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in struct {
		Status domain.OrderStatus `json:"status"`
		Note   string             `json:"note"`
	}
	if !bind(c, &in) {
		return nil
	}
	id := c.Params("id")
	o, err := h.Orders.UpdateStatus(id, in.Status, in.Note)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": in.Status})
	return c.JSON(fiber.Map{"order": o})
}

// PUT /api/orders/:id/payment
func (h *OrderHandler) UpdatePayment(c *fiber.Ctx) error {
	var in struct {
		Status domain.PaymentStatus `json:"status"`
	}
	if !bind(c, &in) {
		return nil
	}
	id := c.Params("id")
	o, err := h.Orders.UpdatePayment(id, in.Status)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "admin.orders.payment", map[string]any{"order_id": id, "status": in.Status})
	return c.JSON(fiber.Map{"order": o})
}
