package handlers

import (
	applog "kicks/internal/log"
	"kicks/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Dashboard *services.DashboardService
	Settings  *services.SettingsService
}

// GET /api/admin/dashboard
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	d, err := h.Dashboard.Build()
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return err
	}
	return c.JSON(fiber.Map{"dashboard": d})
}

// GET /api/admin/settings and GET /api/settings
func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	s, err := h.Settings.Get()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"settings": s})
}

// PUT /api/admin/settings
func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	var in services.SettingsInput
	if !bind(c, &in) {
		return nil
	}
	s, err := h.Settings.Update(in)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "admin.settings.update", map[string]any{
		"gst":       s.GSTPercentage.String(),
		"delivery":  s.DeliveryCharge.String(),
		"threshold": s.LowStockThreshold,
	})
	return c.JSON(fiber.Map{"settings": s})
}
