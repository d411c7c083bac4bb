package handlers

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "kicks/internal/log"
)

// Mount registers every route. Guards are attached per route: a guarded
// Group would also catch /api/admin/auth/*.
func (d *Deps) Mount(app *fiber.App) {
	user := RequireUser(d.Auth)
	admin := RequireAdmin(d.Auth)
	throttle := d.authLimiter()

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	if d.UploadDir != "" {
		app.Get("/uploads/*", d.serveUpload)
	}

	api := app.Group("/api")

	auth := d.AuthHandler
	api.Post("/auth/register", throttle, auth.Register)
	api.Post("/auth/verify-otp", throttle, auth.VerifyOTP)
	api.Post("/auth/resend-otp", throttle, auth.ResendOTP)
	api.Post("/auth/login", throttle, auth.Login)
	api.Post("/auth/forgot-password", throttle, auth.ForgotPassword)
	api.Post("/auth/reset-password", throttle, auth.ResetPassword)
	api.Post("/admin/auth/register", throttle, auth.AdminRegister)
	api.Post("/admin/auth/login", throttle, auth.AdminLogin)
	api.Get("/admin/auth/me", admin, auth.AdminMe)

	users := d.UserHandler
	api.Get("/users/profile", user, users.Profile)
	api.Put("/users/profile", user, users.UpdateProfile)
	api.Post("/users/addresses", user, users.AddAddress)
	api.Put("/users/addresses/:id", user, users.UpdateAddress)
	api.Delete("/users/addresses/:id", user, users.DeleteAddress)

	prod := d.ProductHandler
	api.Get("/products", prod.List)
	api.Get("/products/categories", prod.Categories)
	api.Get("/products/:id", prod.Detail)
	api.Get("/products/:id/variants/:variantId/availability", prod.Availability)
	api.Post("/products", admin, prod.Create)
	api.Put("/products/:id", admin, prod.Update)
	api.Delete("/products/:id", admin, prod.Delete)
	api.Post("/products/:id/images", admin, prod.UploadImages)
	api.Delete("/products/:id/images/:imageId", admin, prod.DeleteImage)
	api.Post("/products/:id/variants", admin, prod.AddVariant)
	api.Put("/products/:id/variants/:variantId", admin, prod.UpdateVariant)

	frag := d.FragranceHandler
	api.Get("/fragrances", frag.Active)
	api.Get("/fragrances/all", admin, frag.All)
	api.Post("/fragrances", admin, frag.Create)
	api.Put("/fragrances/:id", admin, frag.Update)
	api.Delete("/fragrances/:id", admin, frag.Delete)

	hero := d.HeroHandler
	api.Get("/hero", hero.Active)
	api.Get("/hero/all", admin, hero.All)
	api.Post("/hero", admin, hero.Create)
	api.Put("/hero/:id", admin, hero.Update)
	api.Delete("/hero/:id", admin, hero.Delete)

	ord := d.OrderHandler
	api.Post("/orders/preview", ord.Preview)
	api.Get("/orders/admin/all", admin, ord.All)
	api.Post("/orders", user, ord.Place)
	api.Get("/orders", user, ord.History)
	api.Get("/orders/:id", user, ord.View)
	api.Put("/orders/:id/status", admin, ord.UpdateStatus)
	api.Put("/orders/:id/payment", admin, ord.UpdatePayment)

	adm := d.AdminHandler
	api.Get("/settings", adm.GetSettings)
	api.Get("/admin/dashboard", admin, adm.Overview)
	api.Get("/admin/settings", admin, adm.GetSettings)
	api.Put("/admin/settings", admin, adm.UpdateSettings)
	api.Get("/admin/users", admin, users.List)
	api.Get("/admin/inventory/low-stock", admin, prod.LowStock)

	app.Use(func(c *fiber.Ctx) error {
		return message(c, fiber.StatusNotFound, "Not found")
	})
}

func (d *Deps) authLimiter() fiber.Handler {
	if d.AuthRateMax <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        d.AuthRateMax,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|auth"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.auth.hit", nil)
			return message(c, fiber.StatusTooManyRequests, "Too many attempts. Please try again later.")
		},
	})
}

// serveUpload serves locally stored images, refusing anything that could
// escape UploadDir.
func (d *Deps) serveUpload(c *fiber.Ctx) error {
	path := c.Params("*")
	rawLower := strings.ToLower(path)
	if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
		applog.Security(c, "uploads.traversal.block", map[string]any{"path": path})
		return c.SendStatus(fiber.StatusNotFound)
	}
	clean := filepath.Clean(path)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		applog.Security(c, "uploads.traversal.block", map[string]any{"path": path})
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.SendFile(filepath.Join(d.UploadDir, clean), true)
}
