package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"kicks/internal/config"
	"kicks/internal/http/handlers"
	applog "kicks/internal/log"
	"kicks/internal/mailer"
	"kicks/internal/repos"
	"kicks/internal/storage"
)

// Five 5 MiB images plus form overhead.
const bodyLimit = 30 << 20

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		if abs, err := filepath.Abs(cfg.Storage.UploadDir); err == nil {
			cfg.Storage.UploadDir = abs
		}
		if err := os.MkdirAll(cfg.Storage.UploadDir, 0o755); err != nil {
			log.Fatalf("create upload dir: %v", err)
		}
		log.Printf("[static] %s -> %s", cfg.Storage.UploadURLPrefix, cfg.Storage.UploadDir)
	}
	store, err := storage.FromConfig(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatal(err)
	}

	mailSvc, err := mailer.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	notifier, err := mailer.NewNotifier(mailSvc, cfg.MailFrom, cfg.MailFromName)
	if err != nil {
		log.Fatal(err)
	}
	for _, addr := range strings.Split(cfg.AdminNotify, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			notifier.AdminTo = append(notifier.AdminTo, addr)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: handlers.ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/uploads/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many requests. Please slow down."})
		},
	}))

	deps := handlers.NewDeps(db, cfg, store, notifier)
	deps.AuthRateMax = 10
	deps.Mount(app)

	log.Fatal(app.Listen(":" + cfg.Port))
}
