package handlers

import (
	"kicks/internal/config"
	"kicks/internal/domain"
	"kicks/internal/mailer"
	"kicks/internal/orderstatus"
	"kicks/internal/repos"
	"kicks/internal/services"
	"kicks/internal/storage"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	UserHandler      *UserHandler
	ProductHandler   *ProductHandler
	FragranceHandler *FragranceHandler
	HeroHandler      *HeroHandler
	OrderHandler     *OrderHandler
	AdminHandler     *AdminHandler

	// UploadDir is served at /uploads/* when set.
	UploadDir string
	// AuthRateMax caps auth POSTs per IP per window; zero disables the
	// limiter.
	AuthRateMax int
}

func NewDeps(db *sqlx.DB, cfg config.Config, store storage.Storage, mail *mailer.Notifier) *Deps {
	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	settingsRepo := repos.NewSettingsRepo(db)
	fragRepo := repos.NewFragranceRepo(db)

	tokens := services.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := services.NewAuthService(userRepo, repos.NewAdminRepo(db), repos.NewOTPRepo(db), tokens, mail)
	authSvc.AdminCodes[domain.RoleAdmin] = cfg.AdminVerificationCode
	authSvc.AdminCodes[domain.RoleOwner] = cfg.OwnerVerificationCode

	policy := orderstatus.Permissive
	if cfg.StrictOrderTransitions {
		policy = orderstatus.Strict
	}

	catalogSvc := services.NewCatalogService(repos.NewCategoryRepo(db), prodRepo, fragRepo, store)
	invSvc := services.NewInventoryService(repos.NewInventoryRepo(db), settingsRepo)
	orderSvc := services.NewOrderService(orderRepo, prodRepo, userRepo, settingsRepo, mail, policy)

	d := &Deps{
		Auth:             authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc},
		UserHandler:      &UserHandler{Users: services.NewUserService(userRepo)},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc, Inventory: invSvc},
		FragranceHandler: &FragranceHandler{Catalog: catalogSvc},
		HeroHandler:      &HeroHandler{Hero: services.NewHeroService(repos.NewHeroRepo(db), store)},
		OrderHandler:     &OrderHandler{Orders: orderSvc},
		AdminHandler: &AdminHandler{
			Dashboard: services.NewDashboardService(orderRepo, prodRepo, userRepo, invSvc),
			Settings:  services.NewSettingsService(settingsRepo),
		},
	}
	if drv := cfg.Storage.Driver; drv == "" || drv == "local" {
		d.UploadDir = cfg.Storage.UploadDir
	}
	return d
}
