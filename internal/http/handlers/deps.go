package handlers

import (
	"phoneempire/internal/config"
	"phoneempire/internal/repos"
	"phoneempire/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	AuthService    *services.AuthService
	ProductHandler *ProductHandler
	OrderHandler   *OrderHandler
	AuthHandler    *AuthHandler
	AdminHandler   *AdminHandler
	PageHandler    *PageHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo)
	orderSvc := services.NewOrderService(orderRepo, prodRepo)
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.SessionTTL)

	return &Deps{
		AuthService:    authSvc,
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		OrderHandler:   &OrderHandler{Order: orderSvc},
		AuthHandler:    &AuthHandler{Auth: authSvc},
		AdminHandler:   &AdminHandler{Order: orderSvc, Catalog: catalogSvc},
		PageHandler:    &PageHandler{Catalog: catalogSvc},
	}
}
