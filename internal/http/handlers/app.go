package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	html "github.com/gofiber/template/html/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"phoneempire/internal/config"
	applog "phoneempire/internal/log"
)

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// ErrorHandler answers with JSON under /api and the notfound page elsewhere.
// 5xx causes are logged and never echoed back.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	msg := msgGeneric
	switch {
	case code == fiber.StatusNotFound:
		msg = msgNotFound
	case code < fiber.StatusInternalServerError:
		msg = strings.ToLower(utils.StatusMessage(code))
	default:
		applog.Error(c, "server.error", err, nil)
	}

	if isAPI(c) {
		return jsonError(c, code, msg)
	}
	page := msg
	if code == fiber.StatusNotFound {
		page = "Page not found"
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": page}); rerr != nil {
		return c.Status(code).SendString(page)
	}
	return nil
}

// NewApp builds the fiber application with its middleware and every route.
func NewApp(cfg config.Config, deps *Deps) *fiber.App {
	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(cfg.LogMode != "production")

	app := fiber.New(fiber.Config{
		AppName:      "phoneempire",
		Views:        engine,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{Output: zap.NewStdLog(applog.L()).Writer()}))
	// product images are hot-linked from other origins
	app.Use(helmet.New(helmet.Config{CrossOriginEmbedderPolicy: "unsafe-none"}))
	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/static/") || c.Path() == "/healthz"
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.global.hit", nil)
				if isAPI(c) {
					return jsonError(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
				}
				return c.Status(fiber.StatusTooManyRequests).Render("notfound", fiber.Map{"Message": "Too many requests. Please slow down."})
			},
		}))
	}

	app.Static("/static", cfg.StaticDir)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	Mount(app, cfg, deps)

	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return jsonError(c, fiber.StatusNotFound, msgNotFound)
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}

func loginLimiter(max int, api bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		Next: func(c *fiber.Ctx) bool { return max <= 0 },
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			if api {
				return jsonError(c, fiber.StatusTooManyRequests, "too many attempts, please try again later")
			}
			return render(c.Status(fiber.StatusTooManyRequests), "admin_login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	})
}

// Mount registers the JSON API and the server-rendered pages.
func Mount(app *fiber.App, cfg config.Config, deps *Deps) {
	requireAdmin := RequireAdmin(deps.AuthService)

	app.Get("/", deps.PageHandler.Home)

	api := app.Group("/api", cors.New(), Timeout(cfg.RequestTimeout))
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Get)
	api.Post("/products", requireAdmin, deps.ProductHandler.Create)
	api.Put("/products/:id", requireAdmin, deps.ProductHandler.Update)
	api.Delete("/products/:id", requireAdmin, deps.ProductHandler.Delete)

	api.Post("/orders", deps.OrderHandler.Place)
	api.Get("/orders", requireAdmin, deps.OrderHandler.List)
	api.Get("/orders/:id", requireAdmin, deps.OrderHandler.Get)
	api.Put("/orders/:id", requireAdmin, deps.OrderHandler.UpdateStatus)

	api.Post("/admin/login", loginLimiter(cfg.LoginLimit, true), deps.AuthHandler.Login)
	api.Post("/admin/logout", deps.AuthHandler.Logout)
	api.Get("/admin/stats", requireAdmin, deps.AdminHandler.Stats)
	api.Get("/admin/orders.csv", requireAdmin, deps.AdminHandler.OrdersCSV)

	// Cookie-authenticated forms need CSRF protection; the bearer API does not.
	pages := app.Group("/admin", Timeout(cfg.RequestTimeout), csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Strict",
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	pages.Get("/login", deps.AuthHandler.LoginPage)
	pages.Post("/login", loginLimiter(cfg.LoginLimit, false), deps.AuthHandler.LoginForm)
	pages.Post("/logout", deps.AuthHandler.LogoutForm)
	pages.Get("/", requireAdmin, deps.AdminHandler.Dashboard)
	pages.Post("/orders/:id/complete", requireAdmin, deps.AdminHandler.CompleteOrder)
}
