package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"phoneempire/internal/log"
	"phoneempire/internal/services"
	"phoneempire/internal/validate"
)

// AdminCookie carries the session token for the server-rendered admin page.
const AdminCookie = "admin_token"

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func loginFailed(c *fiber.Ctx, email, reason string) error {
	log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
	return jsonError(c, fiber.StatusUnauthorized, services.ErrBadCreds.Error())
}

// POST /api/admin/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return loginFailed(c, in.Email, "bad_format")
	}
	if !validate.Password(in.Password) {
		return loginFailed(c, email, "bad_password_format")
	}

	u, sess, err := h.Auth.Login(c.UserContext(), email, in.Password)
	if errors.Is(err, services.ErrBadCreds) {
		return loginFailed(c, email, "mismatch")
	}
	if err != nil {
		return fail(c, "auth.login", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     AdminCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	c.Locals("admin_id", u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": u.Email})
	return c.JSON(loginResponse{ID: u.ID, Email: u.Email, Role: u.Role, Token: sess.Token, ExpiresAt: sess.ExpiresAt})
}

// POST /api/admin/logout drops the cookie. Bearer tokens simply expire.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     AdminCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /admin/login
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return render(c, "admin_login", fiber.Map{"Err": ""})
}

// POST /admin/login is the form flavour of Login for the dashboard page.
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	email, ok := validate.Email(c.FormValue("email"))
	pass := c.FormValue("password")
	if !ok || !validate.Password(pass) {
		log.Security(c, "auth.login.fail", map[string]any{"email": c.FormValue("email"), "reason": "bad_format"})
		return render(c.Status(fiber.StatusUnauthorized), "admin_login", fiber.Map{"Err": "Invalid email or password"})
	}
	u, sess, err := h.Auth.Login(c.UserContext(), email, pass)
	if err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "mismatch"})
		} else {
			log.Error(c, "auth.login.fail", err, nil)
		}
		return render(c.Status(fiber.StatusUnauthorized), "admin_login", fiber.Map{"Err": "Invalid email or password"})
	}
	c.Cookie(&fiber.Cookie{
		Name:     AdminCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	c.Locals("admin_id", u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": u.Email})
	return c.Redirect("/admin")
}

// POST /admin/logout
func (h *AuthHandler) LogoutForm(c *fiber.Ctx) error {
	if err := h.Logout(c); err != nil {
		return err
	}
	return c.Redirect("/admin/login")
}
