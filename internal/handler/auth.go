package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MP-make/pechos-inmobiliaria/internal/config"
	"github.com/MP-make/pechos-inmobiliaria/internal/middleware"
	"github.com/MP-make/pechos-inmobiliaria/internal/repository"
	"github.com/MP-make/pechos-inmobiliaria/internal/utils"
)

// AuthHandler serves the admin session endpoints. Sessions are a single
// signed JWT carried in an httpOnly cookie; there is no refresh flow, the
// cookie just expires after the configured number of days.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.AdminUserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.AdminUserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// sessionCookie builds the admin_token cookie. Secure is tied to the
// environment so local development over plain HTTP still works.
func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	}
}

// Login verifies credentials and sets the session cookie. The response
// deliberately does not distinguish unknown email from wrong password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email y contraseña son requeridos"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credenciales inválidas"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !user.IsActive || !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credenciales inválidas"})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, user.ID, user.Email, h.Cfg.SessionTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	c.SetCookie(h.sessionCookie(tok.Token, h.Cfg.SessionTTLDays*24*3600))

	return c.JSON(http.StatusOK, echo.Map{
		"user": userPart{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

// Verify returns the logged-in admin. It runs behind the auth middleware,
// so reaching it at all means the session is valid.
func (h *AuthHandler) Verify(c echo.Context) error {
	uid, _ := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// account deleted after the cookie was issued
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "sesión inválida"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !user.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "sesión inválida"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": userPart{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

// Logout clears the session cookie. The token itself simply expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, echo.Map{"message": "sesión cerrada"})
}

// Init creates the seed admin account when no admins exist yet. It is
// idempotent: calling it again just reports the back-office is ready.
func (h *AuthHandler) Init(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if len(existing) > 0 {
		return c.JSON(http.StatusOK, echo.Map{"message": "ya inicializado"})
	}

	uid, err := h.Users.Create(ctx, h.Cfg.SeedEmail, h.Cfg.SeedPassword, h.Cfg.SeedName, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// concurrent init won the insert
			return c.JSON(http.StatusOK, echo.Map{"message": "ya inicializado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create admin failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"user": userPart{ID: uid, Email: strings.ToLower(h.Cfg.SeedEmail), Name: h.Cfg.SeedName},
	})
}
